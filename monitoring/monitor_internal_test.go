package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
)

func newCache(name string, sets, ways int) *cache.Cache {
	c, err := cache.MakeBuilder().
		WithName(name).
		WithLineSize(16).
		WithNumSets(sets).
		WithWayAssociativity(ways).
		Build()
	Expect(err).NotTo(HaveOccurred())

	return c
}

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		l1, l2  *cache.Cache
		handler http.Handler
	)

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}

		req := httptest.NewRequest(method, target, reader)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		l1 = newCache("L1", 4, 2)
		l2 = newCache("L2", 1, 8)
		m.RegisterCache(l1)
		m.RegisterCache(l2)
		handler = m.Router()
	})

	It("should refuse duplicated names", func() {
		Expect(func() { m.RegisterCache(newCache("L1", 1, 1)) }).To(Panic())
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list caches", func() {
		rec := serve(http.MethodGet, "/api/list_caches", "")

		Expect(rec.Code).To(Equal(http.StatusOK))

		summaries := []cacheSummary{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &summaries)).To(Succeed())
		Expect(summaries).To(Equal([]cacheSummary{
			{Name: "L1", Geometry: l1.Geometry(), Policy: "access"},
			{Name: "L2", Geometry: l2.Geometry(), Policy: "access"},
		}))
	})

	It("should feed addresses to a cache", func() {
		rec := serve(http.MethodPost, "/api/cache/L1/access", "0x0000 0x0040\n0x0000")

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := accessRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Stats).To(Equal(cache.Stats{Hits: 1, Misses: 2}))
		Expect(rsp.Accesses).To(HaveLen(3))
		Expect(rsp.Accesses[1].WayID).To(Equal(1))
		Expect(l1.Stats()).To(Equal(cache.Stats{Hits: 1, Misses: 2}))
		Expect(l2.Stats()).To(BeZero())
	})

	It("should reject malformed traces", func() {
		rec := serve(http.MethodPost, "/api/cache/L1/access", "0x10000")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(l1.Stats()).To(BeZero())
	})

	It("should reject oversized traces", func() {
		body := strings.Repeat("0x0000\n", maxAccessBodySize/7+1)

		rec := serve(http.MethodPost, "/api/cache/L1/access", body)

		Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(l1.Stats()).To(BeZero())
	})

	It("should report state and stats", func() {
		_, err := l1.ProcessRequests([]uint16{0x0010, 0x0010})
		Expect(err).NotTo(HaveOccurred())

		rec := serve(http.MethodGet, "/api/cache/L1/stats", "")
		stats := cache.Stats{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats).To(Equal(cache.Stats{Hits: 1, Misses: 1}))

		rec = serve(http.MethodGet, "/api/cache/L1/state", "")
		state := cache.State{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &state)).To(Succeed())
		Expect(state.Sets).To(HaveLen(4))
		Expect(state.Sets[1].Ways[0]).To(Equal(cache.WayState{Valid: true, Tag: 0}))
		Expect(state.Sets[1].RecencyOrder).To(Equal([]int{0, 1}))
	})

	It("should serialize cache details", func() {
		rec := serve(http.MethodGet, "/api/cache/L2", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should reset a cache", func() {
		_, err := l2.ProcessRequests([]uint16{0x0, 0x0})
		Expect(err).NotTo(HaveOccurred())

		rec := serve(http.MethodPost, "/api/cache/L2/reset", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(l2.Stats()).To(BeZero())
	})

	It("should return 404 for unknown caches", func() {
		Expect(serve(http.MethodGet, "/api/cache/L3/state", "").Code).
			To(Equal(http.StatusNotFound))
		Expect(serve(http.MethodPost, "/api/cache/L3/access", "0x0").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should report resource usage", func() {
		rec := serve(http.MethodGet, "/api/resource", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the index page", func() {
		rec := serve(http.MethodGet, "/", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start and stop a server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(url + "/api/list_caches")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.Shutdown(context.Background())).To(Succeed())
	})
})
