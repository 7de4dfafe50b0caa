// Package monitoring turns a set of caches into a web server that can be
// inspected and driven from a browser.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring/web"
)

// Monitor serves the state of registered caches over HTTP. Caches are not
// safe for concurrent use, so every request that touches a cache holds the
// monitor lock.
type Monitor struct {
	lock       sync.Mutex
	caches     []*cache.Cache
	portNumber int
	server     *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache to be monitored. Cache names must be
// unique.
func (m *Monitor) RegisterCache(c *cache.Cache) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, registered := range m.caches {
		if registered.Name() == c.Name() {
			panic(fmt.Sprintf("cache %s is already registered", c.Name()))
		}
	}

	m.caches = append(m.caches, c)
}

// Router returns the handler that serves the monitoring API and pages.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_caches", m.listCaches).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/{name}", m.cacheDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/{name}/state", m.cacheState).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/{name}/stats", m.cacheStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/{name}/access", m.access).Methods(http.MethodPost)
	r.HandleFunc("/api/cache/{name}/reset", m.reset).Methods(http.MethodPost)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", m.portNumber))
	if err != nil {
		return "", err
	}

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring caches with %s\n", url)

	return url, nil
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type cacheSummary struct {
	Name     string         `json:"name"`
	Geometry cache.Geometry `json:"geometry"`
	Policy   string         `json:"policy"`
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	summaries := make([]cacheSummary, 0, len(m.caches))
	for _, c := range m.caches {
		summaries = append(summaries, cacheSummary{
			Name:     c.Name(),
			Geometry: c.Geometry(),
			Policy:   c.RecencyPolicy().String(),
		})
	}

	writeJSON(w, summaries)
}

func (m *Monitor) cacheDetails(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findCacheOr404(w, r)
	if c == nil {
		return
	}

	state := c.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&state)
	serializer.SetMaxDepth(4)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) cacheState(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findCacheOr404(w, r)
	if c == nil {
		return
	}

	writeJSON(w, c.Snapshot())
}

func (m *Monitor) cacheStats(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findCacheOr404(w, r)
	if c == nil {
		return
	}

	writeJSON(w, c.Stats())
}

// maxAccessBodySize limits the trace a single access request may carry.
const maxAccessBodySize = 1 << 20

type accessRsp struct {
	Stats    cache.Stats          `json:"stats"`
	Accesses []cache.AccessResult `json:"accesses"`
}

// access feeds the addresses in the request body, written in trace format,
// to the cache.
func (m *Monitor) access(w http.ResponseWriter, r *http.Request) {
	addrs, err := trace.Parse(http.MaxBytesReader(w, r.Body, maxAccessBodySize))
	if err != nil {
		status := http.StatusBadRequest

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		w.WriteHeader(status)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findCacheOr404(w, r)
	if c == nil {
		return
	}

	rsp := accessRsp{Accesses: make([]cache.AccessResult, 0, len(addrs))}
	for _, addr := range addrs {
		result, err := c.Access(addr)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Error: %s", err)

			return
		}

		if result.Hit {
			rsp.Stats.Hits++
		} else {
			rsp.Stats.Misses++
		}

		rsp.Accesses = append(rsp.Accesses, result)
	}

	writeJSON(w, rsp)
}

func (m *Monitor) reset(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findCacheOr404(w, r)
	if c == nil {
		return
	}

	c.Reset()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) findCacheOr404(
	w http.ResponseWriter,
	r *http.Request,
) *cache.Cache {
	name := mux.Vars(r)["name"]

	for _, c := range m.caches {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "Cache %s not found", name)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
