package experiment

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

func statsOf(results []Result) []cache.Stats {
	stats := []cache.Stats{}
	for _, r := range results {
		stats = append(stats, r.Stats)
	}

	return stats
}

var _ = Describe("Runner", func() {
	It("should reproduce the canonical results", func() {
		results, err := MakeRunner().Run(Canonical(), trace.DemoTrace())

		Expect(err).NotTo(HaveOccurred())
		Expect(statsOf(results)).To(Equal([]cache.Stats{
			{Hits: 9, Misses: 23},
			{Hits: 13, Misses: 19},
			{Hits: 15, Misses: 17},
			{Hits: 16, Misses: 16},
		}))

		for _, r := range results {
			Expect(r.Config.Geometry.ByteSize()).To(Equal(128))
			Expect(r.Cache.Name()).To(Equal(r.Config.Name))
		}
	})

	It("should reproduce the hit-only variant", func() {
		results, err := MakeRunner().
			WithRecencyPolicy(cache.TouchOnHitOnly).
			Run(Canonical(), trace.DemoTrace())

		Expect(err).NotTo(HaveOccurred())
		Expect(statsOf(results)).To(Equal([]cache.Stats{
			{Hits: 9, Misses: 23},
			{Hits: 13, Misses: 19},
			{Hits: 9, Misses: 23},
			{Hits: 8, Misses: 24},
		}))
		Expect(results[0].Policy).To(Equal(cache.TouchOnHitOnly))
	})

	It("should stop at an invalid configuration", func() {
		configs := []Config{
			Canonical()[0],
			{Name: "broken", Geometry: cache.Geometry{LineSize: 10, SetCount: 1, Associativity: 1}},
			Canonical()[1],
		}

		results, err := MakeRunner().Run(configs, trace.DemoTrace())

		Expect(err).To(MatchError(cache.ErrInvalidGeometry))
		Expect(err.Error()).To(HavePrefix("broken: "))
		Expect(results).To(HaveLen(1))
	})

	It("should attach hooks made per configuration", func() {
		seen := map[string]int{}

		_, err := MakeRunner().
			WithHookFactory(func(config Config) hooking.Hook {
				return hooking.HookFunc(func(ctx hooking.HookCtx) {
					if ctx.Pos == cache.HookPosAccess {
						seen[config.Name]++
					}
				})
			}).
			Run(Canonical()[:2], []uint16{0x1, 0x2, 0x3})

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(map[string]int{"Test 1": 3, "Test 2": 3}))
	})

	It("should describe custom geometries", func() {
		config := Custom(cache.Geometry{LineSize: 32, SetCount: 4, Associativity: 2})

		Expect(config.Name).To(Equal("32x4x2"))
		Expect(config.Description).To(Equal("256 byte 2-way cache with 32 bytes per line"))
	})

	Context("with a recorder", func() {
		var (
			db       *sql.DB
			recorder datarecording.DataRecorder
		)

		BeforeEach(func() {
			var err error
			db, err = sql.Open("sqlite3", ":memory:")
			Expect(err).NotTo(HaveOccurred())
			db.SetMaxOpenConns(1)

			recorder = datarecording.NewWithDB(db)
		})

		AfterEach(func() {
			Expect(recorder.Close()).To(Succeed())
		})

		It("should record one row per configuration", func() {
			runner := MakeRunner().WithRunID("run-1").WithRecorder(recorder, false)

			_, err := runner.Run(Canonical(), trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())

			var rows int
			var hits uint64
			Expect(db.QueryRow(
				"SELECT COUNT(*) FROM cache_runs WHERE RunID = 'run-1'",
			).Scan(&rows)).To(Succeed())
			Expect(db.QueryRow(
				"SELECT Hits FROM cache_runs WHERE Config = 'Test 3'",
			).Scan(&hits)).To(Succeed())

			Expect(rows).To(Equal(4))
			Expect(hits).To(Equal(uint64(15)))
			Expect(recorder.ListTables()).To(Equal([]string{RunTable}))
		})

		It("should read recorded runs back", func() {
			_, err := MakeRunner().WithRunID("a").WithRecorder(recorder, false).
				Run(Canonical(), trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())
			_, err = MakeRunner().WithRunID("b").WithRecorder(recorder, false).
				WithRecencyPolicy(cache.TouchOnHitOnly).
				Run(Canonical(), trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())

			reader := datarecording.NewReaderWithDB(db)

			runs, err := ReadRuns(context.Background(), reader, "b")
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(4))
			Expect(runs[3]).To(Equal(RunEntry{
				RunID:         "b",
				Config:        "Test 4",
				Description:   Canonical()[3].Description,
				LineSize:      16,
				SetCount:      1,
				Associativity: 8,
				Policy:        "hit-only",
				Accesses:      32,
				Hits:          8,
				Misses:        24,
				HitRate:       0.25,
			}))

			all, err := ReadRuns(context.Background(), reader, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(8))
			Expect(all[0].RunID).To(Equal("a"))
		})

		It("should fail to read runs that were never recorded", func() {
			_, err := ReadRuns(context.Background(),
				datarecording.NewReaderWithDB(db), "")

			Expect(err).To(MatchError(ContainSubstring(RunTable)))
		})

		It("should record accesses when asked", func() {
			runner := MakeRunner().WithRecorder(recorder, true)

			_, err := runner.Run(Canonical(), trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())

			var accesses int
			Expect(db.QueryRow(
				"SELECT COUNT(*) FROM cache_accesses WHERE RunID = ?", runner.RunID(),
			).Scan(&accesses)).To(Succeed())
			Expect(accesses).To(Equal(4 * 32))
		})

		It("should run twice on the same recorder", func() {
			runner := MakeRunner().WithRecorder(recorder, true)

			_, err := runner.Run(Canonical()[:1], trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())
			_, err = runner.Run(Canonical()[:1], trace.DemoTrace())
			Expect(err).NotTo(HaveOccurred())

			var rows int
			Expect(db.QueryRow("SELECT COUNT(*) FROM cache_runs").Scan(&rows)).To(Succeed())
			Expect(rows).To(Equal(2))
		})
	})
})
