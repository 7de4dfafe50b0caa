package experiment

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// RunTable is the table a Runner records results to.
const RunTable = "cache_runs"

// RunEntry is the row recorded for one configuration of a run.
type RunEntry struct {
	RunID         string
	Config        string
	Description   string
	LineSize      int
	SetCount      int
	Associativity int
	Policy        string
	Accesses      uint64
	Hits          uint64
	Misses        uint64
	HitRate       float64
}

// Result is the outcome of running a trace through one configuration.
type Result struct {
	Config Config
	Policy cache.RecencyPolicy
	Stats  cache.Stats
	Cache  *cache.Cache
}

// Runner runs traces through fresh caches. Its zero value is not usable;
// create one with MakeRunner.
type Runner struct {
	runID         string
	policy        cache.RecencyPolicy
	recorder      datarecording.DataRecorder
	traceAccesses bool
	hookFactories []func(Config) hooking.Hook
	logger        *slog.Logger
}

// MakeRunner creates a runner with a fresh run ID that records nothing.
func MakeRunner() Runner {
	return Runner{
		runID:  xid.New().String(),
		policy: cache.TouchOnAccess,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRunID overrides the generated run ID.
func (r Runner) WithRunID(runID string) Runner {
	r.runID = runID
	return r
}

// WithRecencyPolicy sets the recency policy of every cache built.
func (r Runner) WithRecencyPolicy(policy cache.RecencyPolicy) Runner {
	r.policy = policy
	return r
}

// WithRecorder records a row per configuration into RunTable. If
// traceAccesses is set, every access is also recorded.
func (r Runner) WithRecorder(
	recorder datarecording.DataRecorder,
	traceAccesses bool,
) Runner {
	r.recorder = recorder
	r.traceAccesses = traceAccesses

	return r
}

// WithHookFactory attaches a hook created per configuration to each cache.
func (r Runner) WithHookFactory(factory func(Config) hooking.Hook) Runner {
	r.hookFactories = append(slices.Clip(r.hookFactories), factory)
	return r
}

// WithLogger sets the logger progress is reported to.
func (r Runner) WithLogger(logger *slog.Logger) Runner {
	r.logger = logger
	return r
}

// RunID returns the ID rows are recorded under.
func (r Runner) RunID() string {
	return r.runID
}

// Run feeds the same addresses to a new cache per configuration. It stops at
// the first configuration that fails.
func (r Runner) Run(configs []Config, addrs []uint16) ([]Result, error) {
	r.prepareRecorder()

	results := make([]Result, 0, len(configs))

	for _, config := range configs {
		result, err := r.runOne(config, addrs)
		if err != nil {
			return results, fmt.Errorf("%s: %w", config.Name, err)
		}

		results = append(results, result)
	}

	if r.recorder != nil {
		r.recorder.Flush()
	}

	return results, nil
}

func (r Runner) prepareRecorder() {
	if r.recorder == nil {
		return
	}

	if !slices.Contains(r.recorder.ListTables(), RunTable) {
		r.recorder.CreateTable(RunTable, RunEntry{})
	}
}

func (r Runner) runOne(config Config, addrs []uint16) (Result, error) {
	builder := cache.MakeBuilder().
		WithName(config.Name).
		WithGeometry(config.Geometry).
		WithRecencyPolicy(r.policy)

	if r.recorder != nil && r.traceAccesses {
		builder = builder.WithHook(trace.NewDBTracer(r.recorder, r.runID))
	}

	for _, factory := range r.hookFactories {
		builder = builder.WithHook(factory(config))
	}

	c, err := builder.Build()
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("running configuration",
		"config", config.Name,
		"geometry", config.Geometry.String(),
		"policy", r.policy.String(),
		"accesses", len(addrs))

	stats, err := c.ProcessRequests(addrs)
	if err != nil {
		return Result{}, err
	}

	r.logger.Info("configuration finished",
		"config", config.Name,
		"hits", stats.Hits,
		"misses", stats.Misses)

	r.record(config, stats)

	return Result{
		Config: config,
		Policy: r.policy,
		Stats:  stats,
		Cache:  c,
	}, nil
}

func (r Runner) record(config Config, stats cache.Stats) {
	if r.recorder == nil {
		return
	}

	r.recorder.InsertData(RunTable, RunEntry{
		RunID:         r.runID,
		Config:        config.Name,
		Description:   config.Description,
		LineSize:      config.Geometry.LineSize,
		SetCount:      config.Geometry.SetCount,
		Associativity: config.Geometry.Associativity,
		Policy:        r.policy.String(),
		Accesses:      stats.Total(),
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		HitRate:       stats.HitRate(),
	})
}
