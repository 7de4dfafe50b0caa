package trace

import (
	"log"
	"slices"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// AccessTable is the table DBTracer writes to.
const AccessTable = "cache_accesses"

// accessEntry represents a cache access in the database
type accessEntry struct {
	RunID      string
	Location   string
	Seq        uint64
	Address    uint16
	SetIndex   uint16
	Tag        uint16
	WayID      int
	Hit        bool
	Evicted    bool
	EvictedTag uint16
}

type named interface {
	Name() string
}

func locationOf(ctx hooking.HookCtx) string {
	if n, ok := ctx.Domain.(named); ok {
		return n.Name()
	}

	return ""
}

// LogTracer is a hook that prints every access and eviction of a cache.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a new LogTracer.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Func prints the access or eviction.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		t.logAccess(locationOf(ctx), ctx.Item.(cache.AccessResult))
	case cache.HookPosEviction:
		t.logEviction(locationOf(ctx), ctx.Item.(cache.Eviction))
	}
}

func (t *LogTracer) logAccess(where string, r cache.AccessResult) {
	outcome := "miss"
	if r.Hit {
		outcome = "hit"
	}

	t.logger.Printf("access, %s, %d, 0x%04x, set %d, tag 0x%x, way %d, %s\n",
		where, r.Seq, r.Address, r.Fields.SetIndex, r.Fields.Tag, r.WayID,
		outcome)
}

func (t *LogTracer) logEviction(where string, e cache.Eviction) {
	t.logger.Printf("evict, %s, %d, set %d, way %d, tag 0x%x\n",
		where, e.Seq, e.SetID, e.WayID, e.Tag)
}

// A DBTracer is a hook that records every access into a database using the
// data recorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	runID        string
}

// NewDBTracer creates a tracer that tags its rows with runID. Several tracers
// may share one recorder.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	runID string,
) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
		runID:        runID,
	}

	if !slices.Contains(dataRecorder.ListTables(), AccessTable) {
		dataRecorder.CreateTable(AccessTable, accessEntry{})
	}

	return t
}

// Func records the access. Evictions are already part of the access row.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	r := ctx.Item.(cache.AccessResult)

	t.dataRecorder.InsertData(AccessTable, accessEntry{
		RunID:      t.runID,
		Location:   locationOf(ctx),
		Seq:        r.Seq,
		Address:    r.Address,
		SetIndex:   r.Fields.SetIndex,
		Tag:        r.Fields.Tag,
		WayID:      r.WayID,
		Hit:        r.Hit,
		Evicted:    r.Evicted,
		EvictedTag: r.EvictedTag,
	})
}
