package trace

import (
	"log"
	"sync"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// accessEntry represents a cache access in the database. SQLite integers are
// signed 64-bit, so Address holds the two's complement bit pattern of the
// address; read it back with uint64(Address).
type accessEntry struct {
	Cache    string
	Seq      uint64
	Kind     string
	Address  int64
	Hit      bool
	Prefetch bool
}

// A logTracer is a hook that prints every access of a cache.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a hook that writes one line per access and per
// prefetch.
func NewLogTracer(logger *log.Logger) hooking.Hook {
	return &logTracer{logger: logger}
}

// Func prints the access carried by the hook context.
func (t *logTracer) Func(ctx hooking.HookCtx) {
	info, ok := ctx.Detail.(AccessInfo)
	if !ok {
		return
	}

	what := "access"
	if info.Prefetch {
		what = "prefetch"
	}

	result := "miss"
	if info.Hit {
		result = "hit"
	}

	t.logger.Printf("%s, %s, %s, 0x%x, %s\n",
		what,
		ctx.DomainName(),
		info.Event.Kind,
		info.Event.Address,
		result,
	)
}

// A dbTracer is a hook that records the accesses of caches into a database
// using the data recorder.
type dbTracer struct {
	lock         sync.Mutex
	dataRecorder datarecording.DataRecorder
	seq          map[string]uint64
}

// AccessTableName is the table that NewDBTracer writes to.
const AccessTableName = "cache_accesses"

// NewDBTracer creates a hook that inserts one row per access and per prefetch.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
		seq:          make(map[string]uint64),
	}

	t.dataRecorder.CreateTable(AccessTableName, accessEntry{})

	return t
}

// Func records the access carried by the hook context.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	info, ok := ctx.Detail.(AccessInfo)
	if !ok {
		return
	}

	name := ctx.DomainName()

	t.lock.Lock()
	defer t.lock.Unlock()

	t.seq[name]++

	entry := accessEntry{
		Cache:    name,
		Seq:      t.seq[name],
		Kind:     info.Event.Kind.String(),
		Address:  int64(info.Event.Address),
		Hit:      info.Hit,
		Prefetch: info.Prefetch,
	}

	t.dataRecorder.InsertData(AccessTableName, entry)
}
