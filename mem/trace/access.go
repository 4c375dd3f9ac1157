// Package trace provides the memory accesses that drive the cache models, a
// reader for text traces, and tracers that record what the caches do with
// each access.
package trace

import (
	"fmt"
	"strings"

	"github.com/sarchlab/cachesim/sim/hooking"
)

// AccessKind tells if an access reads or writes memory.
type AccessKind int

const (
	// Load reads memory.
	Load AccessKind = iota

	// Store writes memory.
	Store
)

func (k AccessKind) String() string {
	switch k {
	case Load:
		return "L"
	case Store:
		return "S"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// ParseAccessKind converts the single-letter form used in trace files.
func ParseAccessKind(s string) (AccessKind, error) {
	switch strings.ToUpper(s) {
	case "L":
		return Load, nil
	case "S":
		return Store, nil
	default:
		return 0, fmt.Errorf("unknown access kind %q", s)
	}
}

// AccessEvent is one memory access of a trace.
type AccessEvent struct {
	Kind    AccessKind
	Address uint64
}

// LoadAt returns a load of the address.
func LoadAt(addr uint64) AccessEvent {
	return AccessEvent{Kind: Load, Address: addr}
}

// StoreAt returns a store to the address.
func StoreAt(addr uint64) AccessEvent {
	return AccessEvent{Kind: Store, Address: addr}
}

// A list of hook poses where caches report accesses.
var (
	HookPosAccess   = &hooking.HookPos{Name: "HookPosAccess"}
	HookPosPrefetch = &hooking.HookPos{Name: "HookPosPrefetch"}
)

// AccessInfo is the detail of the hooks invoked at HookPosAccess and
// HookPosPrefetch.
type AccessInfo struct {
	Event    AccessEvent
	Hit      bool
	Prefetch bool
}
