package simulation

import (
	"github.com/sarchlab/cachesim/datarecording"
)

// ResultTableName is the table that a ResultRecorder writes to.
const ResultTableName = "cache_results"

// resultEntry represents the result of one cache in the database.
type resultEntry struct {
	RunID           string
	Label           string
	Policy          string
	ByteSize        uint64
	Associativity   int
	Accesses        uint64
	Loads           uint64
	Stores          uint64
	Hits            uint64
	Misses          uint64
	Evictions       uint64
	PrefetchLookups uint64
	PrefetchFills   uint64
	HitRate         float64
	HasHitRate      bool
}

// A ResultRecorder writes the results of caches into a database.
type ResultRecorder struct {
	dataRecorder datarecording.DataRecorder
}

// NewResultRecorder creates a ResultRecorder and its table.
func NewResultRecorder(dataRecorder datarecording.DataRecorder) *ResultRecorder {
	dataRecorder.CreateTable(ResultTableName, resultEntry{})

	return &ResultRecorder{dataRecorder: dataRecorder}
}

// Record buffers one result. The data recorder decides when it reaches the
// database.
func (r *ResultRecorder) Record(runID string, result Result) {
	s := result.Stats

	r.dataRecorder.InsertData(ResultTableName, resultEntry{
		RunID:           runID,
		Label:           result.Label,
		Policy:          result.Config.Policy.String(),
		ByteSize:        result.Config.ByteSize,
		Associativity:   result.Config.Associativity,
		Accesses:        s.Accesses,
		Loads:           s.Loads,
		Stores:          s.Stores,
		Hits:            s.Hits,
		Misses:          s.Misses,
		Evictions:       s.Evictions,
		PrefetchLookups: s.PrefetchLookups,
		PrefetchFills:   s.PrefetchFills,
		HitRate:         result.HitRate,
		HasHitRate:      result.HasHitRate,
	})
}

// Flush writes the buffered results.
func (r *ResultRecorder) Flush() {
	r.dataRecorder.Flush()
}
