// Package ingest coordinates one ingestion run: fetch raw postings from
// every configured source, push each through the relevance and
// normalization pipeline, and persist what survives.
package ingest

import (
	"context"
	"time"

	"psychjobs-engine/internal/domain"
)

// Fetcher is the contract every source connector satisfies. Fetch does
// all platform-specific work (pagination, auth, field mapping) and
// returns raw records; the pipeline never sees a platform wire format.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// Tunable is satisfied by connectors that honor per-run overrides for
// page depth and query list. Tuned returns a copy; the registered
// fetcher keeps its configured defaults for later runs.
type Tunable interface {
	Tuned(pages int, queries []string) Fetcher
}

// Run modes. A chunk run is the scheduled partial scan with a tighter
// time budget; a full run is the ad-hoc wide scan.
const (
	ModeFull  = "full"
	ModeChunk = "chunk"
)

// RunParams selects what a run covers.
type RunParams struct {
	Mode    string   // ModeFull or ModeChunk
	Sources []string // empty = all registered fetchers
	Pages   int      // per-query page depth hint for paginated connectors
	Queries []string // overrides the default keyword x location matrix
}

// SourceStats counts one source's outcomes within a run.
type SourceStats struct {
	Fetched      int    `json:"fetched"`
	Accepted     int    `json:"accepted"`
	Duplicates   int    `json:"duplicates"`
	LinkRejected int    `json:"linkRejected"`
	Persisted    int    `json:"persisted"`
	Errored      int    `json:"errored"`
	Err          string `json:"err,omitempty"` // fetch-level failure, if any
}

// RunResult is the reporting surface of a finished (or budget-cut) run.
type RunResult struct {
	ID        string                  `json:"id"`
	Mode      string                  `json:"mode"`
	StartedAt time.Time               `json:"startedAt"`
	Elapsed   time.Duration           `json:"elapsed"`
	BudgetHit bool                    `json:"budgetHit"`
	Sources   map[string]*SourceStats `json:"sources"`
}

// Persisted sums persisted counts across sources.
func (r RunResult) Persisted() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Persisted
	}
	return n
}
