// Package httpapi is the thin operational HTTP surface over the
// engine: record listing, stats, run control, and the SSE stream.
package httpapi

import (
	"context"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/store"
)

// RecordReader is the read-only slice of the store the API serves.
type RecordReader interface {
	List(ctx context.Context, opts store.ListOpts) ([]domain.Record, error)
	Count(ctx context.Context, c store.Criteria) (int, error)
	GroupBy(ctx context.Context, column string) ([]store.GroupCount, error)
}

// Runner admits and reports ingestion runs.
type Runner interface {
	Trigger(ctx context.Context, params ingest.RunParams) error
	Status() ingest.Status
}

type Deps struct {
	Store  RecordReader
	Runner Runner
	Hub    *events.Hub
}
