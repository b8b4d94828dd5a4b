package ingest

import (
	"context"
	"errors"
	"time"
)

// ErrBudgetExceeded signals planned early termination of a run. Callers
// still receive the partial RunResult alongside it.
var ErrBudgetExceeded = errors.New("ingest: run budget exceeded")

// Clock abstracts wall time so budget behavior is testable without
// waiting out real durations.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// budget tracks one run's wall-clock allowance. It is checked between
// batches only; a batch in flight always completes.
type budget struct {
	clock    Clock
	deadline time.Time
}

func newBudget(clock Clock, d time.Duration) *budget {
	return &budget{clock: clock, deadline: clock.Now().Add(d)}
}

func (b *budget) exceeded() bool {
	return b.clock.Now().After(b.deadline)
}
