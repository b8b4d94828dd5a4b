package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychjobs-engine/internal/domain"
)

type blockingFetcher struct {
	name    string
	release chan struct{}
}

func (f *blockingFetcher) Name() string { return f.name }

func (f *blockingFetcher) Fetch(context.Context) ([]domain.RawRecord, error) {
	<-f.release
	return nil, nil
}

func TestManagerSingleFlight(t *testing.T) {
	f := &blockingFetcher{name: "slow", release: make(chan struct{})}
	o, _, _ := newTestOrchestrator(t, []Fetcher{f}, Options{})
	m := NewManager(o)

	require.NoError(t, m.Trigger(context.Background(), RunParams{Mode: ModeChunk}))
	st := m.Status()
	assert.True(t, st.Running)
	assert.Equal(t, ModeChunk, st.Mode)

	assert.ErrorIs(t, m.Trigger(context.Background(), RunParams{}), ErrRunInProgress)
	_, err := m.RunSync(context.Background(), RunParams{})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(f.release)
	require.Eventually(t, func() bool { return !m.Status().Running },
		time.Second, 10*time.Millisecond)

	st = m.Status()
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastOkAt.IsZero())
	require.NotNil(t, st.Last)
}

func TestManagerTreatsBudgetCutAsSuccess(t *testing.T) {
	f := &fakeFetcher{name: "wide", raws: []domain.RawRecord{
		relevant("1"), relevant("2"), relevant("3"),
	}}
	o, _, _ := newTestOrchestrator(t, []Fetcher{f}, Options{
		BatchWidth: 1,
		BatchPause: 10 * time.Minute,
		FullBudget: 5 * time.Minute,
	})
	m := NewManager(o)

	res, err := m.RunSync(context.Background(), RunParams{})
	require.ErrorIs(t, err, ErrBudgetExceeded)
	assert.True(t, res.BudgetHit)

	st := m.Status()
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastOkAt.IsZero())
	assert.True(t, st.Last.BudgetHit)
}
