package ingest

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrRunInProgress rejects a trigger while another run is active.
var ErrRunInProgress = errors.New("ingest: a run is already in progress")

// Status is the reporting surface for operational tooling.
type Status struct {
	Running   bool       `json:"running"`
	Mode      string     `json:"mode,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	Last      *RunResult `json:"last,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	LastOkAt  time.Time  `json:"lastOkAt"`
}

// Manager serializes runs over one Orchestrator: scheduled lanes and
// ad-hoc triggers share it, so runs never overlap.
type Manager struct {
	orch *Orchestrator

	mu      sync.Mutex
	running bool
	status  Status
}

func NewManager(orch *Orchestrator) *Manager {
	return &Manager{orch: orch}
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// RunSync executes a run and blocks until it finishes. A concurrent
// run makes it return ErrRunInProgress immediately.
func (m *Manager) RunSync(ctx context.Context, params RunParams) (RunResult, error) {
	if err := m.begin(params); err != nil {
		return RunResult{}, err
	}
	res, err := m.orch.Run(ctx, params)
	m.finish(res, err)
	return res, err
}

// Trigger starts a run in the background. The returned error only
// covers admission; run failures land in Status.
func (m *Manager) Trigger(ctx context.Context, params RunParams) error {
	if err := m.begin(params); err != nil {
		return err
	}
	go func() {
		res, err := m.orch.Run(ctx, params)
		m.finish(res, err)
	}()
	return nil
}

func (m *Manager) begin(params RunParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrRunInProgress
	}
	m.running = true
	m.status.Running = true
	m.status.Mode = params.Mode
	if m.status.Mode == "" {
		m.status.Mode = ModeFull
	}
	m.status.StartedAt = time.Now().UTC()
	return nil
}

func (m *Manager) finish(res RunResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.status.Running = false
	m.status.Last = &res

	// a budget cut still counts as a successful, partial run
	if err != nil && !errors.Is(err, ErrBudgetExceeded) {
		m.status.LastError = err.Error()
		log.Printf("[ingest] run failed: %v", err)
		return
	}
	m.status.LastError = ""
	m.status.LastOkAt = time.Now().UTC()
}
