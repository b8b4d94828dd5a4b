// Package scheduler wires the recurring lanes: scheduled ingestion
// runs, the link-liveness sweep, and the offline dedup pass.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"psychjobs-engine/internal/dedup"
	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/sweep"
)

// Config holds the cron expressions and sweep tuning for every lane.
// Empty expressions disable the lane.
type Config struct {
	FullScanSpec  string // e.g. "0 3 * * *"
	ChunkScanSpec string // e.g. "15 * * * *"
	LinkSweepSpec string // e.g. "45 */4 * * *"
	DedupSpec     string // e.g. "30 4 * * *"

	SweepMaxAge time.Duration
	SweepLimit  int
}

type Scheduler struct {
	cron *cron.Cron
}

// Start registers all configured lanes and starts the cron loop. The
// returned Scheduler keeps running until Stop.
func Start(ctx context.Context, cfg Config, mgr *ingest.Manager, st sweep.Store, checker sweep.Checker, dedupStore dedup.OfflineStore, hub *events.Hub) (*Scheduler, error) {
	c := cron.New()

	add := func(spec, name string, job func()) error {
		if spec == "" {
			return nil
		}
		if _, err := c.AddFunc(spec, job); err != nil {
			return err
		}
		log.Printf("[scheduler] lane %s at %q", name, spec)
		return nil
	}

	runIngest := func(mode string) func() {
		return func() {
			_, err := mgr.RunSync(ctx, ingest.RunParams{Mode: mode})
			switch {
			case errors.Is(err, ingest.ErrRunInProgress):
				log.Printf("[scheduler] %s run skipped, previous run still active", mode)
			case err != nil && !errors.Is(err, ingest.ErrBudgetExceeded):
				log.Printf("[scheduler] %s run: %v", mode, err)
			}
		}
	}

	if err := add(cfg.FullScanSpec, "full-scan", runIngest(ingest.ModeFull)); err != nil {
		return nil, err
	}
	if err := add(cfg.ChunkScanSpec, "chunk-scan", runIngest(ingest.ModeChunk)); err != nil {
		return nil, err
	}
	if err := add(cfg.LinkSweepSpec, "link-sweep", func() {
		res, err := sweep.Run(ctx, st, checker, cfg.SweepMaxAge, cfg.SweepLimit)
		if err != nil {
			log.Printf("[scheduler] link sweep: %v", err)
			return
		}
		if hub != nil {
			hub.Publish(events.Make(events.TypeSweepFinished, res))
		}
	}); err != nil {
		return nil, err
	}
	if err := add(cfg.DedupSpec, "offline-dedup", func() {
		if _, err := dedup.RunOffline(ctx, dedupStore); err != nil {
			log.Printf("[scheduler] offline dedup: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return &Scheduler{cron: c}, nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
