package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"psychjobs-engine/internal/config"
	"psychjobs-engine/internal/dedup"
	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/httpapi"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/linkcheck"
	"psychjobs-engine/internal/netutil"
	"psychjobs-engine/internal/scheduler"
	"psychjobs-engine/internal/store"
)

func main() {
	dataDir := resolveDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// one engine per data dir; a second instance would race the
	// dedup check-then-create window
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is using %s", dataDir)
	}
	defer lock.Unlock()

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap: %v", err)
	}
	raw, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load (%s): %v", userCfgPath, err)
	}
	cfg, validation := config.NormalizeAndValidate(raw)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("config invalid (%s)", userCfgPath)
	}

	st, err := store.Open(filepath.Join(dataDir, "psychjobs.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		log.Fatal(err)
	}

	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 2
	}
	limiter := netutil.NewHostLimiter(rps, burst)

	checkTimeout := time.Duration(cfg.LinkCheck.TimeoutSeconds) * time.Second
	validator := linkcheck.New(checkTimeout, limiter)

	hub := events.NewHub()
	fetchers := buildFetchers(cfg, limiter)
	log.Printf("[engine] sources enabled: %d", len(fetchers))

	inline := map[string]bool{}
	if cfg.Sources.JobSearch.InlineLinkCheck {
		inline["jobsearch"] = true
	}

	orch := ingest.New(st, dedup.NewChecker(st), validator, hub, fetchers, ingest.Options{
		BatchWidth:      cfg.Ingest.BatchWidth,
		BatchPause:      time.Duration(cfg.Ingest.BatchPauseSeconds) * time.Second,
		FullBudget:      time.Duration(cfg.Ingest.FullBudgetMinutes) * time.Minute,
		ChunkBudget:     time.Duration(cfg.Ingest.ChunkBudgetMinutes) * time.Minute,
		SourceTimeout:   time.Duration(cfg.Ingest.SourceTimeoutMinutes) * time.Minute,
		InlineLinkCheck: inline,
	})
	mgr := ingest.NewManager(orch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.Start(ctx, scheduler.Config{
		FullScanSpec:  cfg.Schedule.FullScan,
		ChunkScanSpec: cfg.Schedule.ChunkScan,
		LinkSweepSpec: cfg.Schedule.LinkSweep,
		DedupSpec:     cfg.Schedule.OfflineDedup,
		SweepMaxAge:   time.Duration(cfg.Schedule.SweepMaxAgeHours) * time.Hour,
		SweepLimit:    cfg.Schedule.SweepLimit,
	}, mgr, st, validator, st, hub)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	addr := net.JoinHostPort("127.0.0.1", itoa(cfg.App.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.Handler(httpapi.Deps{Store: st, Runner: mgr, Hub: hub}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("[engine] listening on http://%s (data=%s)", addr, dataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[engine] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func resolveDataDir() string {
	if dir := os.Getenv("PSYCHJOBS_DATA_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "psychjobs")
}

func itoa(n int) string {
	if n <= 0 {
		n = 8787
	}
	return strconv.Itoa(n)
}
