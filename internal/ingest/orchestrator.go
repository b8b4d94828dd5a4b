package ingest

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"psychjobs-engine/internal/classify"
	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/linkcheck"
	"psychjobs-engine/internal/normalize"
	"psychjobs-engine/internal/rank"
)

// RecordStore is the slice of the store the orchestrator writes through.
type RecordStore interface {
	Create(ctx context.Context, r *domain.Record) (int64, error)
	Touch(ctx context.Context, id int64, at time.Time) error
}

// DupChecker reports whether a candidate already exists, returning the
// existing record for the freshness touch.
type DupChecker interface {
	Check(ctx context.Context, r domain.Record) (bool, *domain.Record)
}

// LinkValidator validates apply URLs inline for sources configured that
// way.
type LinkValidator interface {
	Validate(ctx context.Context, rawURL string) linkcheck.Result
}

// EventSink receives pipeline notifications for the SSE hub. May be nil.
type EventSink interface {
	Publish(payload string)
}

const summaryLimit = 280

// Options tune a run's pacing and budgets. Zero values fall back to
// the defaults below.
type Options struct {
	BatchWidth    int
	BatchPause    time.Duration
	FullBudget    time.Duration
	ChunkBudget   time.Duration
	SourceTimeout time.Duration

	// InlineLinkCheck names the sources whose apply URLs are validated
	// during ingestion. Other sources rely on the periodic sweep.
	InlineLinkCheck map[string]bool

	Clock Clock
}

func (o *Options) applyDefaults() {
	if o.BatchWidth <= 0 {
		o.BatchWidth = 5
	}
	if o.BatchPause <= 0 {
		o.BatchPause = 2 * time.Second
	}
	if o.FullBudget <= 0 {
		o.FullBudget = 20 * time.Minute
	}
	if o.ChunkBudget <= 0 {
		o.ChunkBudget = 4 * time.Minute
	}
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = 5 * time.Minute
	}
	if o.Clock == nil {
		o.Clock = realClock{}
	}
}

type Orchestrator struct {
	store    RecordStore
	dedup    DupChecker
	links    LinkValidator
	events   EventSink
	fetchers []Fetcher
	opts     Options
}

func New(store RecordStore, dedup DupChecker, links LinkValidator, events EventSink, fetchers []Fetcher, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		store:    store,
		dedup:    dedup,
		links:    links,
		events:   events,
		fetchers: fetchers,
		opts:     opts,
	}
}

// Run executes one ingestion run. Sources fan out concurrently and fail
// independently; within a source, records are processed in fixed-width
// batches with a pause between them, and the wall-clock budget is
// checked between batches only. On budget expiry Run returns what has
// been accumulated together with ErrBudgetExceeded.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) (RunResult, error) {
	if params.Mode == "" {
		params.Mode = ModeFull
	}
	res := RunResult{
		ID:        uuid.NewString(),
		Mode:      params.Mode,
		StartedAt: o.opts.Clock.Now(),
		Sources:   make(map[string]*SourceStats),
	}

	allowance := o.opts.FullBudget
	if params.Mode == ModeChunk {
		allowance = o.opts.ChunkBudget
	}
	bud := newBudget(o.opts.Clock, allowance)

	selected := o.selectFetchers(params.Sources)
	for _, f := range selected {
		res.Sources[f.Name()] = &SourceStats{}
	}
	log.Printf("[ingest] run %s mode=%s sources=%d", res.ID, params.Mode, len(selected))

	var budgetHit atomic.Bool
	var g errgroup.Group
	for _, f := range selected {
		f := f
		if t, ok := f.(Tunable); ok && (params.Pages > 0 || len(params.Queries) > 0) {
			f = t.Tuned(params.Pages, params.Queries)
		}
		stats := res.Sources[f.Name()]
		g.Go(func() error {
			o.runSource(ctx, f, params, stats, bud, &budgetHit)
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = o.opts.Clock.Now().Sub(res.StartedAt)
	res.BudgetHit = budgetHit.Load()

	if o.events != nil {
		o.events.Publish(events.Make(events.TypeRunFinished, map[string]any{
			"id": res.ID, "persisted": res.Persisted(),
		}))
	}
	log.Printf("[ingest] run %s done elapsed=%s persisted=%d budgetHit=%v",
		res.ID, res.Elapsed.Round(time.Millisecond), res.Persisted(), res.BudgetHit)

	if res.BudgetHit {
		return res, ErrBudgetExceeded
	}
	return res, nil
}

func (o *Orchestrator) selectFetchers(names []string) []Fetcher {
	if len(names) == 0 {
		return o.fetchers
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Fetcher
	for _, f := range o.fetchers {
		if want[f.Name()] {
			out = append(out, f)
		}
	}
	return out
}

func (o *Orchestrator) runSource(ctx context.Context, f Fetcher, params RunParams, stats *SourceStats, bud *budget, budgetHit *atomic.Bool) {
	fctx, cancel := context.WithTimeout(ctx, o.opts.SourceTimeout)
	defer cancel()

	log.Printf("[ingest:%s] fetching", f.Name())
	raws, err := f.Fetch(fctx)
	if err != nil {
		// best effort: a failed source never cancels siblings
		log.Printf("[ingest:%s] fetch error: %v", f.Name(), err)
		stats.Err = err.Error()
		stats.Errored++
		return
	}
	stats.Fetched = len(raws)

	width := o.opts.BatchWidth
	for start := 0; start < len(raws); start += width {
		if bud.exceeded() {
			budgetHit.Store(true)
			log.Printf("[ingest:%s] budget exceeded, %d records unprocessed",
				f.Name(), len(raws)-start)
			return
		}
		if start > 0 {
			o.opts.Clock.Sleep(ctx, o.opts.BatchPause)
		}

		end := start + width
		if end > len(raws) {
			end = len(raws)
		}
		batch := raws[start:end]
		outcomes := make([]outcome, len(batch))

		var wg sync.WaitGroup
		for i, raw := range batch {
			wg.Add(1)
			go func(i int, raw domain.RawRecord) {
				defer wg.Done()
				outcomes[i] = o.processOne(ctx, f.Name(), raw)
			}(i, raw)
		}
		wg.Wait()

		for _, oc := range outcomes {
			switch oc {
			case outcomeAccepted:
				stats.Accepted++
				stats.Persisted++
			case outcomeDuplicate:
				stats.Accepted++
				stats.Duplicates++
			case outcomeLinkRejected:
				stats.Accepted++
				stats.LinkRejected++
			case outcomeErrored:
				stats.Accepted++
				stats.Errored++
			}
		}
	}
}

type outcome int

const (
	outcomeIrrelevant outcome = iota
	outcomeAccepted
	outcomeDuplicate
	outcomeLinkRejected
	outcomeErrored
)

func (o *Orchestrator) processOne(ctx context.Context, source string, raw domain.RawRecord) outcome {
	if !classify.Classify(raw.Title, raw.Description) {
		return outcomeIrrelevant
	}

	rec := o.buildRecord(source, raw)

	dup, existing := o.dedup.Check(ctx, rec)
	if dup {
		if existing != nil {
			if err := o.store.Touch(ctx, existing.ID, o.opts.Clock.Now().UTC()); err != nil {
				log.Printf("[ingest:%s] touch id=%d failed: %v", source, existing.ID, err)
			}
		}
		return outcomeDuplicate
	}

	if o.links != nil && o.opts.InlineLinkCheck[source] {
		vr := o.links.Validate(ctx, rec.ApplyURL)
		if vr.Dead || (vr.Tracking && vr.CleanURL == "") {
			return outcomeLinkRejected
		}
		if vr.CleanURL != "" {
			rec.ApplyURL = vr.CleanURL
		}
	}

	rec.Score = rank.Score(rec)
	rec.Published = true
	now := o.opts.Clock.Now().UTC()
	rec.FirstSeenAt, rec.LastSeenAt = now, now

	if _, err := o.store.Create(ctx, &rec); err != nil {
		log.Printf("[ingest:%s] create failed title=%q url=%q: %v",
			source, rec.Title, rec.ApplyURL, err)
		return outcomeErrored
	}
	if o.events != nil {
		o.events.Publish(events.Make(events.TypeRecordCreated, map[string]string{"source": source}))
	}
	return outcomeAccepted
}

// buildRecord runs the stateless normalizers over one raw posting.
// Normalization rejections leave the field absent, never drop the
// record.
func (o *Orchestrator) buildRecord(source string, raw domain.RawRecord) domain.Record {
	desc := normalize.CleanDescription(raw.Description)
	loc := normalize.ParseLocation(raw.Location)

	rec := domain.Record{
		Title:          strings.TrimSpace(raw.Title),
		Employer:       strings.TrimSpace(raw.Employer),
		Description:    desc,
		Summary:        normalize.Summarize(desc, summaryLimit),
		Location:       loc,
		JobType:        normalize.DetectJobType(raw.Title, desc),
		WorkMode:       normalize.DetectWorkMode(loc, raw.Title, desc, raw.Remote),
		ApplyURL:       strings.TrimSpace(raw.ApplyURL),
		ExternalID:     raw.ExternalID,
		Source:         source,
		EmployerDirect: raw.EmployerDirect,
		PostedAt:       raw.PostedAt,
	}
	if raw.Source != "" {
		rec.Source = raw.Source
	}

	freeText := raw.SalaryText
	if freeText == "" {
		freeText = desc
	}
	if sal := normalize.Salary(raw.SalaryMin, raw.SalaryMax, raw.SalaryPeriod, freeText); sal != nil {
		rec.Salary = domain.Salary{
			RawMin:     raw.SalaryMin,
			RawMax:     raw.SalaryMax,
			RawPeriod:  raw.SalaryPeriod,
			Estimated:  sal.Estimated,
			Confidence: sal.Confidence,
		}
		if sal.AnnualMin != nil {
			rec.Salary.AnnualMin = *sal.AnnualMin
		}
		if sal.AnnualMax != nil {
			rec.Salary.AnnualMax = *sal.AnnualMax
		}
	}
	return rec
}
