// Package jobsearch fetches postings from a paid job-search aggregator
// API, paginating a keyword x location query matrix.
package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/netutil"
)

// baseURL is a var so connector tests can point it at a local server.
var baseURL = "https://api.adzuna.com/v1/api/jobs"

const (
	userAgent = "psychjobs-engine/1.0 (+local)"
	pageSize  = 50

	// retries apply to 429 responses only
	maxRetries   = 2
	retryBackoff = 2 * time.Second
)

var defaultKeywords = []string{
	"psychiatric nurse practitioner",
	"PMHNP",
	"psychiatric mental health nurse practitioner",
}

type Config struct {
	AppID   string
	AppKey  string
	Country string // "us"

	Keywords  []string // empty = defaultKeywords
	Locations []string // empty = nationwide (no where filter)
	Pages     int      // per-query page depth, min 1

	// Queries overrides the keyword x location matrix entirely.
	Queries []string
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *netutil.HostLimiter
}

func New(cfg Config, limiter *netutil.HostLimiter) *Fetcher {
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.Pages < 1 {
		cfg.Pages = 1
	}
	if limiter != nil {
		// the search API meters by quota, not politeness; keep it
		// slower than the shared per-host default
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
			limiter.SetHostLimit(u.Host, 0.5, 1)
		}
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return "jobsearch" }

// Tuned returns a copy of the connector with per-run page depth and
// query overrides applied. Zero values keep the configured defaults.
func (f *Fetcher) Tuned(pages int, queries []string) ingest.Fetcher {
	cfg := f.cfg
	if pages > 0 {
		cfg.Pages = pages
	}
	if len(queries) > 0 {
		cfg.Queries = queries
	}
	return &Fetcher{cfg: cfg, hc: f.hc, limiter: f.limiter}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Predicted   string  `json:"salary_is_predicted"` // "1" when modelled
	Created     string  `json:"created"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

type query struct {
	what  string
	where string
}

func (f *Fetcher) queries() []query {
	if len(f.cfg.Queries) > 0 {
		out := make([]query, 0, len(f.cfg.Queries))
		for _, q := range f.cfg.Queries {
			out = append(out, query{what: q})
		}
		return out
	}

	keywords := f.cfg.Keywords
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}
	locations := f.cfg.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	out := make([]query, 0, len(keywords)*len(locations))
	for _, kw := range keywords {
		for _, loc := range locations {
			out = append(out, query{what: kw, where: loc})
		}
	}
	return out
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if f.cfg.AppID == "" || f.cfg.AppKey == "" {
		log.Printf("[ats:jobsearch] credentials not set, skipping")
		return nil, nil
	}

	seen := map[string]bool{}
	var out []domain.RawRecord
	for _, q := range f.queries() {
		for page := 1; page <= f.cfg.Pages; page++ {
			batch, err := f.fetchPage(ctx, q, page)
			if err != nil {
				// the matrix overlaps heavily; keep what other queries found
				log.Printf("[ats:jobsearch] what=%q where=%q page=%d err=%v",
					q.what, q.where, page, err)
				break
			}
			for _, rec := range batch {
				if seen[rec.ExternalID] {
					continue
				}
				seen[rec.ExternalID] = true
				out = append(out, rec)
			}
			if len(batch) < pageSize {
				break
			}
		}
	}
	return out, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, q query, page int) ([]domain.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", baseURL, f.cfg.Country, page)

	params := url.Values{}
	params.Set("app_id", f.cfg.AppID)
	params.Set("app_key", f.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(pageSize))
	params.Set("what", q.what)
	params.Set("sort_by", "date")
	if q.where != "" {
		params.Set("where", q.where)
	}
	reqURL := endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			sleepJittered(ctx, attempt)
		}
		body, status, err := f.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		if status == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("jobsearch rate limited (429)")
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("jobsearch status %d: %s", status, truncate(body, 200))
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("jobsearch decode: %w", err)
		}
		return f.mapResults(resp.Results), nil
	}
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, reqURL); err != nil {
			return nil, 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("jobsearch get: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("jobsearch read: %w", err)
	}
	return body, res.StatusCode, nil
}

func (f *Fetcher) mapResults(results []searchResult) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(results))
	for _, r := range results {
		if r.ID == "" || r.Title == "" || r.RedirectURL == "" {
			continue
		}
		rec := domain.RawRecord{
			Title:       r.Title,
			Employer:    r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			ApplyURL:    r.RedirectURL,
			ExternalID:  "jobsearch:" + r.ID,
			SalaryMin:   r.SalaryMin,
			SalaryMax:   r.SalaryMax,
		}
		if r.Predicted == "1" {
			rec.SalaryText = "salary predicted"
		}
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			rec.PostedAt = &t
		}
		out = append(out, rec)
	}
	return out
}

func sleepJittered(ctx context.Context, attempt int) {
	d := time.Duration(attempt)*retryBackoff + time.Duration(rand.Intn(1000))*time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
