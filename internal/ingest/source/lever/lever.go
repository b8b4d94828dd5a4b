// Package lever fetches postings from the public Lever postings API for
// a configured set of company slugs.
package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/netutil"
)

// baseURL is a var so connector tests can point it at a local server.
var baseURL = "https://api.lever.co"

const (
	userAgent = "psychjobs-engine/1.0 (+local)"
	workers   = 8
)

type Config struct {
	Companies []Company
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *netutil.HostLimiter
}

func New(cfg Config, limiter *netutil.HostLimiter) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Description string `json:"description"` // html
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	companies := f.cfg.Companies
	recsCh := make(chan []domain.RawRecord, len(companies))
	workCh := make(chan Company)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				recs, err := f.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[ats:lever] company=%q slug=%q err=%v", co.Name, co.Slug, err)
					continue
				}
				if len(recs) > 0 {
					recsCh <- recs
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(recsCh)

	var out []domain.RawRecord
	for batch := range recsCh {
		out = append(out, batch...)
	}
	log.Printf("[ats:lever] postings=%d", len(out))
	return out, nil
}

func (f *Fetcher) fetchCompany(ctx context.Context, co Company) ([]domain.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", baseURL, co.Slug)

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}
		rec := domain.RawRecord{
			Title:          strings.TrimSpace(p.Text),
			Employer:       co.Name,
			Location:       p.Categories.Location,
			Description:    p.Description,
			ApplyURL:       p.HostedURL,
			ExternalID:     fmt.Sprintf("lever:%s:%s", co.Slug, p.ID),
			EmployerDirect: true,
		}
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt)
			rec.PostedAt = &t
		}
		out = append(out, rec)
	}

	// some boards omit location from the API payload; pull it from the
	// hosted posting page
	for i := range out {
		if out[i].Location == "" {
			if err := f.hydrate(ctx, &out[i]); err != nil {
				log.Printf("[ats:lever] hydrate url=%q err=%v", out[i].ApplyURL, err)
			}
		}
	}
	return out, nil
}

func (f *Fetcher) hydrate(ctx context.Context, rec *domain.RawRecord) error {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rec.ApplyURL); err != nil {
			return err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, rec.ApplyURL, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := f.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("posting page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}
	if loc := strings.TrimSpace(doc.Find(".posting-categories .location").First().Text()); loc != "" {
		rec.Location = loc
	}
	return nil
}
