// Package greenhouse fetches postings from the public Greenhouse board
// API for a configured set of board slugs.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/netutil"
)

// baseURL is a var so connector tests can point it at a local server.
var baseURL = "https://boards-api.greenhouse.io"

const userAgent = "psychjobs-engine/1.0 (+local)"

type Config struct {
	Boards []Board
}

type Board struct {
	Slug string // boards-api.greenhouse.io/v1/boards/<slug>
	Name string // display name, used as employer when set
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

func (f *Fetcher) Name() string { return "greenhouse" }

type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

type boardJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	// content arrives HTML-escaped; the description cleaner handles it
	Content string `json:"content"`
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	var out []domain.RawRecord
	for _, b := range f.cfg.Boards {
		recs, err := f.fetchBoard(ctx, b)
		if err != nil {
			// one board down never fails the source
			log.Printf("[ats:greenhouse] board=%q err=%v", b.Slug, err)
			continue
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (f *Fetcher) fetchBoard(ctx context.Context, b Board) ([]domain.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", baseURL, b.Slug)

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("greenhouse board status %d", res.StatusCode)
	}

	var body boardResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("greenhouse decode: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		if j.ID == 0 || strings.TrimSpace(j.Title) == "" || j.AbsoluteURL == "" {
			continue
		}
		rec := domain.RawRecord{
			Title:          j.Title,
			Employer:       b.Name,
			Location:       j.Location.Name,
			Description:    j.Content,
			ApplyURL:       j.AbsoluteURL,
			ExternalID:     "greenhouse:" + b.Slug + ":" + strconv.FormatInt(j.ID, 10),
			EmployerDirect: true,
		}
		if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
			rec.PostedAt = &t
		}
		out = append(out, rec)
	}
	return out, nil
}
