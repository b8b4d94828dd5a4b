// Package careers scrapes configured employer career pages: walk the
// listing page's anchors for posting links, then hydrate each posting.
package careers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/netutil"
)

const (
	userAgent  = "psychjobs-engine/1.0 (+local)"
	maxPerPage = 40
)

// linkHints mark hrefs that plausibly point at an individual posting.
var linkHints = []string{"/job", "/career", "/position", "/opening", "/posting", "/vacanc"}

type Config struct {
	Pages []Page
}

type Page struct {
	URL      string
	Employer string
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

func (f *Fetcher) Name() string { return "careers" }

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	var out []domain.RawRecord
	for _, p := range f.cfg.Pages {
		recs, err := f.fetchPage(ctx, p)
		if err != nil {
			log.Printf("[ats:careers] page=%q err=%v", p.URL, err)
			continue
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, p Page) ([]domain.RawRecord, error) {
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("careers parse url: %w", err)
	}

	doc, err := f.getDoc(ctx, p.URL)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var recs []domain.RawRecord
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if len(recs) >= maxPerPage {
			return
		}
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}
		ref, err := base.Parse(href)
		if err != nil {
			return
		}
		abs := ref.String()
		if !looksLikePosting(ref) || seen[abs] {
			return
		}
		seen[abs] = true

		recs = append(recs, domain.RawRecord{
			Title:          cleanText(a.Text()),
			Employer:       p.Employer,
			ApplyURL:       abs,
			EmployerDirect: true,
		})
	})

	for i := range recs {
		if err := f.hydrate(ctx, &recs[i]); err != nil {
			log.Printf("[ats:careers] hydrate url=%q err=%v", recs[i].ApplyURL, err)
		}
	}

	// anchors with no usable title even after hydration are navigation
	// noise, not postings
	kept := recs[:0]
	for _, r := range recs {
		if r.Title != "" && !looksLikeJunkTitle(r.Title) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (f *Fetcher) hydrate(ctx context.Context, rec *domain.RawRecord) error {
	doc, err := f.getDoc(ctx, rec.ApplyURL)
	if err != nil {
		return err
	}

	if t := cleanText(doc.Find("h1").First().Text()); t != "" {
		rec.Title = t
	}
	if loc := cleanText(doc.Find(".location, .job-location, [class*=location]").First().Text()); loc != "" {
		rec.Location = loc
	}

	// prefer an explicit description container; fall back to
	// readability extraction over the whole page
	if sel := doc.Find(".job-description, #job-description, .description, article").First(); sel.Length() > 0 {
		if h, err := sel.Html(); err == nil && cleanText(sel.Text()) != "" {
			rec.Description = h
			return nil
		}
	}

	html, err := doc.Html()
	if err != nil {
		return err
	}
	pageURL, _ := url.Parse(rec.ApplyURL)
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return fmt.Errorf("careers readability: %w", err)
	}
	rec.Description = article.Content
	return nil
}

func (f *Fetcher) getDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("careers get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("careers status %d", res.StatusCode)
	}
	body := io.LimitReader(res.Body, 2<<20)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("careers parse html: %w", err)
	}
	return doc, nil
}

func looksLikePosting(u *url.URL) bool {
	low := strings.ToLower(u.Path)
	for _, hint := range linkHints {
		if strings.Contains(low, hint) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "apply" || l == "apply now" || strings.HasPrefix(l, "view all") ||
		l == "careers" || l == "jobs" || l == "learn more"
}
