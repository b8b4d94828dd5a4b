package emailalert

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"psychjobs-engine/internal/domain"
)

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*(?:/|per\s)\s*(?:year|yr|hour|hr)`)
	reViewID = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// postingHosts are the alert senders whose links we treat as postings.
// Matching is by host suffix.
var postingHosts = []string{"linkedin.com", "indeed.com", "ziprecruiter.com", "glassdoor.com"}

// ParseAlertHTML extracts posting candidates from one job-alert email
// body. Alert templates wrap each posting in a table "card"; multiple
// anchors can point at the same posting, so candidates merge by
// external id (or URL when no id is recognizable).
func ParseAlertHTML(htmlBody string) ([]domain.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byKey := map[string]*domain.RawRecord{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		jobURL := postingURL(href)
		if jobURL == "" {
			return
		}

		key := externalID(jobURL)
		if key == "" {
			key = jobURL
		}
		rec, ok := byKey[key]
		if !ok {
			rec = &domain.RawRecord{ApplyURL: jobURL, ExternalID: externalID(jobURL)}
			byKey[key] = rec
			order = append(order, key)
		}

		if t := cleanText(a.Text()); betterTitle(t, rec.Title) {
			rec.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		// alert cards carry "Company · Location" in a paragraph
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := cleanText(p.Text())
			if t == "" {
				return
			}
			if rec.Employer == "" && rec.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				rec.Employer = strings.TrimSpace(parts[0])
				rec.Location = strings.TrimSpace(parts[1])
				return
			}
			if betterTitle(t, rec.Title) && !strings.Contains(t, " · ") {
				rec.Title = t
			}
		})

		if rec.SalaryText == "" {
			if m := reSalary.FindString(cleanText(card.Text())); m != "" {
				rec.SalaryText = strings.TrimSpace(m)
			}
		}
	})

	out := make([]domain.RawRecord, 0, len(order))
	for _, key := range order {
		rec := byKey[key]
		if rec.Title == "" || rec.ApplyURL == "" {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// postingURL reports the cleaned posting URL when the href points at a
// recognized alert sender's posting, empty otherwise. Alert links often
// route through a redirector with the real URL in a query param.
func postingURL(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	// unwrap one level of ?url=/?u= redirector indirection
	for _, param := range []string{"url", "u", "dest"} {
		if inner := u.Query().Get(param); inner != "" {
			if iu, err := url.Parse(inner); err == nil && iu.Host != "" {
				u = iu
				break
			}
		}
	}

	host := strings.ToLower(u.Hostname())
	for _, ph := range postingHosts {
		if host == ph || strings.HasSuffix(host, "."+ph) {
			low := strings.ToLower(u.Path)
			if strings.Contains(low, "/jobs/view/") || strings.Contains(low, "viewjob") ||
				strings.Contains(low, "/job/") || strings.Contains(low, "/jobs/") {
				u.Fragment = ""
				return u.String()
			}
		}
	}
	return ""
}

func externalID(jobURL string) string {
	if m := reViewID.FindStringSubmatch(jobURL); len(m) == 2 {
		return "emailalert:" + m[1]
	}
	if u, err := url.Parse(jobURL); err == nil {
		if jk := u.Query().Get("jk"); jk != "" {
			return "emailalert:" + jk
		}
	}
	return ""
}

// betterTitle prefers longer, non-junk anchor text.
func betterTitle(candidate, current string) bool {
	if candidate == "" || len(candidate) <= len(current) {
		return false
	}
	if strings.Contains(candidate, "$") {
		return false
	}
	l := strings.ToLower(candidate)
	if strings.Contains(l, "view job") || strings.Contains(l, "see all") ||
		strings.Contains(l, "unsubscribe") || strings.HasPrefix(l, "http") {
		return false
	}
	return true
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
