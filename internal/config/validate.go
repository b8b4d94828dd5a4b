package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong
// or suspicious about it. Errors block startup; warnings only log.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Ingest.Keywords = trimList(out.Ingest.Keywords)
	out.Ingest.Locations = trimList(out.Ingest.Locations)
	out.Sources.Email.SubjectAny = trimList(out.Sources.Email.SubjectAny)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Ingest.BatchWidth < 0 {
		res.addErr("ingest.batch_width must be >= 0")
	}
	if out.Ingest.Pages < 0 {
		res.addErr("ingest.pages must be >= 0")
	}
	if out.Ingest.ChunkBudgetMinutes > 0 && out.Ingest.FullBudgetMinutes > 0 &&
		out.Ingest.ChunkBudgetMinutes > out.Ingest.FullBudgetMinutes {
		res.addWarn("ingest.chunk_budget_minutes (%d) exceeds full_budget_minutes (%d)",
			out.Ingest.ChunkBudgetMinutes, out.Ingest.FullBudgetMinutes)
	}

	src := out.Sources
	if !src.Greenhouse.Enabled && !src.Lever.Enabled && !src.JobSearch.Enabled &&
		!src.Careers.Enabled && !src.Email.Enabled {
		res.addWarn("no sources enabled; scheduled runs will do nothing")
	}

	if src.Greenhouse.Enabled && len(src.Greenhouse.Boards) == 0 {
		res.addErr("sources.greenhouse.boards is required when greenhouse is enabled")
	}
	for i, b := range src.Greenhouse.Boards {
		if strings.TrimSpace(b.Slug) == "" {
			res.addErr("sources.greenhouse.boards[%d].slug is required", i)
		}
	}
	if src.Lever.Enabled && len(src.Lever.Companies) == 0 {
		res.addErr("sources.lever.companies is required when lever is enabled")
	}
	for i, c := range src.Lever.Companies {
		if strings.TrimSpace(c.Slug) == "" {
			res.addErr("sources.lever.companies[%d].slug is required", i)
		}
	}
	if src.Careers.Enabled {
		if len(src.Careers.Pages) == 0 {
			res.addErr("sources.careers.pages is required when careers is enabled")
		}
		for i, p := range src.Careers.Pages {
			if !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
				res.addErr("sources.careers.pages[%d].url must be absolute", i)
			}
		}
	}
	if src.Email.Enabled {
		if strings.TrimSpace(src.Email.IMAPHost) == "" {
			res.addErr("sources.email.imap_host is required when email is enabled")
		}
		if strings.TrimSpace(src.Email.Username) == "" {
			res.addErr("sources.email.username is required when email is enabled")
		}
		if len(out.Sources.Email.SubjectAny) == 0 {
			res.addWarn("sources.email.subject_any is empty; every unseen message will be scanned")
		}
	}

	if out.RateLimit.RequestsPerSecond < 0 {
		res.addErr("ratelimit.requests_per_second must be >= 0")
	}
	if out.RateLimit.RequestsPerSecond > 5 {
		res.addWarn("ratelimit.requests_per_second is high (%.1f); external APIs may throttle",
			out.RateLimit.RequestsPerSecond)
	}

	if out.Schedule.SweepMaxAgeHours < 0 {
		res.addErr("schedule.sweep_max_age_hours must be >= 0")
	}

	return out, res
}
