package main

import (
	"log"

	"psychjobs-engine/internal/config"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/ingest/source/careers"
	"psychjobs-engine/internal/ingest/source/emailalert"
	"psychjobs-engine/internal/ingest/source/greenhouse"
	"psychjobs-engine/internal/ingest/source/jobsearch"
	"psychjobs-engine/internal/ingest/source/lever"
	"psychjobs-engine/internal/netutil"
	"psychjobs-engine/internal/secrets"
)

// buildFetchers constructs one connector per enabled source. Missing
// credentials disable the source with a warning instead of failing
// startup.
func buildFetchers(cfg config.Config, limiter *netutil.HostLimiter) []ingest.Fetcher {
	var fetchers []ingest.Fetcher
	src := cfg.Sources

	if src.Greenhouse.Enabled {
		boards := make([]greenhouse.Board, 0, len(src.Greenhouse.Boards))
		for _, b := range src.Greenhouse.Boards {
			boards = append(boards, greenhouse.Board{Slug: b.Slug, Name: b.Name})
		}
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{Boards: boards}, limiter))
	}

	if src.Lever.Enabled {
		companies := make([]lever.Company, 0, len(src.Lever.Companies))
		for _, c := range src.Lever.Companies {
			companies = append(companies, lever.Company{Slug: c.Slug, Name: c.Name})
		}
		fetchers = append(fetchers, lever.New(lever.Config{Companies: companies}, limiter))
	}

	if src.JobSearch.Enabled {
		appID, idErr := secrets.Get(secrets.AccountSearchAppID)
		appKey, keyErr := secrets.Get(secrets.AccountSearchAppKey)
		if idErr != nil || keyErr != nil {
			log.Printf("[engine] jobsearch disabled: missing credentials (%v %v)", idErr, keyErr)
		} else {
			fetchers = append(fetchers, jobsearch.New(jobsearch.Config{
				AppID:     appID,
				AppKey:    appKey,
				Country:   src.JobSearch.Country,
				Keywords:  cfg.Ingest.Keywords,
				Locations: cfg.Ingest.Locations,
				Pages:     cfg.Ingest.Pages,
			}, limiter))
		}
	}

	if src.Careers.Enabled {
		pages := make([]careers.Page, 0, len(src.Careers.Pages))
		for _, p := range src.Careers.Pages {
			pages = append(pages, careers.Page{URL: p.URL, Employer: p.Employer})
		}
		fetchers = append(fetchers, careers.New(careers.Config{Pages: pages}, limiter))
	}

	if src.Email.Enabled {
		account := secrets.IMAPAccount(src.Email.Username, src.Email.IMAPHost)
		password, err := secrets.Get(account)
		if err != nil {
			log.Printf("[engine] emailalert disabled: %v", err)
		} else {
			fetchers = append(fetchers, emailalert.New(emailalert.Config{
				Host:       src.Email.IMAPHost,
				Port:       src.Email.IMAPPort,
				Username:   src.Email.Username,
				Password:   password,
				Mailbox:    src.Email.Mailbox,
				SubjectAny: src.Email.SubjectAny,
			}))
		}
	}

	return fetchers
}
