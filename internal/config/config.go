// Package config loads and validates the engine's YAML configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Board struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type CareerPage struct {
	URL      string `yaml:"url"`
	Employer string `yaml:"employer"`
}

type Config struct {
	App struct {
		Port int `yaml:"port"`
	} `yaml:"app"`

	Ingest struct {
		BatchWidth           int      `yaml:"batch_width"`
		BatchPauseSeconds    int      `yaml:"batch_pause_seconds"`
		FullBudgetMinutes    int      `yaml:"full_budget_minutes"`
		ChunkBudgetMinutes   int      `yaml:"chunk_budget_minutes"`
		SourceTimeoutMinutes int      `yaml:"source_timeout_minutes"`
		Pages                int      `yaml:"pages"`
		Keywords             []string `yaml:"keywords"`
		Locations            []string `yaml:"locations"`
	} `yaml:"ingest"`

	Schedule struct {
		FullScan     string `yaml:"full_scan"`
		ChunkScan    string `yaml:"chunk_scan"`
		LinkSweep    string `yaml:"link_sweep"`
		OfflineDedup string `yaml:"offline_dedup"`

		SweepMaxAgeHours int `yaml:"sweep_max_age_hours"`
		SweepLimit       int `yaml:"sweep_limit"`
	} `yaml:"schedule"`

	Sources struct {
		Greenhouse struct {
			Enabled bool    `yaml:"enabled"`
			Boards  []Board `yaml:"boards"`
		} `yaml:"greenhouse"`

		Lever struct {
			Enabled   bool    `yaml:"enabled"`
			Companies []Board `yaml:"companies"`
		} `yaml:"lever"`

		JobSearch struct {
			Enabled         bool   `yaml:"enabled"`
			Country         string `yaml:"country"`
			InlineLinkCheck bool   `yaml:"inline_linkcheck"`
		} `yaml:"jobsearch"`

		Careers struct {
			Enabled bool         `yaml:"enabled"`
			Pages   []CareerPage `yaml:"pages"`
		} `yaml:"careers"`

		Email struct {
			Enabled    bool     `yaml:"enabled"`
			IMAPHost   string   `yaml:"imap_host"`
			IMAPPort   int      `yaml:"imap_port"`
			Username   string   `yaml:"username"`
			Mailbox    string   `yaml:"mailbox"`
			SubjectAny []string `yaml:"subject_any"`
		} `yaml:"email"`
	} `yaml:"sources"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"ratelimit"`

	LinkCheck struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"linkcheck"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
