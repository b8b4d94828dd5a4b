package domain

import "time"

// RawRecord is the common shape every source connector must produce.
// Fields are loosely structured; the ingest pipeline normalizes them.
// Never persisted as-is.
type RawRecord struct {
	Title       string
	Employer    string
	Location    string
	Description string // plain text or HTML
	ApplyURL    string
	ExternalID  string
	Source      string

	SalaryMin    float64
	SalaryMax    float64
	SalaryPeriod string // hour/day/week/month/year, or ""
	SalaryText   string // free text that may mention pay

	Remote         bool
	EmployerDirect bool // submitted by the employer, not aggregated
	PostedAt       *time.Time
}

type JobType string

const (
	JobTypeFullTime JobType = "Full-Time"
	JobTypePartTime JobType = "Part-Time"
	JobTypeContract JobType = "Contract"
	JobTypePerDiem  JobType = "Per-Diem"
	JobTypeUnknown  JobType = "Unknown"
)

type WorkMode string

const (
	WorkModeRemote   WorkMode = "Remote"
	WorkModeHybrid   WorkMode = "Hybrid"
	WorkModeInPerson WorkMode = "In-Person"
	WorkModeUnknown  WorkMode = "Unknown"
)

// Salary carries both the raw source values and the normalized annual
// bounds. AnnualMin/AnnualMax are zero when normalization rejected that
// bound; the raw values survive regardless.
type Salary struct {
	RawMin    float64
	RawMax    float64
	RawPeriod string

	AnnualMin  float64
	AnnualMax  float64
	Estimated  bool
	Confidence float64
}

func (s Salary) HasSignal() bool {
	return s.AnnualMin > 0 || s.AnnualMax > 0 || s.RawMin > 0 || s.RawMax > 0
}

// Record is the canonical, persisted posting.
type Record struct {
	ID int64

	Title       string
	Employer    string
	Description string
	Summary     string

	Location Location
	JobType  JobType
	WorkMode WorkMode
	Salary   Salary

	ApplyURL       string
	ExternalID     string
	Source         string
	EmployerDirect bool

	Score     int
	Published bool

	PostedAt    *time.Time
	ExpiresAt   *time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}
