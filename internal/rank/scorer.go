// Package rank turns a normalized record into a bounded quality score
// used for ordering postings. Additive and capped; deterministic.
package rank

import (
	"net/url"
	"strings"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/linkcheck"
)

// Score weights. The employer-submitted bonus is larger than any other
// single component so direct submissions always outrank an otherwise
// identical aggregated posting.
const (
	linkTierDirectATS  = 30
	linkTierCareerPage = 20
	linkTierJobBoard   = 0

	salarySignal = 20

	descriptionRich    = 10
	descriptionSome    = 5
	descriptionRichLen = 800
	descriptionSomeLen = 250

	locationCityState = 10
	locationStateOnly = 5

	employerDirect = 30

	maxScore = 100
)

// Score computes the quality score for a record, in [0,100].
func Score(r domain.Record) int {
	s := linkTier(r.ApplyURL)

	if r.Salary.HasSignal() {
		s += salarySignal
	}

	switch {
	case len(r.Description) >= descriptionRichLen:
		s += descriptionRich
	case len(r.Description) >= descriptionSomeLen:
		s += descriptionSome
	}

	switch {
	case r.Location.City != "" && r.Location.StateCode != "":
		s += locationCityState
	case r.Location.StateCode != "":
		s += locationStateOnly
	}

	if r.EmployerDirect {
		s += employerDirect
	}

	if s > maxScore {
		s = maxScore
	}
	if s < 0 {
		s = 0
	}
	return s
}

// linkTier ranks apply-link quality: direct ATS beats an employer
// career page beats a general job board.
func linkTier(applyURL string) int {
	u, err := url.Parse(strings.TrimSpace(applyURL))
	if err != nil || u.Host == "" {
		return linkTierJobBoard
	}
	switch {
	case linkcheck.IsDirectATS(u.Host):
		return linkTierDirectATS
	case linkcheck.IsJobBoard(u.Host) || linkcheck.IsTracking(u.Host):
		return linkTierJobBoard
	default:
		// unrecognized host reads as an employer career page
		return linkTierCareerPage
	}
}
