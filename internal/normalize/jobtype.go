package normalize

import (
	"strings"

	"psychjobs-engine/internal/domain"
)

// jobTypeMarkers is checked in order; first hit wins. Per-diem outranks
// part-time because postings often advertise "part-time/per diem".
var jobTypeMarkers = []struct {
	needles []string
	jobType domain.JobType
}{
	{[]string{"per diem", "per-diem", "prn", "as needed"}, domain.JobTypePerDiem},
	{[]string{"contract", "locum", "1099", "temporary", "temp "}, domain.JobTypeContract},
	{[]string{"part-time", "part time", "parttime"}, domain.JobTypePartTime},
	{[]string{"full-time", "full time", "fulltime", "ft,", "(ft"}, domain.JobTypeFullTime},
}

// DetectJobType infers the employment type from title + description.
func DetectJobType(title, description string) domain.JobType {
	blob := strings.ToLower(title + " " + description)
	for _, m := range jobTypeMarkers {
		for _, n := range m.needles {
			if strings.Contains(blob, n) {
				return m.jobType
			}
		}
	}
	return domain.JobTypeUnknown
}

// DetectWorkMode infers the work mode from location, title, and
// description; an explicit source remote flag wins.
func DetectWorkMode(loc domain.Location, title, description string, sourceRemote bool) domain.WorkMode {
	if loc.Hybrid {
		return domain.WorkModeHybrid
	}
	if sourceRemote || loc.Remote {
		return domain.WorkModeRemote
	}

	blob := strings.ToLower(strings.Join([]string{loc.Original, title, description}, " "))
	switch {
	case strings.Contains(blob, "hybrid"):
		return domain.WorkModeHybrid
	case strings.Contains(blob, "remote") || strings.Contains(blob, "telehealth") ||
		strings.Contains(blob, "telepsychiatry"):
		return domain.WorkModeRemote
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") ||
		strings.Contains(blob, "on site") || strings.Contains(blob, "in-person") ||
		strings.Contains(blob, "in person"):
		return domain.WorkModeInPerson
	}
	if loc.StateCode != "" && loc.City != "" {
		// a concrete city/state with no remote signal reads as in-person
		return domain.WorkModeInPerson
	}
	return domain.WorkModeUnknown
}
