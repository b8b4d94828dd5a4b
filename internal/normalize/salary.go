package normalize

import (
	"log"
	"strings"
)

// Pay periods and their annual multipliers.
const (
	PeriodHour  = "hour"
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var annualMultiplier = map[string]float64{
	PeriodHour:  2080,
	PeriodDay:   260,
	PeriodWeek:  52,
	PeriodMonth: 12,
	PeriodYear:  1,
}

// periodKeywords maps free-text markers to a period, checked in order.
var periodKeywords = []struct {
	needle string
	period string
}{
	{"/hour", PeriodHour},
	{"/hr", PeriodHour},
	{"per hour", PeriodHour},
	{"hourly", PeriodHour},
	{"an hour", PeriodHour},
	{"/day", PeriodDay},
	{"per day", PeriodDay},
	{"daily", PeriodDay},
	{"/week", PeriodWeek},
	{"per week", PeriodWeek},
	{"weekly", PeriodWeek},
	{"/month", PeriodMonth},
	{"per month", PeriodMonth},
	{"monthly", PeriodMonth},
	{"/year", PeriodYear},
	{"/yr", PeriodYear},
	{"per year", PeriodYear},
	{"annually", PeriodYear},
	{"annual", PeriodYear},
	{"a year", PeriodYear},
}

var estimationMarkers = []string{"estimated", "estimate", "predicted", "projected"}

// Plausibility bands, checked against the ORIGINAL unit. The annual
// band loosens when confidence is already reduced.
const (
	hourlyFloor = 50
	hourlyCeil  = 350

	annualFloorStrict = 80_000
	annualFloorLoose  = 64_000
	annualCeilStrict  = 300_000
	annualCeilLoose   = 400_000
)

// SalaryResult is the outcome of normalizing raw salary input. A nil
// bound means that bound was rejected as implausible; callers keep the
// raw values either way.
type SalaryResult struct {
	AnnualMin  *float64
	AnnualMax  *float64
	Estimated  bool
	Confidence float64
}

// Salary normalizes raw min/max values to annual bounds. Pure: callers
// persist the result. Returns nil when no bound survives.
func Salary(rawMin, rawMax float64, rawPeriod, freeText string) *SalaryResult {
	if rawMin <= 0 && rawMax <= 0 {
		return nil
	}

	text := strings.ToLower(freeText)
	estimated := false
	for _, m := range estimationMarkers {
		if strings.Contains(text, m) {
			estimated = true
			break
		}
	}

	confidence := 1.0
	if estimated {
		confidence = 0.6
	}

	ref := rawMax
	if rawMin > 0 {
		ref = rawMin
	}
	period, explicit := detectPeriod(rawPeriod, text, ref)
	if !explicit {
		// magnitude-inferred period is a guess
		confidence *= 0.9
	}
	if period != PeriodYear {
		// the 2080-hour (etc.) conversion is itself an estimate
		confidence *= 0.9
	}

	annualMin := convertBound(rawMin, period, confidence)
	annualMax := convertBound(rawMax, period, confidence)
	if annualMin == nil && annualMax == nil {
		log.Printf("[salary] rejected min=%.0f max=%.0f period=%q", rawMin, rawMax, period)
		return nil
	}

	if annualMin != nil && annualMax != nil {
		if *annualMin > *annualMax {
			annualMin, annualMax = annualMax, annualMin
		}
		if *annualMin > 0 && *annualMax / *annualMin > 2.5 {
			// wide spread signals noisy source data
			confidence *= 0.7
		}
	}

	return &SalaryResult{
		AnnualMin:  annualMin,
		AnnualMax:  annualMax,
		Estimated:  estimated,
		Confidence: confidence,
	}
}

// detectPeriod resolves the pay period: explicit field, then free-text
// keywords, then magnitude inference. explicit reports whether the
// period came from source data rather than magnitude.
func detectPeriod(rawPeriod, lowerText string, ref float64) (period string, explicit bool) {
	switch strings.ToLower(strings.TrimSpace(rawPeriod)) {
	case "hour", "hourly", "hr":
		return PeriodHour, true
	case "day", "daily":
		return PeriodDay, true
	case "week", "weekly":
		return PeriodWeek, true
	case "month", "monthly":
		return PeriodMonth, true
	case "year", "yearly", "annual", "annually":
		return PeriodYear, true
	}

	for _, kw := range periodKeywords {
		if strings.Contains(lowerText, kw.needle) {
			return kw.period, true
		}
	}

	switch {
	case ref < 500:
		return PeriodHour, false
	case ref < 5_000:
		return PeriodWeek, false
	case ref < 20_000:
		return PeriodMonth, false
	default:
		return PeriodYear, false
	}
}

// convertBound validates one bound against the band for its original
// unit, then converts to annual. Returns nil when the value is absent
// or implausible.
func convertBound(v float64, period string, confidence float64) *float64 {
	if v <= 0 {
		return nil
	}
	if !plausible(v, period, confidence) {
		return nil
	}
	annual := v * annualMultiplier[period]
	return &annual
}

func plausible(v float64, period string, confidence float64) bool {
	switch period {
	case PeriodHour:
		return v >= hourlyFloor && v <= hourlyCeil
	case PeriodYear:
		floor, ceil := float64(annualFloorStrict), float64(annualCeilStrict)
		if confidence < 1.0 {
			floor, ceil = annualFloorLoose, annualCeilLoose
		}
		return v >= floor && v <= ceil
	default:
		// day/week/month: compare the annualized value against the
		// loose annual band; these periods are rare enough that a
		// strict per-unit table is not worth carrying.
		annual := v * annualMultiplier[period]
		return annual >= annualFloorLoose && annual <= annualCeilLoose
	}
}
