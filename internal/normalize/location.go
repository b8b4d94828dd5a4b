package normalize

import (
	"strings"

	"psychjobs-engine/internal/domain"
)

var remoteMarkers = []string{
	"remote", "telehealth", "telepsychiatry", "telemedicine",
	"work from home", "work-from-home", "wfh", "virtual",
}

// ParseLocation derives a structured location from free text. Pure and
// idempotent: re-parsing the Original field yields the same value.
// Priority order, first match wins: remote/hybrid markers, "City, ST",
// "City, State Name", bare state-code token, state-name substring,
// otherwise low confidence with no structure recovered.
func ParseLocation(freeText string) domain.Location {
	original := strings.TrimSpace(freeText)
	loc := domain.Location{Original: original, Confidence: 0.3}
	if original == "" {
		loc.Confidence = 0
		return loc
	}
	lower := strings.ToLower(original)

	if strings.Contains(lower, "hybrid") {
		loc.Hybrid = true
	}
	for _, m := range remoteMarkers {
		if strings.Contains(lower, m) {
			loc.Remote = true
			loc.Confidence = 0.7
			break
		}
	}
	if loc.Remote && !loc.Hybrid {
		// fully remote: no physical location to recover
		return loc
	}

	if done := parseCommaState(&loc, original); done {
		return loc
	}
	if done := parseBareStateCode(&loc, original); done {
		return loc
	}
	if done := parseStateNameSubstring(&loc, original, lower); done {
		return loc
	}
	return loc
}

// parseCommaState handles "City, ST" and "City, State Name" (with an
// optional trailing zip or country segment after the state token).
func parseCommaState(loc *domain.Location, original string) bool {
	parts := strings.Split(original, ",")
	if len(parts) < 2 {
		return false
	}
	for i := len(parts) - 1; i >= 1; i-- {
		seg := strings.TrimSpace(parts[i])
		if seg == "" {
			continue
		}
		token := strings.Fields(seg)[0]
		if code, ok := matchStateCode(token); ok {
			fill(loc, joinCity(parts[:i]), code, 1.0)
			return true
		}
		if code, ok := codeByName[lowerASCII(seg)]; ok {
			fill(loc, joinCity(parts[:i]), code, 1.0)
			return true
		}
	}
	return false
}

// parseBareStateCode finds an uppercase 2-letter state code token
// anywhere in the text; everything before it is taken as the city.
func parseBareStateCode(loc *domain.Location, original string) bool {
	fields := strings.Fields(original)
	for i, f := range fields {
		token := strings.Trim(f, ".,;()")
		if code, ok := matchStateCode(token); ok {
			city := strings.TrimRight(strings.TrimSpace(strings.Join(fields[:i], " ")), ",;")
			conf := 0.8
			if city != "" {
				conf = 0.9
			}
			fill(loc, city, code, conf)
			return true
		}
	}
	return false
}

// parseStateNameSubstring searches for a full state name; the text
// before it is taken as the city.
func parseStateNameSubstring(loc *domain.Location, original, lower string) bool {
	for _, name := range stateNamesOrdered {
		idx := strings.Index(lower, name)
		if idx < 0 {
			continue
		}
		code := codeByName[name]
		city := strings.TrimRight(strings.TrimSpace(original[:idx]), ",;-– ")
		conf := 0.8
		if city != "" {
			conf = 0.9
		}
		fill(loc, city, code, conf)
		return true
	}
	return false
}

// matchStateCode accepts only uppercase codes so ordinary words like
// "in", "or", "me" never read as states.
func matchStateCode(token string) (string, bool) {
	if len(token) != 2 || token != strings.ToUpper(token) {
		return "", false
	}
	if _, ok := stateByCode[token]; !ok {
		return "", false
	}
	return token, true
}

func joinCity(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, ","))
}

func fill(loc *domain.Location, city, code string, conf float64) {
	loc.City = city
	loc.StateCode = code
	loc.State = stateByCode[code]
	loc.Country = "US"
	if conf > loc.Confidence {
		loc.Confidence = conf
	}
}
