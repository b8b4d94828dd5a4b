package classify

import "strings"

// Classify reports whether a posting belongs to the vertical. Pure and
// deterministic: same inputs always produce the same answer.
//
// A posting is accepted when (a) the combined title+description hits a
// positive phrase, or the fallback fires (specialty term anywhere plus
// a role indicator in the title), and (b) the title hits no wrong-role
// phrase. An ambiguous wrong-role phrase is excused when a strong
// positive appears anywhere in the combined text; that single rule
// applies uniformly, never title-only.
func Classify(title, description string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	d := strings.ToLower(strings.TrimSpace(description))
	if t == "" && d == "" {
		return false
	}
	combined := t + " " + d
	paddedTitle := " " + t + " "

	positive := containsAny(combined, positivePhrases)
	if !positive {
		positive = containsAny(combined, domainTerms) &&
			containsAny(paddedTitle, roleIndicators)
	}
	if !positive {
		return false
	}

	// Excused ambiguous phrases are collected first so their substrings
	// ("physician" inside an excused "physician assistant") cannot
	// reject the same span.
	var excused []string
	for _, phrase := range wrongRolePhrases {
		if ambiguousWrongRoles[phrase] && strings.Contains(paddedTitle, phrase) &&
			containsAny(combined, strongPositives) {
			excused = append(excused, phrase)
		}
	}

	for _, phrase := range wrongRolePhrases {
		if !strings.Contains(paddedTitle, phrase) {
			continue
		}
		if coveredByExcused(excused, phrase) {
			continue
		}
		return false
	}
	return true
}

func coveredByExcused(excused []string, phrase string) bool {
	for _, e := range excused {
		if strings.Contains(e, phrase) {
			return true
		}
	}
	return false
}

func containsAny(haystack string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}
