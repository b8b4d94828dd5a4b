package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips diacritics so "José's Clínica" and "Joses
// Clinica" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, folds diacritics, drops punctuation, and
// collapses whitespace. Apostrophes vanish without splitting the word
// ("José's" and "Joses" normalize identically); other punctuation
// becomes a word break. Both exact-text and fuzzy comparisons run on
// this form.
func NormalizeText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// possessives and contractions keep the word intact
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// EmployerNear reports whether two employer names are near-matches:
// edit distance ≤3 on the normalized form, or containment.
func EmployerNear(a, b string) bool {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return levenshtein(na, nb) <= 3
}

// TitleOverlap computes word-overlap similarity between two titles:
// shared words over the larger word set, on normalized text.
func TitleOverlap(a, b string) float64 {
	wa := strings.Fields(NormalizeText(a))
	wb := strings.Fields(NormalizeText(b))
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(wa))
	for _, w := range wa {
		set[w] = true
	}
	shared := 0
	seen := make(map[string]bool, len(wb))
	for _, w := range wb {
		if set[w] && !seen[w] {
			shared++
			seen[w] = true
		}
	}
	larger := len(unique(wa))
	if n := len(unique(wb)); n > larger {
		larger = n
	}
	return float64(shared) / float64(larger)
}

func unique(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// levenshtein is the standard two-row edit distance.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
