package normalize

import (
	"regexp"
	"strings"
)

// htmlEscapes covers the named and numeric escapes job boards actually
// emit; anything rarer passes through untouched.
var htmlEscapes = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&#8217;", "'",
	"&#8216;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&#8211;", "-",
	"&#8212;", "-",
	"&ndash;", "-",
	"&mdash;", "-",
	"&nbsp;", " ",
	"&#160;", " ",
	"&bull;", "* ",
	"&#8226;", "* ",
)

var (
	// block-level closers/openers that become newline structure before
	// the generic tag strip runs
	blockBreakRe = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>|</\s*p\s*>|</\s*div\s*>|</\s*li\s*>|</\s*h[1-6]\s*>|</\s*tr\s*>`)
	listItemRe   = regexp.MustCompile(`(?i)<\s*li[^>]*>`)
	anyTagRe     = regexp.MustCompile(`<[^>]*>`)

	repeatedHeaderRe = regexp.MustCompile(`(?i)^(job description:?\s*)+`)
	spaceRunRe       = regexp.MustCompile(`[ \t]+`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe  = regexp.MustCompile(`[ \t]+\n`)
)

// CleanDescription converts raw (possibly HTML) description text into
// plain text with newline structure preserved. Idempotent: cleaning
// already-clean text is a no-op.
func CleanDescription(raw string) string {
	s := htmlEscapes.Replace(raw)

	s = blockBreakRe.ReplaceAllString(s, "\n")
	s = listItemRe.ReplaceAllString(s, "\n- ")
	s = anyTagRe.ReplaceAllString(s, "")

	s = repeatedHeaderRe.ReplaceAllString(strings.TrimSpace(s), "Job Description: ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = trailingSpaceRe.ReplaceAllString(s, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Summarize truncates plain text to at most limit runes, cutting at
// the last sentence end or, failing that, the last word boundary. The
// ellipsis appears only when truncation actually happened.
func Summarize(plain string, limit int) string {
	plain = strings.TrimSpace(strings.Join(strings.Fields(plain), " "))
	if limit <= 0 || len([]rune(plain)) <= limit {
		return plain
	}
	runes := []rune(plain)
	window := string(runes[:limit])

	cut := -1
	for _, end := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, end); i > cut {
			cut = i
		}
	}
	if cut > 0 {
		return strings.TrimSpace(window[:cut+1]) + "…"
	}
	if i := strings.LastIndex(window, " "); i > 0 {
		return strings.TrimSpace(window[:i]) + "…"
	}
	return strings.TrimSpace(window) + "…"
}
