package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescriptionHTML(t *testing.T) {
	raw := `<div><h2>About the role</h2><p>We are hiring a PMHNP.</p>` +
		`<ul><li>Outpatient only</li><li>No weekends &amp; no call</li></ul></div>`
	got := CleanDescription(raw)

	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "&amp;")
	assert.Contains(t, got, "About the role\n")
	assert.Contains(t, got, "- Outpatient only")
	assert.Contains(t, got, "- No weekends & no call")
}

func TestCleanDescriptionEscapes(t *testing.T) {
	raw := "Sign-on bonus &#8211; up to $20k &nbsp; apply today&#33;"
	got := CleanDescription(raw)
	assert.Contains(t, got, "Sign-on bonus - up to $20k apply today")
}

func TestCleanDescriptionCollapsesRepeatedHeader(t *testing.T) {
	raw := "Job Description: Job Description: Seeking a psychiatric NP."
	got := CleanDescription(raw)
	assert.Equal(t, "Job Description: Seeking a psychiatric NP.", got)
}

func TestCleanDescriptionWhitespace(t *testing.T) {
	raw := "line one   with   runs\n\n\n\n\nline two\t\ttabs"
	got := CleanDescription(raw)
	assert.Equal(t, "line one with runs\n\nline two tabs", got)
}

func TestCleanDescriptionIdempotent(t *testing.T) {
	inputs := []string{
		"Plain text already clean.",
		"Job Description: Seeking a psychiatric NP.\n\n- Outpatient\n- Telehealth",
		CleanDescription("<p>one</p><p>two</p>"),
	}
	for _, in := range inputs {
		once := CleanDescription(in)
		assert.Equal(t, once, CleanDescription(once))
	}
}

func TestSummarize(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "short", Summarize("short", 100))
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		text := "First sentence here. Second sentence is much longer and will not fit."
		got := Summarize(text, 40)
		assert.Equal(t, "First sentence here.…", got)
	})

	t.Run("falls back to word boundary", func(t *testing.T) {
		text := strings.Repeat("word ", 30)
		got := Summarize(text, 22)
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(got, "…"))), 22)
		assert.NotContains(t, strings.TrimSuffix(got, "…"), "  ")
	})

	t.Run("no ellipsis without truncation", func(t *testing.T) {
		got := Summarize("fits exactly", 12)
		assert.Equal(t, "fits exactly", got)
	})
}
