package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/store"
)

func published(id int64, title, employer, stateCode, applyURL string, firstSeen time.Time) domain.Record {
	return domain.Record{
		ID:          id,
		Title:       title,
		Employer:    employer,
		Location:    domain.Location{StateCode: stateCode, Original: stateCode},
		ApplyURL:    applyURL,
		Published:   true,
		FirstSeenAt: firstSeen,
		LastSeenAt:  firstSeen,
	}
}

func TestOfflineCanonicalURL(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		published(1, "PMHNP", "Acme", "TX", "https://www.example.com/jobs/42?utm_source=x", base),
		published(2, "Psych NP", "Acme Inc", "TX", "https://example.com/jobs/42", base.Add(time.Hour)),
	}

	res := Offline(records)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, Match{KeptID: 1, DupID: 2, Reason: "url"}, res.Duplicates[0])
}

func TestOfflineExactTextSameBucket(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		published(1, "PMHNP - Outpatient", "José's Clínica", "CO", "https://a.example.com/1", base),
		published(2, "pmhnp outpatient", "Joses Clinica", "CO", "https://b.example.com/2", base.Add(time.Hour)),
		// same text, different state bucket: not a duplicate
		published(3, "PMHNP - Outpatient", "José's Clínica", "WA", "https://c.example.com/3", base),
	}

	res := Offline(records)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "text", res.Duplicates[0].Reason)
	assert.Equal(t, int64(1), res.Duplicates[0].KeptID)
	assert.Equal(t, int64(2), res.Duplicates[0].DupID)
}

func TestNormalizeTextApostrophes(t *testing.T) {
	// possessives fold into the word; other punctuation splits it
	assert.Equal(t, NormalizeText("Joses Clinica"), NormalizeText("José's Clínica"))
	assert.Equal(t, "joses clinica", NormalizeText("José’s  Clínica!"))
	assert.Equal(t, "board certified pmhnp", NormalizeText("Board-Certified PMHNP"))
}

func TestOfflineKeepsEarlierRecord(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// the later-seen record appears first in the slice
	records := []domain.Record{
		published(9, "PMHNP", "Acme", "TX", "https://example.com/jobs/42", base.Add(48*time.Hour)),
		published(4, "PMHNP", "Acme", "TX", "https://example.com/jobs/42?ref=mail", base),
	}

	res := Offline(records)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, int64(4), res.Duplicates[0].KeptID)
	assert.Equal(t, int64(9), res.Duplicates[0].DupID)
}

func TestOfflineFuzzyFlagsOnly(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		published(1, "Psychiatric Nurse Practitioner PMHNP", "Acme Behavioral Health", "TX", "https://a.example.com/1", base),
		published(2, "Psychiatric Nurse Practitioner PMHNP Outpatient", "Acme Behavioral Health Inc", "TX", "https://b.example.com/2", base.Add(time.Hour)),
	}

	res := Offline(records)
	assert.Empty(t, res.Duplicates)
	require.Len(t, res.FuzzyFlags, 1)
	assert.Equal(t, Match{KeptID: 1, DupID: 2, Reason: "fuzzy"}, res.FuzzyFlags[0])
}

func TestOfflineConfirmedTrumpsFuzzy(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		published(1, "PMHNP", "Acme Behavioral", "TX", "https://example.com/jobs/42", base),
		published(2, "PMHNP", "Acme Behavioral", "TX", "https://example.com/jobs/42?src=x", base.Add(time.Hour)),
	}

	res := Offline(records)
	require.Len(t, res.Duplicates, 1)
	assert.Empty(t, res.FuzzyFlags, "a confirmed pair must not also be flagged")
}

func TestRunOfflineUnpublishesDuplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	a := record("1001", "greenhouse")
	a.FirstSeenAt, a.LastSeenAt = base, base
	_, err := s.Create(ctx, &a)
	require.NoError(t, err)

	b := record("2002", "jobsearch")
	b.ApplyURL = a.ApplyURL + "?utm_campaign=alert"
	b.Employer = "Somebody Else Entirely"
	b.Title = "Different Title"
	b.FirstSeenAt, b.LastSeenAt = base.Add(time.Hour), base.Add(time.Hour)
	_, err = s.Create(ctx, &b)
	require.NoError(t, err)

	res, err := RunOffline(ctx, s)
	require.NoError(t, err)
	require.Len(t, res.Duplicates, 1)

	pub := true
	n, err := s.Count(ctx, store.Criteria{Published: &pub})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	kept, err := s.FindMatching(ctx, store.Criteria{ExternalID: "1001", Source: "greenhouse"})
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.Published)
}
