package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychjobs-engine/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample(extID string) *domain.Record {
	return &domain.Record{
		Title:    "PMHNP",
		Employer: "Acme Behavioral",
		Location: domain.Location{
			City: "Austin", State: "Texas", StateCode: "TX",
			Country: "US", Confidence: 1, Original: "Austin, TX",
		},
		JobType:    domain.JobTypeFullTime,
		WorkMode:   domain.WorkModeInPerson,
		Salary:     domain.Salary{AnnualMin: 140000, AnnualMax: 180000, Confidence: 1},
		ApplyURL:   "https://boards.greenhouse.io/acme/jobs/" + extID,
		ExternalID: extID,
		Source:     "greenhouse",
		Published:  true,
	}
}

func TestCreateAndFindByExternalID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, sample("1001"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.FindMatching(ctx, Criteria{ExternalID: "1001", Source: "greenhouse"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PMHNP", got.Title)
	assert.Equal(t, domain.JobTypeFullTime, got.JobType)
	assert.Equal(t, "TX", got.Location.StateCode)
	assert.True(t, got.Published)

	got, err = s.FindMatching(ctx, Criteria{ExternalID: "9999", Source: "greenhouse"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindMatchingDisjunction(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sample("1001"))
	require.NoError(t, err)

	// text identity matches even with a different external id
	got, err := s.FindMatching(ctx, Criteria{
		ExternalID: "other", Source: "lever",
		Title: "PMHNP", Employer: "Acme Behavioral", LocationBucket: "TX",
	})
	require.NoError(t, err)
	assert.NotNil(t, got)

	// apply URL key
	got, err = s.FindMatching(ctx, Criteria{
		ApplyURL: "https://boards.greenhouse.io/acme/jobs/1001",
	})
	require.NoError(t, err)
	assert.NotNil(t, got)

	// empty criteria match nothing
	got, err = s.FindMatching(ctx, Criteria{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUniqueExternalIDPerSource(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sample("1001"))
	require.NoError(t, err)

	dup := sample("1001")
	dup.Description = "different description, same identity"
	_, err = s.Create(ctx, dup)
	assert.Error(t, err, "unique index on (source, external_id) must reject")

	// same external id under a different source is fine
	other := sample("1001")
	other.Source = "lever"
	_, err = s.Create(ctx, other)
	assert.NoError(t, err)
}

func TestCreateRejectsInvalidPublished(t *testing.T) {
	s := testStore(t)
	r := sample("1001")
	r.Title = ""
	_, err := s.Create(context.Background(), r)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	r = sample("1002")
	r.ApplyURL = "  "
	_, err = s.Create(context.Background(), r)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	// unpublished records may be partial
	r = sample("1003")
	r.Title = ""
	r.Published = false
	_, err = s.Create(context.Background(), r)
	assert.NoError(t, err)
}

func TestUpdateAndTouch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, sample("1001"))
	require.NoError(t, err)

	published := false
	score := 15
	require.NoError(t, s.Update(ctx, id, Patch{Published: &published, Score: &score}))

	got, err := s.FindMatching(ctx, Criteria{ExternalID: "1001", Source: "greenhouse"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Published)
	assert.Equal(t, 15, got.Score)

	at := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, s.Touch(ctx, id, at))
	got, err = s.FindMatching(ctx, Criteria{ExternalID: "1001", Source: "greenhouse"})
	require.NoError(t, err)
	assert.True(t, got.LastSeenAt.Equal(at))
}

func TestCountAndGroupBy(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, src := range []string{"greenhouse", "greenhouse", "lever"} {
		r := sample(string(rune('a' + i)))
		r.Source = src
		_, err := s.Create(ctx, r)
		require.NoError(t, err)
	}

	n, err := s.Count(ctx, Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	published := true
	n, err = s.Count(ctx, Criteria{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	groups, err := s.GroupBy(ctx, "source")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, GroupCount{Key: "greenhouse", Count: 2}, groups[0])

	_, err = s.GroupBy(ctx, "apply_url; DROP TABLE records")
	assert.Error(t, err)
}

func TestListPublishedBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := sample("old")
	old.FirstSeenAt = time.Now().UTC().Add(-72 * time.Hour)
	old.LastSeenAt = old.FirstSeenAt
	_, err := s.Create(ctx, old)
	require.NoError(t, err)

	fresh := sample("fresh")
	_, err = s.Create(ctx, fresh)
	require.NoError(t, err)

	got, err := s.ListPublishedBefore(ctx, time.Now().UTC().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ExternalID)
}
