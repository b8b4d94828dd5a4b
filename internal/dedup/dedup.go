// Package dedup decides whether a candidate posting already exists in
// the store, and runs the offline pass that mops up what the inline
// check misses.
package dedup

import (
	"context"
	"log"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/netutil"
	"psychjobs-engine/internal/store"
)

// Lookup is the slice of the store the inline checker needs.
type Lookup interface {
	FindMatching(ctx context.Context, c store.Criteria) (*domain.Record, error)
}

type Checker struct {
	store Lookup
}

func NewChecker(s Lookup) *Checker {
	return &Checker{store: s}
}

// Check reports whether r duplicates a persisted record, returning the
// existing record when one matched (for the freshness touch). One
// disjunctive lookup covers (externalID, source), (title, employer,
// location bucket), and the canonical apply URL.
//
// A lookup error reads as "is a duplicate": inserting an uncertain
// duplicate costs more than missing one posting, so the check fails
// closed. Deliberate; pinned by tests.
func (c *Checker) Check(ctx context.Context, r domain.Record) (bool, *domain.Record) {
	crit := store.Criteria{
		Title:          r.Title,
		Employer:       r.Employer,
		LocationBucket: r.Location.Bucket(),
		ApplyURL:       netutil.CanonicalURL(r.ApplyURL),
	}
	if r.ExternalID != "" && r.Source != "" {
		crit.ExternalID = r.ExternalID
		crit.Source = r.Source
	}

	existing, err := c.store.FindMatching(ctx, crit)
	if err != nil {
		log.Printf("[dedup] lookup failed, treating as duplicate title=%q employer=%q err=%v",
			r.Title, r.Employer, err)
		return true, nil
	}
	return existing != nil, existing
}
