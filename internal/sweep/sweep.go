// Package sweep runs the periodic link-liveness pass over published
// records. Dead links unpublish the record; nothing is ever deleted.
package sweep

import (
	"context"
	"log"
	"time"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/linkcheck"
	"psychjobs-engine/internal/store"
)

// Store is the slice of the persistence layer the sweep needs.
type Store interface {
	ListPublishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Record, error)
	Update(ctx context.Context, id int64, p store.Patch) error
}

type Checker interface {
	CheckAlive(ctx context.Context, rawURL string) linkcheck.Result
}

type Result struct {
	Checked     int `json:"checked"`
	Unpublished int `json:"unpublished"`
	Errored     int `json:"errored"`
}

// Run checks records whose last-seen timestamp is older than maxAge, at
// most limit per pass. A record that survives gets its last-seen
// refreshed so the next pass picks different ones.
func Run(ctx context.Context, s Store, checker Checker, maxAge time.Duration, limit int) (Result, error) {
	if limit <= 0 {
		limit = 200
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	records, err := s.ListPublishedBefore(ctx, cutoff, limit)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range records {
		if ctx.Err() != nil {
			break
		}
		res.Checked++

		vr := checker.CheckAlive(ctx, r.ApplyURL)
		now := time.Now().UTC()
		if vr.Dead {
			f := false
			if err := s.Update(ctx, r.ID, store.Patch{Published: &f, LastSeenAt: &now}); err != nil {
				log.Printf("[sweep] unpublish id=%d failed: %v", r.ID, err)
				res.Errored++
				continue
			}
			res.Unpublished++
			log.Printf("[sweep] unpublished id=%d url=%q status=%d", r.ID, r.ApplyURL, vr.Status)
			continue
		}
		if err := s.Update(ctx, r.ID, store.Patch{LastSeenAt: &now}); err != nil {
			log.Printf("[sweep] touch id=%d failed: %v", r.ID, err)
			res.Errored++
		}
	}

	log.Printf("[sweep] checked=%d unpublished=%d errored=%d", res.Checked, res.Unpublished, res.Errored)
	return res, nil
}
