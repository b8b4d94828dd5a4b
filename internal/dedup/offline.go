package dedup

import (
	"context"
	"log"
	"time"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/netutil"
	"psychjobs-engine/internal/store"
)

const titleOverlapThreshold = 0.8

// Match pairs two record ids the offline pass considers the same
// posting (or, for fuzzy matches, suspects of being the same).
type Match struct {
	KeptID int64  `json:"keptId"`
	DupID  int64  `json:"dupId"`
	Reason string `json:"reason"` // url | text | fuzzy
}

// OfflineResult separates confirmed duplicates (acted on) from fuzzy
// flags (surfaced for manual review, never auto-resolved).
type OfflineResult struct {
	Duplicates []Match
	FuzzyFlags []Match
}

// Offline runs the batch pass over a loaded record set, pure for
// testability: canonical-URL matching, exact normalized title+employer
// within the same state/remote bucket, then the fuzzy employer/title
// pass. The earlier-created record is always the one kept.
func Offline(records []domain.Record) OfflineResult {
	var res OfflineResult

	byURL := make(map[string]int, len(records))
	type textKey struct{ title, employer, bucket string }
	byText := make(map[textKey]int, len(records))

	flagged := make(map[[2]int64]bool)
	mark := func(list *[]Match, kept, dup domain.Record, reason string) {
		if kept.FirstSeenAt.After(dup.FirstSeenAt) {
			kept, dup = dup, kept
		}
		key := [2]int64{kept.ID, dup.ID}
		if flagged[key] {
			return
		}
		flagged[key] = true
		*list = append(*list, Match{KeptID: kept.ID, DupID: dup.ID, Reason: reason})
	}

	for i, r := range records {
		if u := netutil.CanonicalURL(r.ApplyURL); u != "" {
			if j, ok := byURL[u]; ok {
				mark(&res.Duplicates, records[j], r, "url")
			} else {
				byURL[u] = i
			}
		}

		tk := textKey{
			title:    NormalizeText(r.Title),
			employer: NormalizeText(r.Employer),
			bucket:   r.Location.Bucket(),
		}
		if tk.title != "" && tk.employer != "" {
			if j, ok := byText[tk]; ok {
				mark(&res.Duplicates, records[j], r, "text")
			} else {
				byText[tk] = i
			}
		}
	}

	// fuzzy pass: quadratic, run on the already-loaded published set
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if a.Location.Bucket() != b.Location.Bucket() {
				continue
			}
			if !EmployerNear(a.Employer, b.Employer) {
				continue
			}
			if TitleOverlap(a.Title, b.Title) < titleOverlapThreshold {
				continue
			}
			mark(&res.FuzzyFlags, a, b, "fuzzy")
		}
	}

	// exact duplicates trump fuzzy suspicion for the same pair
	res.FuzzyFlags = dropConfirmed(res.FuzzyFlags, res.Duplicates)
	return res
}

func dropConfirmed(flags, dups []Match) []Match {
	confirmed := make(map[[2]int64]bool, len(dups))
	for _, d := range dups {
		confirmed[[2]int64{d.KeptID, d.DupID}] = true
	}
	out := flags[:0]
	for _, f := range flags {
		if !confirmed[[2]int64{f.KeptID, f.DupID}] {
			out = append(out, f)
		}
	}
	return out
}

// OfflineStore is the slice of the store the batch runner needs.
type OfflineStore interface {
	List(ctx context.Context, opts store.ListOpts) ([]domain.Record, error)
	Update(ctx context.Context, id int64, p store.Patch) error
}

// RunOffline loads the published set, computes the offline pass, and
// unpublishes confirmed duplicates. Fuzzy flags are only logged; they
// exist for manual review.
func RunOffline(ctx context.Context, s OfflineStore) (OfflineResult, error) {
	records, err := s.List(ctx, store.ListOpts{Sort: "last_seen", Limit: 2000, PublishedOnly: true})
	if err != nil {
		return OfflineResult{}, err
	}

	res := Offline(records)
	for _, m := range res.Duplicates {
		f := false
		now := time.Now().UTC()
		if err := s.Update(ctx, m.DupID, store.Patch{Published: &f, LastSeenAt: &now}); err != nil {
			log.Printf("[dedup] unpublish id=%d failed: %v", m.DupID, err)
		}
	}

	for _, m := range res.FuzzyFlags {
		log.Printf("[dedup] fuzzy match for review kept=%d dup=%d", m.KeptID, m.DupID)
	}
	log.Printf("[dedup] offline pass records=%d duplicates=%d flags=%d",
		len(records), len(res.Duplicates), len(res.FuzzyFlags))
	return res, nil
}
