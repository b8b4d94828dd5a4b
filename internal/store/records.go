package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"psychjobs-engine/internal/domain"
)

var ErrInvalidRecord = errors.New("published record needs title and apply url")

// Criteria describes a disjunctive match: each fully-populated key
// group becomes one OR clause. Empty criteria match nothing.
type Criteria struct {
	// key 1: exact external identity
	ExternalID string
	Source     string

	// key 2: exact text identity within a location bucket
	Title          string
	Employer       string
	LocationBucket string

	// key 3: canonical apply URL
	ApplyURL string

	// optional filter applied on top of the keys (Count only)
	Published *bool
}

// Patch carries the fields maintenance passes may change; nil fields
// stay untouched.
type Patch struct {
	Published  *bool
	Score      *int
	ApplyURL   *string
	Summary    *string
	ExpiresAt  *time.Time
	LastSeenAt *time.Time
}

// Create persists a record and returns its id. Refuses a published
// record with an empty title or apply link.
func (s *Store) Create(ctx context.Context, r *domain.Record) (int64, error) {
	if r.Published && (strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.ApplyURL) == "") {
		return 0, ErrInvalidRecord
	}
	if r.FirstSeenAt.IsZero() {
		r.FirstSeenAt = time.Now().UTC()
	}
	if r.LastSeenAt.IsZero() {
		r.LastSeenAt = r.FirstSeenAt
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO records (
  title, employer, description, summary,
  city, state, state_code, country, remote, hybrid, location_confidence, location_raw,
  job_type, work_mode,
  salary_raw_min, salary_raw_max, salary_raw_period,
  salary_annual_min, salary_annual_max, salary_estimated, salary_confidence,
  apply_url, external_id, source, employer_direct,
  score, published, posted_at, expires_at, first_seen_at, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		r.Title, r.Employer, r.Description, r.Summary,
		r.Location.City, r.Location.State, r.Location.StateCode, r.Location.Country,
		boolInt(r.Location.Remote), boolInt(r.Location.Hybrid),
		r.Location.Confidence, r.Location.Original,
		string(r.JobType), string(r.WorkMode),
		r.Salary.RawMin, r.Salary.RawMax, r.Salary.RawPeriod,
		r.Salary.AnnualMin, r.Salary.AnnualMax,
		boolInt(r.Salary.Estimated), r.Salary.Confidence,
		r.ApplyURL, r.ExternalID, r.Source, boolInt(r.EmployerDirect),
		r.Score, boolInt(r.Published),
		timePtr(r.PostedAt), timePtr(r.ExpiresAt),
		r.FirstSeenAt.Format(time.RFC3339), r.LastSeenAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

// FindMatching returns the first record matching any populated key
// group in c, or nil when nothing matches.
func (s *Store) FindMatching(ctx context.Context, c Criteria) (*domain.Record, error) {
	where, args := c.clauses()
	if where == "" {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM records WHERE `+where+` LIMIT 1;`, args...)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find matching: %w", err)
	}
	return rec, nil
}

// Update applies a patch to one record.
func (s *Store) Update(ctx context.Context, id int64, p Patch) error {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Published != nil {
		add("published", boolInt(*p.Published))
	}
	if p.Score != nil {
		add("score", *p.Score)
	}
	if p.ApplyURL != nil {
		add("apply_url", *p.ApplyURL)
	}
	if p.Summary != nil {
		add("summary", *p.Summary)
	}
	if p.ExpiresAt != nil {
		add("expires_at", p.ExpiresAt.Format(time.RFC3339))
	}
	if p.LastSeenAt != nil {
		add("last_seen_at", p.LastSeenAt.Format(time.RFC3339))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	_, err := s.db.ExecContext(ctx,
		`UPDATE records SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return nil
}

// Touch refreshes last_seen_at on an existing record (freshness touch
// when a duplicate shows up again).
func (s *Store) Touch(ctx context.Context, id int64, at time.Time) error {
	t := at.UTC()
	return s.Update(ctx, id, Patch{LastSeenAt: &t})
}

// Count counts records matching c; empty criteria count everything
// (modulo the Published filter).
func (s *Store) Count(ctx context.Context, c Criteria) (int, error) {
	where, args := c.clauses()
	q := `SELECT COUNT(*) FROM records`
	if where != "" {
		q += ` WHERE ` + where
	}
	if c.Published != nil {
		if where != "" {
			q += ` AND published = ?`
		} else {
			q += ` WHERE published = ?`
		}
		args = append(args, boolInt(*c.Published))
	}

	var n int
	if err := s.db.QueryRowContext(ctx, q+`;`, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupable whitelists GroupBy fields (prevents SQL injection).
var groupable = map[string]string{
	"source":     "source",
	"state_code": "state_code",
	"work_mode":  "work_mode",
	"job_type":   "job_type",
	"employer":   "employer",
}

func (s *Store) GroupBy(ctx context.Context, field string) ([]GroupCount, error) {
	col, ok := groupable[field]
	if !ok {
		return nil, fmt.Errorf("group by %q not supported", field)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s, COUNT(*) FROM records GROUP BY %s ORDER BY COUNT(*) DESC;`, col, col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListOpts controls List. Sort is whitelisted: score and recency only.
type ListOpts struct {
	Sort          string // score | last_seen
	Limit         int
	PublishedOnly bool
}

func (s *Store) List(ctx context.Context, opts ListOpts) ([]domain.Record, error) {
	sortCol := map[string]string{
		"score":     "score DESC",
		"last_seen": "last_seen_at DESC",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "score DESC"
	}
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}
	where := ""
	if opts.PublishedOnly {
		where = "WHERE published = 1"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		selectColumns+` FROM records %s ORDER BY %s LIMIT ?;`, where, sortCol),
		opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListPublishedBefore returns published records whose last_seen_at is
// older than cutoff; the link sweep walks these.
func (s *Store) ListPublishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM records
WHERE published = 1 AND last_seen_at < ?
ORDER BY last_seen_at ASC LIMIT ?;`,
		cutoff.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (c Criteria) clauses() (string, []any) {
	var ors []string
	var args []any

	if c.ExternalID != "" && c.Source != "" {
		ors = append(ors, `(external_id = ? AND source = ?)`)
		args = append(args, c.ExternalID, c.Source)
	}
	if c.Title != "" && c.Employer != "" {
		if c.LocationBucket != "" {
			ors = append(ors, `(title = ? AND employer = ? AND (state_code = ? OR location_raw = ? OR (remote = 1 AND ? = 'remote')))`)
			args = append(args, c.Title, c.Employer, c.LocationBucket, c.LocationBucket, c.LocationBucket)
		} else {
			ors = append(ors, `(title = ? AND employer = ?)`)
			args = append(args, c.Title, c.Employer)
		}
	}
	if c.ApplyURL != "" {
		ors = append(ors, `(apply_url = ?)`)
		args = append(args, c.ApplyURL)
	}
	return strings.Join(ors, " OR "), args
}

const selectColumns = `
SELECT id, title, employer, description, summary,
  city, state, state_code, country, remote, hybrid, location_confidence, location_raw,
  job_type, work_mode,
  salary_raw_min, salary_raw_max, salary_raw_period,
  salary_annual_min, salary_annual_max, salary_estimated, salary_confidence,
  apply_url, external_id, source, employer_direct,
  score, published, posted_at, expires_at, first_seen_at, last_seen_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var r domain.Record
	var remote, hybrid, estimated, direct, published int
	var jobType, workMode string
	var postedAt, expiresAt sql.NullString
	var firstSeen, lastSeen string

	err := row.Scan(
		&r.ID, &r.Title, &r.Employer, &r.Description, &r.Summary,
		&r.Location.City, &r.Location.State, &r.Location.StateCode, &r.Location.Country,
		&remote, &hybrid, &r.Location.Confidence, &r.Location.Original,
		&jobType, &workMode,
		&r.Salary.RawMin, &r.Salary.RawMax, &r.Salary.RawPeriod,
		&r.Salary.AnnualMin, &r.Salary.AnnualMax, &estimated, &r.Salary.Confidence,
		&r.ApplyURL, &r.ExternalID, &r.Source, &direct,
		&r.Score, &published, &postedAt, &expiresAt, &firstSeen, &lastSeen,
	)
	if err != nil {
		return nil, err
	}

	r.Location.Remote = remote != 0
	r.Location.Hybrid = hybrid != 0
	r.Salary.Estimated = estimated != 0
	r.EmployerDirect = direct != 0
	r.Published = published != 0
	r.JobType = domain.JobType(jobType)
	r.WorkMode = domain.WorkMode(workMode)
	r.PostedAt = parseTimePtr(postedAt)
	r.ExpiresAt = parseTimePtr(expiresAt)
	r.FirstSeenAt, _ = time.Parse(time.RFC3339, firstSeen)
	r.LastSeenAt, _ = time.Parse(time.RFC3339, lastSeen)
	return &r, nil
}

func collect(rows *sql.Rows) ([]domain.Record, error) {
	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
