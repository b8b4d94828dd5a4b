package store

// Migrate brings the schema up to the current version. Versioned via
// PRAGMA user_version so re-running is cheap and safe.
func (s *Store) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  employer TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  summary TEXT NOT NULL DEFAULT '',

  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  state_code TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  remote INTEGER NOT NULL DEFAULT 0,
  hybrid INTEGER NOT NULL DEFAULT 0,
  location_confidence REAL NOT NULL DEFAULT 0,
  location_raw TEXT NOT NULL DEFAULT '',

  job_type TEXT NOT NULL DEFAULT 'Unknown',
  work_mode TEXT NOT NULL DEFAULT 'Unknown',

  salary_raw_min REAL NOT NULL DEFAULT 0,
  salary_raw_max REAL NOT NULL DEFAULT 0,
  salary_raw_period TEXT NOT NULL DEFAULT '',
  salary_annual_min REAL NOT NULL DEFAULT 0,
  salary_annual_max REAL NOT NULL DEFAULT 0,
  salary_estimated INTEGER NOT NULL DEFAULT 0,
  salary_confidence REAL NOT NULL DEFAULT 0,

  apply_url TEXT NOT NULL,
  external_id TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  employer_direct INTEGER NOT NULL DEFAULT 0,

  score INTEGER NOT NULL DEFAULT 0,
  published INTEGER NOT NULL DEFAULT 1,

  posted_at TEXT,
  expires_at TEXT,
  first_seen_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_records_source_external
ON records(source, external_id)
WHERE external_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_records_dedup_text
ON records(title, employer, state_code);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_records_published_seen
ON records(published, last_seen_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
