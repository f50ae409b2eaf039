// Package diagnostics is the build-telemetry sink: a small
// modernc.org/sqlite-backed store recording one row per build
// (module name, error/warning counts, duration, build id), so
// `pyaotc build --history` can show past builds without re-running
// them. modernc.org/sqlite gives a durable, query-able store without
// an external database dependency.
package diagnostics

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one build's telemetry row.
type Record struct {
	ModuleName   string
	ErrorCount   int
	WarningCount int
	DurationMS   int64
	BuildID      string
	CreatedAt    time.Time
}

// Store wraps the sqlite-backed telemetry database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the telemetry database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	module_name   TEXT NOT NULL,
	error_count   INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	build_id      TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one build's telemetry.
func (s *Store) Record(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO builds (module_name, error_count, warning_count, duration_ms, build_id) VALUES (?, ?, ?, ?, ?)`,
		r.ModuleName, r.ErrorCount, r.WarningCount, r.DurationMS, r.BuildID,
	)
	return err
}

// History returns the most recent n builds, newest first.
func (s *Store) History(n int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT module_name, error_count, warning_count, duration_ms, build_id, created_at FROM builds ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ModuleName, &r.ErrorCount, &r.WarningCount, &r.DurationMS, &r.BuildID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
