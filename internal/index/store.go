// Package index is the content-addressed incremental index: a SQLite
// database keyed on BLAKE3-256 content hash plus rule-set version, storing
// file records and their findings across runs so an unchanged file is
// never re-analysed.
package index

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the index's SQLite connection. The pipeline's writer
// goroutine is its only writer; analyzer workers call Lookup on it
// concurrently. It is not safe for concurrent writers.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	project_id       TEXT PRIMARY KEY,
	root_path        TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	last_scan_at     TEXT,
	scan_in_progress INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS files (
	project_id       TEXT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
	rel_path         TEXT NOT NULL,
	content_hash     TEXT NOT NULL,
	modified_time    TEXT NOT NULL,
	rule_set_version INTEGER NOT NULL,
	PRIMARY KEY (project_id, rel_path)
);

CREATE TABLE IF NOT EXISTS findings (
	project_id TEXT NOT NULL,
	rel_path   TEXT NOT NULL,
	rule_id    TEXT NOT NULL,
	severity   TEXT NOT NULL,
	line       INTEGER NOT NULL,
	"column"   INTEGER NOT NULL,
	message    TEXT NOT NULL,
	snippet    TEXT NOT NULL,
	FOREIGN KEY (project_id, rel_path) REFERENCES files(project_id, rel_path) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(project_id, rel_path);
`

// Open opens or creates the SQLite database at path, running the schema
// migration and clearing any stale in-progress markers left by a crash.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory index, used by tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open memory index: %w", err)
	}
	// Each new pool connection would get its own empty in-memory database;
	// pin the pool to one connection so every statement sees the same data.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: ":memory:"}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return s.clearStaleInProgress()
}

// clearStaleInProgress implements the Atomicity lifecycle rule: on reopen,
// a project left with scan_in_progress set means the prior process crashed
// mid-batch. Its file/finding rows are dropped so the next scan treats it
// as needing a full rescan rather than trusting a partially written batch.
func (s *Store) clearStaleInProgress() error {
	rows, err := s.db.Query(`SELECT project_id FROM projects WHERE scan_in_progress = 1`)
	if err != nil {
		return fmt.Errorf("query stale projects: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, id)
	}
	rows.Close()

	for _, id := range stale {
		slog.Warn("index.stale_in_progress", "project_id", id)
		if _, err := s.db.Exec(`DELETE FROM files WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("purge stale project %s: %w", id, err)
		}
		if _, err := s.db.Exec(`UPDATE projects SET scan_in_progress = 0 WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("clear stale marker %s: %w", id, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// EnsureProject creates the project row on first encounter, or is a no-op
// if it already exists, per the Lifecycle rule ("created on first index
// build").
func (s *Store) EnsureProject(projectID, rootPath string) error {
	_, err := s.db.Exec(
		`INSERT INTO projects (project_id, root_path, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(project_id) DO NOTHING`,
		projectID, rootPath, now(),
	)
	if err != nil {
		return fmt.Errorf("ensure project %s: %w", projectID, err)
	}
	return nil
}

// TouchScan records that a scan using the index has completed for project
// ("updated on every scan that uses the index").
func (s *Store) TouchScan(projectID string) error {
	_, err := s.db.Exec(`UPDATE projects SET last_scan_at = ? WHERE project_id = ?`, now(), projectID)
	if err != nil {
		return fmt.Errorf("touch scan %s: %w", projectID, err)
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
