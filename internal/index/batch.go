package index

import (
	"database/sql"
	"fmt"

	"github.com/nyx-scan/nyx/internal/model"
)

// Batch accumulates FileRecords for one transactional commit: a crash
// mid-batch leaves either the whole batch visible or none. The pipeline's
// index-writer goroutine owns the Batch exclusively.
type Batch struct {
	store   *Store
	records []model.FileRecord
}

// NewBatch starts an empty batch against store.
func (s *Store) NewBatch() *Batch { return &Batch{store: s} }

// Add queues a file's record for the next Commit.
func (b *Batch) Add(rec model.FileRecord) { b.records = append(b.records, rec) }

// Len reports how many records are queued.
func (b *Batch) Len() int { return len(b.records) }

// Commit writes every queued record in one transaction, marking the
// project in-progress for the duration so a crash mid-commit is detected
// and rolled forward into "needs rescan" on the next Open.
func (b *Batch) Commit() error {
	if len(b.records) == 0 {
		return nil
	}
	db := b.store.db
	projectID := b.records[0].ProjectID

	if _, err := db.Exec(`UPDATE projects SET scan_in_progress = 1 WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("mark in-progress: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	if err := writeBatch(tx, b.records); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if _, err := db.Exec(`UPDATE projects SET scan_in_progress = 0 WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear in-progress: %w", err)
	}
	b.records = nil
	return nil
}

func writeBatch(tx *sql.Tx, records []model.FileRecord) error {
	for _, rec := range records {
		if _, err := tx.Exec(
			`INSERT INTO files (project_id, rel_path, content_hash, modified_time, rule_set_version)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(project_id, rel_path) DO UPDATE SET
			   content_hash = excluded.content_hash,
			   modified_time = excluded.modified_time,
			   rule_set_version = excluded.rule_set_version`,
			rec.ProjectID, rec.RelPath, rec.ContentHash, rec.ModifiedTime.UTC().Format(timeLayout), rec.RuleSetVersion,
		); err != nil {
			return fmt.Errorf("upsert file %s: %w", rec.RelPath, err)
		}

		if _, err := tx.Exec(`DELETE FROM findings WHERE project_id = ? AND rel_path = ?`, rec.ProjectID, rec.RelPath); err != nil {
			return fmt.Errorf("clear findings %s: %w", rec.RelPath, err)
		}
		for _, f := range rec.Findings {
			if _, err := tx.Exec(
				`INSERT INTO findings (project_id, rel_path, rule_id, severity, line, "column", message, snippet)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ProjectID, rec.RelPath, f.RuleID, f.Severity.String(), f.Line, f.Column, f.Message, f.Snippet,
			); err != nil {
				return fmt.Errorf("insert finding %s: %w", rec.RelPath, err)
			}
		}
	}
	return nil
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"
