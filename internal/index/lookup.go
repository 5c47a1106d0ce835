package index

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nyx-scan/nyx/internal/model"
)

// Lookup implements the incremental-index contract: a hit requires both
// hash and ruleSetVersion to match the stored record. Modified-time is
// advisory metadata and never consulted here.
func (s *Store) Lookup(projectID, relPath, hash string, ruleSetVersion int) (model.FileRecord, bool, error) {
	var rec model.FileRecord
	var modTime string
	row := s.db.QueryRow(
		`SELECT project_id, rel_path, content_hash, modified_time, rule_set_version
		 FROM files WHERE project_id = ? AND rel_path = ? AND content_hash = ? AND rule_set_version = ?`,
		projectID, relPath, hash, ruleSetVersion,
	)
	if err := row.Scan(&rec.ProjectID, &rec.RelPath, &rec.ContentHash, &modTime, &rec.RuleSetVersion); err != nil {
		if err == sql.ErrNoRows {
			return model.FileRecord{}, false, nil
		}
		return model.FileRecord{}, false, fmt.Errorf("lookup %s: %w", relPath, err)
	}
	if t, err := time.Parse(timeLayout, modTime); err == nil {
		rec.ModifiedTime = t
	}

	findings, err := s.findingsFor(projectID, relPath)
	if err != nil {
		return model.FileRecord{}, false, err
	}
	rec.Findings = findings
	return rec, true, nil
}

func (s *Store) findingsFor(projectID, relPath string) ([]model.Finding, error) {
	rows, err := s.db.Query(
		`SELECT rule_id, severity, line, "column", message, snippet
		 FROM findings WHERE project_id = ? AND rel_path = ?
		 ORDER BY line, "column", rule_id`,
		projectID, relPath,
	)
	if err != nil {
		return nil, fmt.Errorf("query findings %s: %w", relPath, err)
	}
	defer rows.Close()

	var out []model.Finding
	for rows.Next() {
		var f model.Finding
		var severity string
		if err := rows.Scan(&f.RuleID, &severity, &f.Line, &f.Column, &f.Message, &f.Snippet); err != nil {
			return nil, fmt.Errorf("scan finding %s: %w", relPath, err)
		}
		sev, err := model.ParseSeverity(severity)
		if err != nil {
			return nil, fmt.Errorf("finding %s: %w", relPath, err)
		}
		f.Severity = sev
		f.FilePath = relPath
		out = append(out, f)
	}
	return out, rows.Err()
}

// Project returns metadata for a known project.
func (s *Store) Project(projectID string) (model.ProjectRecord, bool, error) {
	var rec model.ProjectRecord
	var createdAt string
	var lastScan sql.NullString
	row := s.db.QueryRow(
		`SELECT project_id, root_path, created_at, last_scan_at FROM projects WHERE project_id = ?`,
		projectID,
	)
	if err := row.Scan(&rec.ProjectID, &rec.RootPath, &createdAt, &lastScan); err != nil {
		if err == sql.ErrNoRows {
			return model.ProjectRecord{}, false, nil
		}
		return model.ProjectRecord{}, false, fmt.Errorf("project %s: %w", projectID, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if lastScan.Valid {
		if t, err := time.Parse(time.RFC3339, lastScan.String); err == nil {
			rec.LastScanAt = t
		}
	}

	counts := s.db.QueryRow(`SELECT COUNT(*) FROM files WHERE project_id = ?`, projectID)
	_ = counts.Scan(&rec.FileCount)
	findingCounts := s.db.QueryRow(`SELECT COUNT(*) FROM findings WHERE project_id = ?`, projectID)
	_ = findingCounts.Scan(&rec.FindingCount)

	return rec, true, nil
}

// ListProjects returns every known project's metadata.
func (s *Store) ListProjects() ([]model.ProjectRecord, error) {
	rows, err := s.db.Query(`SELECT project_id FROM projects ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()

	out := make([]model.ProjectRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := s.Project(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
