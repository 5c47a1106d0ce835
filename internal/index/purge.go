package index

import "fmt"

// Purge removes a project and every file/finding row it owns.
func (s *Store) Purge(projectID string) error {
	if _, err := s.db.Exec(`DELETE FROM projects WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("purge %s: %w", projectID, err)
	}
	return nil
}

// PurgeAll removes every project known to the index, backing the CLI's
// `clean --all` command.
func (s *Store) PurgeAll() error {
	if _, err := s.db.Exec(`DELETE FROM projects`); err != nil {
		return fmt.Errorf("purge all: %w", err)
	}
	return nil
}
