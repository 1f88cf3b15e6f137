package state

import (
	"fmt"
	"log/slog"
)

// ReplaceSites stores the call sites of filePath found during runID,
// replacing any sites previously recorded for the file.
func (s *SQLiteStore) ReplaceSites(runID, filePath string, sites []Site) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM call_sites WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("failed to delete existing sites: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO call_sites (run_id, file_path, line, col, source, post, leaves, operators, has_fallback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare site insert: %w", err)
	}
	defer stmt.Close()

	for _, site := range sites {
		_, err := stmt.Exec(runID, filePath, site.Line, site.Column, site.Source, site.Post,
			site.Leaves, site.Operators, site.HasFallback)
		if err != nil {
			return fmt.Errorf("failed to insert site %s:%d: %w", filePath, site.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("stored call sites", slog.String("file", filePath), slog.Int("count", len(sites)))
	return nil
}

// ListSites returns the recorded call sites ordered by file and position.
// An empty filePath lists the sites of every file.
func (s *SQLiteStore) ListSites(filePath string) ([]*Site, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, run_id, file_path, line, col, source, post, leaves, operators, has_fallback FROM call_sites`
	var args []any
	if filePath != "" {
		query += ` WHERE file_path = ?`
		args = append(args, filePath)
	}
	query += ` ORDER BY file_path, line, col`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*Site
	for rows.Next() {
		site := &Site{}
		err := rows.Scan(&site.ID, &site.RunID, &site.FilePath, &site.Line, &site.Column,
			&site.Source, &site.Post, &site.Leaves, &site.Operators, &site.HasFallback)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}
