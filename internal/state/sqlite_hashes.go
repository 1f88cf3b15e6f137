package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetContentHash retrieves the content hash for a file path.
func (s *SQLiteStore) GetContentHash(filePath string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var hash string
	err := s.db.QueryRow(`SELECT content_hash FROM content_hashes WHERE file_path = ?`, filePath).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil // Not found, return empty string
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}

	return hash, nil
}

// SetContentHash stores the content hash for a file path together with the
// output it was expanded to.
func (s *SQLiteStore) SetContentHash(filePath, hash, outputPath string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO content_hashes (file_path, content_hash, output_path, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   output_path = excluded.output_path,
		   updated_at = excluded.updated_at`,
		filePath, hash, outputPath, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set content hash: %w", err)
	}
	return nil
}

// DeleteContentHash removes the content hash for a file path.
func (s *SQLiteStore) DeleteContentHash(filePath string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(`DELETE FROM content_hashes WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("failed to delete content hash: %w", err)
	}
	return nil
}

// ListContentHashes returns every stored hash ordered by path.
func (s *SQLiteStore) ListContentHashes() ([]*FileHash, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT file_path, content_hash, output_path, updated_at FROM content_hashes ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list content hashes: %w", err)
	}
	defer rows.Close()

	var hashes []*FileHash
	for rows.Next() {
		h := &FileHash{}
		if err := rows.Scan(&h.FilePath, &h.ContentHash, &h.OutputPath, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content hash: %w", err)
		}
		hashes = append(hashes, h)
	}

	return hashes, rows.Err()
}
