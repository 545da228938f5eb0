package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ziadkadry99/pdfeditor/internal/db"
)

// Store provides CRUD for saved_files rows.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

const columns = "id, user_id, filename, folder, storage_key, backend, size_bytes, page_count, created_at"

// Insert records a saved file.
func (s *Store) Insert(ctx context.Context, f *SavedFile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_files (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Filename, f.Folder, f.StorageKey, f.Backend,
		f.SizeBytes, f.PageCount, f.CreatedAt.UTC().Format("2006-01-02 15:04:05.000"),
	)
	if err != nil {
		return fmt.Errorf("inserting saved file: %w", err)
	}
	return nil
}

// List returns a user's saved files, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]SavedFile, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns+` FROM saved_files
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing saved files: %w", err)
	}
	defer rows.Close()

	var files []SavedFile
	for rows.Next() {
		f, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning saved file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// Get returns one of a user's saved files.
func (s *Store) Get(ctx context.Context, userID, id string) (*SavedFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM saved_files WHERE id = ? AND user_id = ?`, id, userID)
	f, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting saved file: %w", err)
	}
	return f, nil
}

// Delete removes one of a user's saved files.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_files WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting saved file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*SavedFile, error) {
	var (
		f       SavedFile
		created string
	)
	err := sc.Scan(&f.ID, &f.UserID, &f.Filename, &f.Folder, &f.StorageKey, &f.Backend,
		&f.SizeBytes, &f.PageCount, &created)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}
