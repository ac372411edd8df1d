package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore keeps one row per document in the documents table.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
}

func NewSQLiteStore(db *sql.DB, prefix string) *SQLiteStore {
	return &SQLiteStore{db: db, prefix: prefix}
}

const (
	upsertDocumentSQL = `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectDocumentSQL = `SELECT value FROM documents WHERE key=?`

	deleteDocumentSQL = `DELETE FROM documents WHERE key=?`
)

func (s *SQLiteStore) key(k string) string { return s.prefix + k }

// Set upserts the document and stamps updated_at in UTC.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertDocumentSQL,
		s.key(key),
		string(value),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert document %q: %w", key, err)
	}
	return nil
}

// Get fetches a single document.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	if err := s.db.QueryRowContext(ctx, selectDocumentSQL, s.key(key)).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document %q: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteDocumentSQL, s.key(key)); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; the *sql.DB is shared with the event log and closed by main.
func (s *SQLiteStore) Close() error { return nil }
