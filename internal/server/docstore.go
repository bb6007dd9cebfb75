package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DocStore persists one JSON document per collection type in an embedded
// SQLite database. Writes replace the whole document; there is no partial or
// merge semantics anywhere in the store.
type DocStore struct {
	conn *sql.DB
	path string
}

// OpenDocStore opens (or creates) the document database at the given path.
// The caller must Close() it when done.
func OpenDocStore(path string) (*DocStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL keeps concurrent readers responsive during document replacement.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &DocStore{conn: conn, path: path}
	if err := store.initSchema(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *DocStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		doc_type   TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the stored document body for the type, and whether one exists.
func (s *DocStore) Get(docType string) (string, bool, error) {
	var body string
	err := s.conn.QueryRow(
		"SELECT body FROM documents WHERE doc_type = ?", docType,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read document %s: %w", docType, err)
	}
	return body, true, nil
}

// Put replaces the stored document for the type wholesale.
func (s *DocStore) Put(docType, body string) error {
	_, err := s.conn.Exec(`
		INSERT INTO documents (doc_type, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(doc_type) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		docType, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", docType, err)
	}
	return nil
}

// Close releases the database connection.
func (s *DocStore) Close() error {
	return s.conn.Close()
}
