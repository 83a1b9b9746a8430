package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure-Go driver registration, no cgo
)

// SQLiteRepository is the default Repository implementation, used when a
// host plugin runtime doesn't supply its own. Structurally grounded on
// internal/audit.Store: a mutex-protected *sql.DB with CREATE TABLE IF NOT
// EXISTS on open and hand-scanned rows.
type SQLiteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLiteRepository opens or creates the sandbox_registry table at path.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sandbox_registry (
			id             TEXT PRIMARY KEY,
			container_name TEXT NOT NULL,
			session_key    TEXT NOT NULL,
			created_at_ms  INTEGER NOT NULL,
			last_used_at_ms INTEGER NOT NULL,
			image          TEXT NOT NULL,
			config_hash    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_sandbox_registry_session_key ON sandbox_registry(session_key);
		CREATE INDEX IF NOT EXISTS idx_sandbox_registry_container_name ON sandbox_registry(container_name);
		CREATE INDEX IF NOT EXISTS idx_sandbox_registry_last_used_at_ms ON sandbox_registry(last_used_at_ms);
	`)
	if err != nil {
		return fmt.Errorf("creating sandbox_registry schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func (s *SQLiteRepository) Insert(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sandbox_registry (id, container_name, session_key, created_at_ms, last_used_at_ms, image, config_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ContainerName, r.SessionKey, r.CreatedAtMs, r.LastUsedAtMs, r.Image, r.ConfigHash)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting sandbox_registry row: %w", err)
	}
	return nil
}

func (s *SQLiteRepository) Update(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE sandbox_registry
		SET container_name = ?, session_key = ?, created_at_ms = ?, last_used_at_ms = ?, image = ?, config_hash = ?
		WHERE id = ?
	`, r.ContainerName, r.SessionKey, r.CreatedAtMs, r.LastUsedAtMs, r.Image, r.ConfigHash, r.ID)
	if err != nil {
		return fmt.Errorf("updating sandbox_registry row: %w", err)
	}
	return nil
}

func (s *SQLiteRepository) Find(containerName string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT id, container_name, session_key, created_at_ms, last_used_at_ms, image, config_hash
		FROM sandbox_registry WHERE id = ?
	`, containerName)
	return scanRecord(row)
}

func (s *SQLiteRepository) Remove(containerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM sandbox_registry WHERE id = ?`, containerName)
	if err != nil {
		return fmt.Errorf("deleting sandbox_registry row: %w", err)
	}
	return nil
}

func (s *SQLiteRepository) ListAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, container_name, session_key, created_at_ms, last_used_at_ms, image, config_hash
		FROM sandbox_registry ORDER BY last_used_at_ms
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sandbox_registry rows: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ContainerName, &r.SessionKey, &r.CreatedAtMs, &r.LastUsedAtMs, &r.Image, &r.ConfigHash); err != nil {
			return nil, fmt.Errorf("scanning sandbox_registry row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row *sql.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.ContainerName, &r.SessionKey, &r.CreatedAtMs, &r.LastUsedAtMs, &r.Image, &r.ConfigHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("scanning sandbox_registry row: %w", err)
	}
	return r, nil
}

// isUniqueConstraintErr reports whether err is a sqlite UNIQUE/PRIMARY KEY
// constraint violation. modernc.org/sqlite reports these as plain errors
// whose text names the constraint, matching the CLI's own sqlite3 message.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, "UNIQUE constraint failed", "constraint failed: PRIMARY KEY")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if len(sub) <= len(s) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}
