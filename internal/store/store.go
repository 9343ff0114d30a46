// Package store is the relational exchange medium between pipeline stages.
// Every stage opens the same sqlite file, transacts its writes, and drops
// + recreates only the tables/views it owns so that re-running a stage is
// idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite handle shared by every stage.
type Store struct {
	DB *sql.DB
}

// Open connects to (and creates, if absent) the sqlite file at path and
// ensures the always-present `info` bookkeeping table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	// Single-writer pipeline: one connection avoids sqlite "database is
	// locked" errors under the batch-transaction write pattern.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{DB: db}
	if err := s.ensureInfoTable(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) ensureInfoTable() error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS info (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create info table: %w", err)
	}
	return nil
}

// SetInfo records a stage-completion marker (recovery bookkeeping).
func (s *Store) SetInfo(key, value string) error {
	_, err := s.DB.Exec(`
		INSERT INTO info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;
	`, key, value)
	if err != nil {
		return fmt.Errorf("set info %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetInfo(key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRow(`SELECT value FROM info WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get info %s: %w", key, err)
	}
	return value, true, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Every batch write in every stage goes through
// this helper, following the scaffold-then-commit shape used throughout
// the pipeline.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DefaultTimeout bounds the individual stage transactions; the pipeline is
// otherwise uncancellable (§5) but a stuck sqlite lock should not hang
// forever.
const DefaultTimeout = 5 * time.Minute

func (s *Store) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}
