package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db    *sqlx.DB
	locks *learnerLocks
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer; serializing at the pool level avoids
	// SQLITE_BUSY churn under concurrent mutations.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, locks: newLearnerLocks()}, nil
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Learners returns a LearnerRepo bound to the store's connection.
func (s *Store) Learners() *LearnerRepo { return &LearnerRepo{q: s.db} }

// Nodes returns a NodeRepo bound to the store's connection.
func (s *Store) Nodes() *NodeRepo { return &NodeRepo{q: s.db} }

// Units returns a UnitRepo bound to the store's connection.
func (s *Store) Units() *UnitRepo { return &UnitRepo{q: s.db} }

// Contents returns a ContentRepo bound to the store's connection.
func (s *Store) Contents() *ContentRepo { return &ContentRepo{q: s.db} }

// Attempts returns an AttemptRepo bound to the store's connection.
func (s *Store) Attempts() *AttemptRepo { return &AttemptRepo{q: s.db} }

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() EventRepo { return &eventRepo{q: s.db} }

// Tx bundles repositories bound to a single transaction.
type Tx struct {
	tx *sqlx.Tx
}

// Learners returns a LearnerRepo bound to the transaction.
func (t *Tx) Learners() *LearnerRepo { return &LearnerRepo{q: t.tx} }

// Nodes returns a NodeRepo bound to the transaction.
func (t *Tx) Nodes() *NodeRepo { return &NodeRepo{q: t.tx} }

// Units returns a UnitRepo bound to the transaction.
func (t *Tx) Units() *UnitRepo { return &UnitRepo{q: t.tx} }

// Contents returns a ContentRepo bound to the transaction.
func (t *Tx) Contents() *ContentRepo { return &ContentRepo{q: t.tx} }

// Attempts returns an AttemptRepo bound to the transaction.
func (t *Tx) Attempts() *AttemptRepo { return &AttemptRepo{q: t.tx} }

// InTx runs fn inside a transaction. The transaction is rolled back if fn
// returns an error and committed otherwise. Multi-step roadmap mutations
// (batch insert, shift-then-insert) must run through here so a partial
// failure never leaves a half-shifted position sequence.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LockLearner serializes mutating sequences for one learner. It returns an
// unlock function. Hold the lock around decide-and-write steps only, never
// across generator calls.
func (s *Store) LockLearner(learnerID int64) func() {
	return s.locks.lock(learnerID)
}

// ResetLearner removes all curriculum data for a learner: nodes, units,
// contents, attempts and learning status. The profile row survives.
func (s *Store) ResetLearner(ctx context.Context, learnerID int64) error {
	unlock := s.LockLearner(learnerID)
	defer unlock()

	return s.InTx(ctx, func(tx *Tx) error {
		return tx.Nodes().DeleteAll(ctx, learnerID)
	})
}

// applyPragmas configures SQLite for single-writer durability.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SKILLPATH_DB environment variable
// 2. $XDG_DATA_HOME/skillpath/skillpath.db
// 3. ~/.local/share/skillpath/skillpath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SKILLPATH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "skillpath", "skillpath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
