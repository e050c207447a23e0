// Package storage persists bankroll history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/pokerkelly/session"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

// InMemory opens a private in-memory database.
const InMemory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS bankroll_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	hand       INTEGER NOT NULL,
	bet        REAL    NOT NULL,
	equity     REAL    NOT NULL,
	bankroll   REAL    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bankroll_history_hand ON bankroll_history (hand, id);
`

// Config holds database settings.
type Config struct {
	// Path is the SQLite file. InMemory keeps everything in process.
	Path string

	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration

	// JournalMode is the SQLite journal mode (WAL, DELETE, ...).
	JournalMode string
}

// DefaultConfig returns the settings used when only a path is known.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		BusyTimeout: 5 * time.Second,
		JournalMode: "WAL",
	}
}

// Store is a bankroll history table. It implements session.Sink.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

var _ session.Sink = (*Store)(nil)

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("storage path is required")
	}
	if cfg.Path != InMemory {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.JournalMode != "" && cfg.Path != InMemory {
		dsn += fmt.Sprintf("&_pragma=journal_mode(%s)", cfg.JournalMode)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is its own database, and SQLite allows a
	// single writer anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("Opened bankroll history")
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a record.
func (s *Store) Save(ctx context.Context, rec session.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bankroll_history (session_id, hand, bet, equity, bankroll, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Hand, rec.Bet, rec.Equity, rec.Bankroll,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save hand %d: %w", rec.Hand, err)
	}
	s.logger.Debug().
		Str("session", rec.SessionID).
		Int("hand", rec.Hand).
		Float64("bet", rec.Bet).
		Msg("Saved bankroll record")
	return nil
}

// SaveAll appends records in a single transaction.
func (s *Store) SaveAll(ctx context.Context, recs []session.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bankroll_history (session_id, hand, bet, equity, bankroll, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.SessionID, rec.Hand, rec.Bet, rec.Equity, rec.Bankroll,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to save hand %d: %w", rec.Hand, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// History returns every record ordered by hand number, then insertion.
// A non-empty sessionID restricts the result to that session.
//
// A reset restarts hand numbering within a session, so this order mixes
// runs. Use Replay to rebuild bankroll state.
func (s *Store) History(ctx context.Context, sessionID string) ([]session.Record, error) {
	return s.query(ctx, sessionID, "hand, id")
}

// Replay returns records in the order they were saved, optionally for one
// session. Each run of a session starts at its hand 1.
func (s *Store) Replay(ctx context.Context, sessionID string) ([]session.Record, error) {
	return s.query(ctx, sessionID, "id")
}

func (s *Store) query(ctx context.Context, sessionID, order string) ([]session.Record, error) {
	query := `SELECT session_id, hand, bet, equity, bankroll, created_at FROM bankroll_history`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY ` + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []session.Record
	for rows.Next() {
		var (
			rec     session.Record
			created string
		)
		if err := rows.Scan(&rec.SessionID, &rec.Hand, &rec.Bet, &rec.Equity, &rec.Bankroll, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", created, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}

// Clear deletes all records and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bankroll_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}
	s.logger.Debug().Int64("rows", n).Msg("Cleared bankroll history")
	return n, nil
}
