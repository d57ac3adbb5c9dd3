package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ugaemi/horsingaround-server/internal/record"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rounds (
	id           TEXT PRIMARY KEY,
	session_code TEXT NOT NULL,
	level        TEXT NOT NULL,
	cause        TEXT NOT NULL,
	score        INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	started_at   TEXT NOT NULL,
	ended_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at);
`

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements RoundStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and runs migrations.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts a finished round.
func (s *SQLiteStore) Save(ctx context.Context, r *record.Round) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (`+roundColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionCode, r.Level, r.Cause, r.Score, r.Duration.Milliseconds(),
		r.StartedAt.UTC().Format(timeLayout), r.EndedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// FindByID looks up a round by ID.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*record.Round, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = ?`, id)

	r, err := scanSQLiteRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ListRecent returns up to limit rounds, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]*record.Round, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*record.Round
	for rows.Next() {
		r, err := scanSQLiteRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRound(row rowScanner) (*record.Round, error) {
	var r record.Round
	var durationMS int64
	var startedAt, endedAt string
	if err := row.Scan(&r.ID, &r.SessionCode, &r.Level, &r.Cause, &r.Score, &durationMS, &startedAt, &endedAt); err != nil {
		return nil, err
	}

	var err error
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if r.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return nil, fmt.Errorf("parse ended_at: %w", err)
	}
	r.Duration = msToDuration(durationMS)
	return &r, nil
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
