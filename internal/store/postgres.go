package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ugaemi/horsingaround-server/internal/record"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS rounds (
    id TEXT PRIMARY KEY,
    session_code TEXT NOT NULL,
    level TEXT NOT NULL,
    cause TEXT NOT NULL,
    score INTEGER NOT NULL,
    duration_ms BIGINT NOT NULL,
    started_at TIMESTAMPTZ NOT NULL,
    ended_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at DESC);
`

const roundColumns = `id, session_code, level, cause, score, duration_ms, started_at, ended_at`

// PostgresStore implements RoundStore using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Save inserts a finished round.
func (s *PostgresStore) Save(ctx context.Context, r *record.Round) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rounds (`+roundColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.SessionCode, r.Level, r.Cause, r.Score, r.Duration.Milliseconds(), r.StartedAt, r.EndedAt)
	return err
}

// FindByID looks up a round by ID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*record.Round, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)

	r, err := scanRound(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ListRecent returns up to limit rounds, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*record.Round, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roundColumns+` FROM rounds ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*record.Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanRound(row pgx.Row) (*record.Round, error) {
	var r record.Round
	var durationMS int64
	err := row.Scan(&r.ID, &r.SessionCode, &r.Level, &r.Cause, &r.Score, &durationMS, &r.StartedAt, &r.EndedAt)
	if err != nil {
		return nil, err
	}
	r.Duration = msToDuration(durationMS)
	return &r, nil
}
