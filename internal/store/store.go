package store

import (
	"context"
	"fmt"

	"github.com/ugaemi/horsingaround-server/internal/record"
)

// Store drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// RoundStore defines the interface for persistent round results.
type RoundStore interface {
	// Save inserts a finished round.
	Save(ctx context.Context, r *record.Round) error
	// FindByID looks up a round by ID. It returns nil when there is none.
	FindByID(ctx context.Context, id string) (*record.Round, error)
	// ListRecent returns up to limit rounds, newest first.
	ListRecent(ctx context.Context, limit int) ([]*record.Round, error)
	// Close releases database resources.
	Close() error
}

// Open connects the store selected by driver. DriverNone returns a nil store and
// round results are not kept.
func Open(ctx context.Context, driver, dsn string) (RoundStore, error) {
	switch driver {
	case DriverPostgres:
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	case DriverSQLite:
		s, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil
	case DriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
