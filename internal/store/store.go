// Package store persists session records. Backends must reject a duplicate
// identifier atomically; the registry never retries on collision.
package store

import (
	"context"
	"fmt"

	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/rs/zerolog/log"
)

// Store defines how session records are stored and retrieved.
type Store interface {
	// Create stamps CreatedAt/UpdatedAt and returns the stored record.
	// A colliding identifier yields domain.ErrDuplicateIdentifier.
	Create(ctx context.Context, s domain.Session) (domain.Session, error)
	// FindByIdentifier yields domain.ErrNotFound for unknown identifiers.
	FindByIdentifier(ctx context.Context, id string) (domain.Session, error)
	Close() error
}

// Open connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "memory", "":
		st = NewMemoryStore()
	case "redis":
		st, err = OpenRedis(ctx, cfg.Redis)
	case "postgres":
		st, err = OpenPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	log.Info().Str("module", "store").Str("driver", cfg.Driver).Msg("store ready")
	return st, nil
}
