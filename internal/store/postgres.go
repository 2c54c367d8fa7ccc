package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens and pings the database. Schema is created by Migrate.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	if s.Identifier == "" {
		return domain.Session{}, domain.ErrEmptyIdentifier
	}
	const q = `
INSERT INTO live_sessions (unique_id, kind, viewing_url)
VALUES ($1, $2, $3)
RETURNING created_at, updated_at`

	err := p.db.QueryRowContext(ctx, q, s.Identifier, string(s.Kind), s.ViewingURL).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.Session{}, domain.ErrDuplicateIdentifier
		}
		return domain.Session{}, fmt.Errorf("store: insert session: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return s, nil
}

func (p *PostgresStore) FindByIdentifier(ctx context.Context, id string) (domain.Session, error) {
	const q = `
SELECT unique_id, kind, viewing_url, created_at, updated_at
FROM live_sessions
WHERE unique_id = $1`

	var (
		s    domain.Session
		kind string
	)
	err := p.db.QueryRowContext(ctx, q, id).
		Scan(&s.Identifier, &kind, &s.ViewingURL, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("store: select session: %w", err)
	}
	s.Kind = domain.Kind(kind)
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return s, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
