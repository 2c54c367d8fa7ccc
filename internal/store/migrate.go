package store

import (
	"context"
	"database/sql"
)

const liveSessionsMigration = `
CREATE TABLE IF NOT EXISTS live_sessions (
    unique_id text PRIMARY KEY,
    kind text NOT NULL,
    viewing_url text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

// Migrate creates the live_sessions table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, liveSessionsMigration)
	return err
}
