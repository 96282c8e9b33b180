package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
		id              UUID PRIMARY KEY,
		address         TEXT NOT NULL,
		latitude        DOUBLE PRECISION NOT NULL,
		longitude       DOUBLE PRECISION NOT NULL,
		monthly_bill    DOUBLE PRECISION NOT NULL,
		roof_size       TEXT NOT NULL DEFAULT '',
		panel_type      TEXT NOT NULL,
		include_subsidy BOOLEAN NOT NULL DEFAULT FALSE,
		region          TEXT NOT NULL,
		analysis_result JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC)`,
}

// Migrate creates the analyses table and its indexes if they do not exist.
// It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	for i, q := range migrations {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
