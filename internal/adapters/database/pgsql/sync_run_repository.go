package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
)

type PgxSyncRunRepository struct {
	pool *pgxpool.Pool
}

// NewSyncRunRepository creates a new repository for the sync audit log.
func NewSyncRunRepository(pool *pgxpool.Pool) ports.SyncRunRepository {
	return &PgxSyncRunRepository{pool: pool}
}

// RecordRun appends one audit row. Rows are never updated or deleted.
func (r *PgxSyncRunRepository) RecordRun(ctx context.Context, run domain.SyncRun) error {
	query := `
		INSERT INTO sync_log (provider, synced_at, days_count, records_count, status, message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''));
	`

	syncedAt := run.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query,
		run.Provider,
		syncedAt,
		run.DaysCount,
		run.RecordsCount,
		run.Status,
		run.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run for %s: %w", run.Provider, err)
	}
	return nil
}

// LastRun retrieves the provider's most recent run with one of the given
// statuses, or with any status when none are given.
func (r *PgxSyncRunRepository) LastRun(ctx context.Context, provider string, statuses ...string) (*domain.SyncRun, error) {
	query := `
		SELECT id, provider, synced_at, days_count, records_count, status, COALESCE(message, '')
		FROM sync_log
		WHERE provider = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY synced_at DESC, id DESC
		LIMIT 1;
	`

	if statuses == nil {
		statuses = []string{}
	}

	var run domain.SyncRun
	err := r.pool.QueryRow(ctx, query, provider, statuses).Scan(
		&run.ID,
		&run.Provider,
		&run.SyncedAt,
		&run.DaysCount,
		&run.RecordsCount,
		&run.Status,
		&run.Message,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query last sync run for %s: %w", provider, err)
	}
	return &run, nil
}
