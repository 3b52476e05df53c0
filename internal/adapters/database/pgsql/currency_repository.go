package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
)

type PgxCurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new repository for currency metadata.
func NewCurrencyRepository(pool *pgxpool.Pool) ports.CurrencyRepository {
	return &PgxCurrencyRepository{pool: pool}
}

// UpsertCurrencies inserts or updates metadata rows, last-writer-wins on name
// and provider for an existing code.
func (r *PgxCurrencyRepository) UpsertCurrencies(ctx context.Context, currencies []domain.Currency) error {
	if len(currencies) == 0 {
		return nil
	}

	query := `
		INSERT INTO currencies (code, name, provider)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			provider = EXCLUDED.provider;
	`

	batch := &pgx.Batch{}
	for _, currency := range currencies {
		batch.Queue(query, currency.Code, currency.Name, currency.Provider)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, currency := range currencies {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert currency %s: %w", currency.Code, err)
		}
	}
	return nil
}

// ListCurrencies retrieves all currency metadata rows.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT code, name, provider FROM currencies ORDER BY code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		var currency domain.Currency
		err := row.Scan(&currency.Code, &currency.Name, &currency.Provider)
		return currency, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Currency{}, nil
		}
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return currencies, nil
}
