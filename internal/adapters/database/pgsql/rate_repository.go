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

type PgxRateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new repository for canonical rate rows.
func NewRateRepository(pool *pgxpool.Pool) ports.RateRepository {
	return &PgxRateRepository{pool: pool}
}

// UpsertRates writes rate rows idempotently in one batch round trip. The
// conflict update touches only the rate value, so created_at keeps its
// first-insert time across re-ingests of the same key.
func (r *PgxRateRepository) UpsertRates(ctx context.Context, rows []domain.ExchangeRate) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO exchange_rates (date, base_currency, target_currency, rate, provider)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date, base_currency, target_currency, provider)
		DO UPDATE SET rate = EXCLUDED.rate;
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		if row.Rate <= 0 {
			return 0, fmt.Errorf("%w: non-positive rate %v for %s/%s on %s",
				apperrors.ErrValidation, row.Rate, row.BaseCurrency, row.TargetCurrency, domain.DayString(row.Date))
		}
		batch.Queue(query, domain.Day(row.Date), row.BaseCurrency, row.TargetCurrency, row.Rate, row.Provider)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var affected int64
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("failed to upsert exchange rates: %w", err)
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

// LatestRateDate returns MAX(date), optionally filtered by provider.
func (r *PgxRateRepository) LatestRateDate(ctx context.Context, provider string) (time.Time, error) {
	return r.boundaryDate(ctx, "MAX", provider)
}

// EarliestRateDate returns MIN(date), optionally filtered by provider.
func (r *PgxRateRepository) EarliestRateDate(ctx context.Context, provider string) (time.Time, error) {
	return r.boundaryDate(ctx, "MIN", provider)
}

func (r *PgxRateRepository) boundaryDate(ctx context.Context, agg, provider string) (time.Time, error) {
	query := fmt.Sprintf(`SELECT %s(date) FROM exchange_rates WHERE ($1 = '' OR provider = $1);`, agg)

	var date *time.Time
	if err := r.pool.QueryRow(ctx, query, provider).Scan(&date); err != nil {
		return time.Time{}, fmt.Errorf("failed to query %s rate date: %w", agg, err)
	}
	if date == nil {
		// The aggregate row exists even for an empty table; a NULL date
		// means there is nothing synced yet.
		return time.Time{}, apperrors.ErrNotFound
	}
	return domain.Day(*date), nil
}

// RatesForDate retrieves every provider's rows for the exact date.
func (r *PgxRateRepository) RatesForDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT date, base_currency, target_currency, rate, provider, created_at
		FROM exchange_rates
		WHERE date = $1
		ORDER BY target_currency, provider;
	`
	rows, err := r.pool.Query(ctx, query, domain.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for date %s: %w", domain.DayString(date), err)
	}
	defer rows.Close()

	return collectRates(rows)
}

// RatesForRange retrieves rows for [start, end], ascending by date.
func (r *PgxRateRepository) RatesForRange(ctx context.Context, start, end time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT date, base_currency, target_currency, rate, provider, created_at
		FROM exchange_rates
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, target_currency, provider;
	`
	rows, err := r.pool.Query(ctx, query, domain.Day(start), domain.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for range %s..%s: %w",
			domain.DayString(start), domain.DayString(end), err)
	}
	defer rows.Close()

	return collectRates(rows)
}

// CountForProvider returns the number of stored rows for one provider.
func (r *PgxRateRepository) CountForProvider(ctx context.Context, provider string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rates WHERE provider = $1;`, provider).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rates for provider %s: %w", provider, err)
	}
	return count, nil
}

// TargetSpans returns observed MIN/MAX dates per (target_currency, provider).
func (r *PgxRateRepository) TargetSpans(ctx context.Context) ([]domain.TargetSpan, error) {
	query := `
		SELECT target_currency, provider, MIN(date), MAX(date)
		FROM exchange_rates
		GROUP BY target_currency, provider
		ORDER BY target_currency, provider;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query target spans: %w", err)
	}
	defer rows.Close()

	spans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TargetSpan, error) {
		var span domain.TargetSpan
		err := row.Scan(&span.Currency, &span.Provider, &span.MinDate, &span.MaxDate)
		return span, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan target spans: %w", err)
	}
	return spans, nil
}

func collectRates(rows pgx.Rows) ([]domain.ExchangeRate, error) {
	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExchangeRate, error) {
		var rate domain.ExchangeRate
		err := row.Scan(
			&rate.Date,
			&rate.BaseCurrency,
			&rate.TargetCurrency,
			&rate.Rate,
			&rate.Provider,
			&rate.CreatedAt,
		)
		return rate, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.ExchangeRate{}, nil
		}
		return nil, fmt.Errorf("failed to scan exchange rates: %w", err)
	}
	return rates, nil
}
