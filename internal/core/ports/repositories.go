package ports

import (
	"context"
	"time"

	"github.com/letehaha/currency-rates/internal/core/domain"
)

// RateRepository defines persistence operations for canonical exchange rates.
type RateRepository interface {
	// UpsertRates writes rate rows idempotently. Re-upserting an existing
	// (date, base, target, provider) key overwrites the rate value and leaves
	// created_at at first-insert time. Returns the number of keys affected.
	UpsertRates(ctx context.Context, rows []domain.ExchangeRate) (int64, error)
	// LatestRateDate returns MAX(date), filtered by provider when the
	// argument is non-empty. ErrNotFound when no rows exist.
	LatestRateDate(ctx context.Context, provider string) (time.Time, error)
	// EarliestRateDate returns MIN(date), filtered by provider when the
	// argument is non-empty. ErrNotFound when no rows exist.
	EarliestRateDate(ctx context.Context, provider string) (time.Time, error)
	// RatesForDate returns every provider's rows for the exact date.
	RatesForDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error)
	// RatesForRange returns rows for [start, end], ascending by date. Dates
	// with no data yield no rows.
	RatesForRange(ctx context.Context, start, end time.Time) ([]domain.ExchangeRate, error)
	// CountForProvider returns the number of stored rows for one provider.
	CountForProvider(ctx context.Context, provider string) (int64, error)
	// TargetSpans returns observed MIN/MAX dates per (target, provider).
	TargetSpans(ctx context.Context) ([]domain.TargetSpan, error)
}

// CurrencyRepository defines persistence operations for currency metadata.
type CurrencyRepository interface {
	// UpsertCurrencies writes metadata rows, last-writer-wins on name and
	// provider for an existing code.
	UpsertCurrencies(ctx context.Context, currencies []domain.Currency) error
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// SyncRunRepository defines the append-only sync audit log.
type SyncRunRepository interface {
	RecordRun(ctx context.Context, run domain.SyncRun) error
	// LastRun returns the provider's most recent run with one of the given
	// statuses (any status when none given). ErrNotFound when absent.
	LastRun(ctx context.Context, provider string, statuses ...string) (*domain.SyncRun, error)
}
