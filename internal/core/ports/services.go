package ports

import (
	"context"
	"time"

	"github.com/letehaha/currency-rates/internal/core/domain"
)

// SyncSvcFacade is the orchestration surface exposed to handlers and the
// scheduler. At most one sync runs per provider at any time; a request for a
// locked provider fails immediately with ErrSyncInProgress.
type SyncSvcFacade interface {
	// SyncAll runs every registered provider concurrently and returns one
	// run record per provider. A locked provider yields a skipped record;
	// one provider's failure never blocks another.
	SyncAll(ctx context.Context) []domain.SyncRun
	// SyncProvider runs the fetch-normalize-fill-store pipeline for one
	// provider. ErrNotFound for unknown names, ErrSyncInProgress on
	// contention.
	SyncProvider(ctx context.Context, name string) (domain.SyncRun, error)
}

// RatesSvcFacade is the read-only query surface over stored canonical rates.
type RatesSvcFacade interface {
	Latest(ctx context.Context, q domain.RateQuery) (*domain.RateSet, error)
	AtDate(ctx context.Context, date time.Time, q domain.RateQuery) (*domain.RateSet, error)
	// Range resolves each stored date in [start, end] independently,
	// ascending. A zero start means "from the earliest stored date", a zero
	// end "to the latest".
	Range(ctx context.Context, start, end time.Time, q domain.RateQuery) (*domain.RateSeries, error)
	Currencies(ctx context.Context) ([]domain.CurrencyInfo, error)
}

// HealthSvcFacade reports per-provider sync state.
type HealthSvcFacade interface {
	Health(ctx context.Context) (*domain.HealthReport, error)
}

// EventPublisher emits sync lifecycle events to interested consumers.
// Publishing is best-effort: callers log failures and never fail a sync on
// a publish error.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, run domain.SyncRun) error
	Close() error
}
