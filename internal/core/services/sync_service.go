package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/platform/metrics"
	"github.com/letehaha/currency-rates/internal/providers"
)

// SyncService orchestrates the fetch-normalize-fill-store pipeline. It owns
// the per-provider locks: at most one run is in flight per provider, and a
// request for a locked provider fails immediately instead of queueing.
type SyncService struct {
	registry     *providers.Registry
	rateRepo     ports.RateRepository
	currencyRepo ports.CurrencyRepository
	runRepo      ports.SyncRunRepository
	events       ports.EventPublisher
	metrics      *metrics.Metrics
	reference    string
	logger       *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewSyncService creates the sync orchestrator.
func NewSyncService(
	registry *providers.Registry,
	rateRepo ports.RateRepository,
	currencyRepo ports.CurrencyRepository,
	runRepo ports.SyncRunRepository,
	events ports.EventPublisher,
	m *metrics.Metrics,
	reference string,
	logger *slog.Logger,
) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		registry:     registry,
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		runRepo:      runRepo,
		events:       events,
		metrics:      m,
		reference:    reference,
		logger:       logger,
		running:      make(map[string]bool),
	}
}

// tryAcquire flips the provider's lock slot, reporting whether the caller now
// owns it.
func (s *SyncService) tryAcquire(provider string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[provider] {
		return false
	}
	s.running[provider] = true
	return true
}

func (s *SyncService) release(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, provider)
}

// SyncProvider runs the pipeline for one provider. ErrNotFound for unknown
// names; ErrSyncInProgress when a run is already in flight.
func (s *SyncService) SyncProvider(ctx context.Context, name string) (domain.SyncRun, error) {
	provider, err := s.registry.Get(name)
	if err != nil {
		return domain.SyncRun{}, err
	}

	if !s.tryAcquire(name) {
		return domain.SyncRun{}, fmt.Errorf("%w: provider %q", apperrors.ErrSyncInProgress, name)
	}
	defer s.release(name)

	start := time.Now()
	run := s.runProvider(ctx, provider)
	run.SyncedAt = time.Now().UTC()

	s.metrics.ObserveRun(run.Provider, run.Status, time.Since(start), run.RecordsCount)
	s.recordRun(ctx, run)

	if run.Status == domain.SyncStatusSuccess || run.Status == domain.SyncStatusPartial {
		if err := s.events.PublishSyncCompleted(ctx, run); err != nil {
			s.logger.Warn("Failed to publish sync event",
				slog.String("provider", run.Provider), slog.String("error", err.Error()))
		}
	}
	return run, nil
}

// SyncAll runs every registered provider concurrently. A locked provider
// yields a skipped record; one provider's failure never blocks another.
func (s *SyncService) SyncAll(ctx context.Context) []domain.SyncRun {
	all := s.registry.All()
	runs := make([]domain.SyncRun, len(all))

	var wg sync.WaitGroup
	for i, provider := range all {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			run, err := s.SyncProvider(ctx, name)
			if err != nil {
				if errors.Is(err, apperrors.ErrSyncInProgress) {
					s.logger.Info("Sync already running, skipping", slog.String("provider", name))
					runs[i] = domain.SyncRun{Provider: name, Status: domain.SyncStatusSkipped, Message: err.Error()}
					return
				}
				runs[i] = domain.SyncRun{Provider: name, Status: domain.SyncStatusFailed, Message: err.Error()}
				return
			}
			runs[i] = run
		}(i, provider.Name())
	}
	wg.Wait()

	return runs
}

// runProvider executes one full pipeline pass and reports the outcome as a
// run record. Fetch, parse, and store failures abort the run; normalization
// failures abort only their date.
func (s *SyncService) runProvider(ctx context.Context, provider providers.Provider) domain.SyncRun {
	name := provider.Name()
	logger := s.logger.With(slog.String("provider", name))
	today := domain.Today()

	var snapshots []domain.DailySnapshot

	last, err := s.rateRepo.LatestRateDate(ctx, name)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Info("No synced data yet, fetching full history")
		snapshots, err = provider.FetchFullHistory(ctx)
	case err != nil:
		return failedRun(name, fmt.Errorf("failed to resolve sync window: %w", err))
	case !last.Before(today):
		logger.Info("Already up to date", slog.String("last_synced", domain.DayString(last)))
		return domain.SyncRun{Provider: name, Status: domain.SyncStatusUpToDate}
	default:
		// The last synced day is fetched again on purpose: providers revise
		// same-day figures and the upsert is idempotent.
		logger.Info("Fetching incremental window",
			slog.String("from", domain.DayString(last)), slog.String("to", domain.DayString(today)))
		snapshots, err = provider.FetchRange(ctx, last, today)
	}
	if err != nil {
		logger.Error("Fetch failed", slog.String("error", err.Error()))
		return failedRun(name, err)
	}

	run, err := s.ingest(ctx, name, snapshots, today)
	if err != nil {
		logger.Error("Ingest failed", slog.String("error", err.Error()))
		return failedRun(name, err)
	}

	if err := s.currencyRepo.UpsertCurrencies(ctx, provider.Currencies()); err != nil {
		// Metadata is cosmetic next to the rate rows; a failure here does
		// not undo a completed ingest.
		logger.Warn("Failed to upsert currency metadata", slog.String("error", err.Error()))
	}

	logger.Info("Sync finished",
		slog.String("status", run.Status),
		slog.Int("days", run.DaysCount),
		slog.Int64("records", run.RecordsCount))
	return run
}

// ingest normalizes, gap-fills, and upserts one batch of native snapshots.
// Returns a run record with status success or partial; a store failure is
// returned as an error for the caller to turn into a failed run.
func (s *SyncService) ingest(ctx context.Context, name string, snapshots []domain.DailySnapshot, asOf time.Time) (domain.SyncRun, error) {
	normalized := make([]domain.DailySnapshot, 0, len(snapshots))
	var failedDates int
	for _, snapshot := range snapshots {
		canonical, err := domain.Normalize(snapshot, s.reference)
		if err != nil {
			s.logger.Warn("Snapshot failed normalization",
				slog.String("provider", name),
				slog.String("date", domain.DayString(snapshot.Date)),
				slog.String("error", err.Error()))
			failedDates++
			continue
		}
		normalized = append(normalized, canonical)
	}

	filled := domain.FillGaps(normalized, asOf)

	rows := make([]domain.ExchangeRate, 0, len(filled)*16)
	for _, snapshot := range filled {
		rows = append(rows, snapshot.Rows()...)
	}

	written, err := s.rateRepo.UpsertRates(ctx, rows)
	if err != nil {
		return domain.SyncRun{}, err
	}

	run := domain.SyncRun{
		Provider:     name,
		Status:       domain.SyncStatusSuccess,
		DaysCount:    len(filled),
		RecordsCount: written,
	}
	if failedDates > 0 {
		run.Status = domain.SyncStatusPartial
		run.Message = fmt.Sprintf("%d of %d fetched days failed normalization", failedDates, len(snapshots))
	}
	return run, nil
}

// SeedIfEmpty bootstraps an empty store from bundled history files, running
// them through the same ingest stages as a live sync. Does nothing when the
// store already holds rates. Returns the recorded seed runs.
func (s *SyncService) SeedIfEmpty(ctx context.Context, sources []providers.SeedSource) ([]domain.SyncRun, error) {
	_, err := s.rateRepo.LatestRateDate(ctx, "")
	if err == nil {
		s.logger.Info("Store already contains rates, skipping seed")
		return nil, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check store before seeding: %w", err)
	}

	runs := make([]domain.SyncRun, 0, len(sources))
	for _, source := range sources {
		if len(source.Snapshots) == 0 {
			continue
		}
		if !s.tryAcquire(source.Provider) {
			return runs, fmt.Errorf("%w: provider %q", apperrors.ErrSyncInProgress, source.Provider)
		}

		// Gap-fill only up to the bundle's own last date: the live sync
		// covers everything after it.
		asOf := source.Snapshots[len(source.Snapshots)-1].Date
		run, err := s.ingest(ctx, source.Provider, source.Snapshots, asOf)
		s.release(source.Provider)
		if err != nil {
			return runs, fmt.Errorf("failed to seed provider %s: %w", source.Provider, err)
		}
		run.Status = domain.SyncStatusSeeded
		run.SyncedAt = time.Now().UTC()

		if err := s.currencyRepo.UpsertCurrencies(ctx, source.Currencies); err != nil {
			s.logger.Warn("Failed to upsert seeded currency metadata",
				slog.String("provider", source.Provider), slog.String("error", err.Error()))
		}

		s.recordRun(ctx, run)
		s.logger.Info("Seeded provider history",
			slog.String("provider", source.Provider),
			slog.Int("days", run.DaysCount),
			slog.Int64("records", run.RecordsCount))
		runs = append(runs, run)
	}
	return runs, nil
}

// recordRun appends the audit row. Audit failures are logged and swallowed;
// losing one observability row never fails the sync it describes.
func (s *SyncService) recordRun(ctx context.Context, run domain.SyncRun) {
	if err := s.runRepo.RecordRun(ctx, run); err != nil {
		s.logger.Warn("Failed to record sync run",
			slog.String("provider", run.Provider), slog.String("error", err.Error()))
	}
}

func failedRun(provider string, err error) domain.SyncRun {
	return domain.SyncRun{
		Provider: provider,
		Status:   domain.SyncStatusFailed,
		Message:  err.Error(),
	}
}
