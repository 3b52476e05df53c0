package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/providers"
)

// upToDateWindow is how stale a provider's last rate date may be before the
// health report stops calling it up to date. Three days rides out a weekend.
const upToDateWindow = 3 * 24 * time.Hour

// HealthService aggregates per-provider sync state for the health endpoint.
type HealthService struct {
	registry  *providers.Registry
	rateRepo  ports.RateRepository
	runRepo   ports.SyncRunRepository
	reference string
	logger    *slog.Logger
}

// NewHealthService creates the health reporter.
func NewHealthService(
	registry *providers.Registry,
	rateRepo ports.RateRepository,
	runRepo ports.SyncRunRepository,
	reference string,
	logger *slog.Logger,
) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		registry:  registry,
		rateRepo:  rateRepo,
		runRepo:   runRepo,
		reference: reference,
		logger:    logger,
	}
}

// Health builds the per-provider status report.
func (s *HealthService) Health(ctx context.Context) (*domain.HealthReport, error) {
	report := &domain.HealthReport{ReferenceCurrency: s.reference}

	for _, provider := range s.registry.All() {
		name := provider.Name()
		status := domain.ProviderStatus{
			Name:         name,
			BaseCurrency: provider.BaseCurrency(),
		}

		count, err := s.rateRepo.CountForProvider(ctx, name)
		if err != nil {
			return nil, err
		}
		status.RatesCount = count

		lastDate, err := s.rateRepo.LatestRateDate(ctx, name)
		switch {
		case err == nil:
			status.LastRateDate = lastDate
			status.UpToDate = time.Since(lastDate) <= upToDateWindow
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}

		lastRun, err := s.runRepo.LastRun(ctx, name,
			domain.SyncStatusSuccess, domain.SyncStatusPartial, domain.SyncStatusSeeded, domain.SyncStatusUpToDate)
		switch {
		case err == nil:
			status.LastSyncedAt = lastRun.SyncedAt
		case !errors.Is(err, apperrors.ErrNotFound):
			s.logger.Warn("Failed to read last sync run", slog.String("provider", name), slog.String("error", err.Error()))
		}

		report.Providers = append(report.Providers, status)
	}
	return report, nil
}
