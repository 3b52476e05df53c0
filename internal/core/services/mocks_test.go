package services_test

import (
	"context"
	"time"

	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/providers"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) UpsertRates(ctx context.Context, rows []domain.ExchangeRate) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) LatestRateDate(ctx context.Context, provider string) (time.Time, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRateRepository) EarliestRateDate(ctx context.Context, provider string) (time.Time, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRateRepository) RatesForDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) RatesForRange(ctx context.Context, start, end time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) CountForProvider(ctx context.Context, provider string) (int64, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) TargetSpans(ctx context.Context) ([]domain.TargetSpan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TargetSpan), args.Error(1)
}

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) UpsertCurrencies(ctx context.Context, currencies []domain.Currency) error {
	args := m.Called(ctx, currencies)
	return args.Error(0)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock SyncRunRepository ---
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) RecordRun(ctx context.Context, run domain.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSyncRunRepository) LastRun(ctx context.Context, provider string, statuses ...string) (*domain.SyncRun, error) {
	args := m.Called(ctx, provider, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishSyncCompleted(ctx context.Context, run domain.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Fake provider ---

// fakeProvider is a scriptable providers.Provider for orchestration tests.
type fakeProvider struct {
	name       string
	base       string
	currencies []domain.Currency
	fetchRange func(ctx context.Context, start, end time.Time) ([]domain.DailySnapshot, error)
	fetchFull  func(ctx context.Context) ([]domain.DailySnapshot, error)
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) BaseCurrency() string { return p.base }

func (p *fakeProvider) Currencies() []domain.Currency { return p.currencies }

func (p *fakeProvider) FetchRange(ctx context.Context, start, end time.Time) ([]domain.DailySnapshot, error) {
	return p.fetchRange(ctx, start, end)
}

func (p *fakeProvider) FetchFullHistory(ctx context.Context) ([]domain.DailySnapshot, error) {
	return p.fetchFull(ctx)
}

var _ providers.Provider = (*fakeProvider)(nil)
