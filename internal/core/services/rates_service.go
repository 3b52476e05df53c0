package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/providers"
)

// RatesService answers read queries by composing stored canonical rows with
// query-time re-triangulation. It never writes and never fabricates data for
// unsynced dates.
type RatesService struct {
	registry     *providers.Registry
	rateRepo     ports.RateRepository
	currencyRepo ports.CurrencyRepository
	reference    string
	defaultBase  string
}

// NewRatesService creates the query engine.
func NewRatesService(
	registry *providers.Registry,
	rateRepo ports.RateRepository,
	currencyRepo ports.CurrencyRepository,
	reference string,
	defaultBase string,
) *RatesService {
	if defaultBase == "" {
		defaultBase = reference
	}
	return &RatesService{
		registry:     registry,
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		reference:    reference,
		defaultBase:  defaultBase,
	}
}

// Latest resolves the most recent synced date across all providers, then
// answers like AtDate. ErrNoData when nothing has been synced yet.
func (s *RatesService) Latest(ctx context.Context, q domain.RateQuery) (*domain.RateSet, error) {
	date, err := s.rateRepo.LatestRateDate(ctx, "")
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rates synced yet", apperrors.ErrNoData)
		}
		return nil, err
	}
	return s.AtDate(ctx, date, q)
}

// AtDate answers a point query for one exact date. ErrNoData when the store
// has no rows for it.
func (s *RatesService) AtDate(ctx context.Context, date time.Time, q domain.RateQuery) (*domain.RateSet, error) {
	rows, err := s.rateRepo.RatesForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rates for %s", apperrors.ErrNoData, domain.DayString(date))
	}
	return s.resolve(domain.Day(date), rows, q)
}

// Range answers a time-series query. Each stored date resolves independently
// through the same merge and triangulation; missing interior dates are simply
// absent from the result. Zero bounds stretch to the stored extremes.
func (s *RatesService) Range(ctx context.Context, start, end time.Time, q domain.RateQuery) (*domain.RateSeries, error) {
	var err error
	if start.IsZero() {
		if start, err = s.rateRepo.EarliestRateDate(ctx, ""); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no rates synced yet", apperrors.ErrNoData)
			}
			return nil, err
		}
	}
	if end.IsZero() {
		if end, err = s.rateRepo.LatestRateDate(ctx, ""); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no rates synced yet", apperrors.ErrNoData)
			}
			return nil, err
		}
	}
	start, end = domain.Day(start), domain.Day(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s",
			apperrors.ErrValidation, domain.DayString(start), domain.DayString(end))
	}

	rows, err := s.rateRepo.RatesForRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rates between %s and %s",
			apperrors.ErrNoData, domain.DayString(start), domain.DayString(end))
	}

	series := &domain.RateSeries{
		Start:  start,
		End:    end,
		Base:   s.queryBase(q),
		Amount: s.queryAmount(q),
	}

	// Rows arrive ascending by date; split on date boundaries.
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].Date.Equal(rows[i].Date) {
			j++
		}
		set, err := s.resolve(domain.Day(rows[i].Date), rows[i:j], q)
		if err != nil {
			return nil, err
		}
		series.Sets = append(series.Sets, *set)
		i = j
	}
	return series, nil
}

// Currencies aggregates stored metadata with observed per-currency coverage.
func (s *RatesService) Currencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	spans, err := s.rateRepo.TargetSpans(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(currencies))
	for _, currency := range currencies {
		names[currency.Code] = currency.Name
	}

	byCode := make(map[string]*domain.CurrencyInfo)
	for _, span := range spans {
		info, ok := byCode[span.Currency]
		if !ok {
			info = &domain.CurrencyInfo{
				Code:    span.Currency,
				Name:    names[span.Currency],
				MinDate: span.MinDate,
				MaxDate: span.MaxDate,
			}
			byCode[span.Currency] = info
		}
		info.Providers = append(info.Providers, span.Provider)
		if span.MinDate.Before(info.MinDate) {
			info.MinDate = span.MinDate
		}
		if span.MaxDate.After(info.MaxDate) {
			info.MaxDate = span.MaxDate
		}
	}

	// Metadata-only codes still show up, just without coverage dates.
	for _, currency := range currencies {
		if _, ok := byCode[currency.Code]; !ok {
			byCode[currency.Code] = &domain.CurrencyInfo{Code: currency.Code, Name: currency.Name}
		}
	}

	infos := make([]domain.CurrencyInfo, 0, len(byCode))
	for _, info := range byCode {
		sort.Slice(info.Providers, func(i, j int) bool {
			return s.registry.Rank(info.Providers[i]) < s.registry.Rank(info.Providers[j])
		})
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Code < infos[j].Code })
	return infos, nil
}

// resolve turns one date's raw rows into a final rate set: provider merge,
// base conversion, symbol filter, amount scaling, in that order.
func (s *RatesService) resolve(date time.Time, rows []domain.ExchangeRate, q domain.RateQuery) (*domain.RateSet, error) {
	merged := s.merge(rows)

	base := s.queryBase(q)
	rates := merged
	if base != s.reference {
		converted, err := domain.ConvertBase(merged, base)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", base, domain.DayString(date), err)
		}
		rates = converted
	}
	// The base itself is implicit in the response; callers read it from the
	// envelope, not the mapping.
	delete(rates, base)

	if len(q.Symbols) > 0 {
		filtered := make(map[string]float64, len(q.Symbols))
		for _, symbol := range q.Symbols {
			rate, ok := rates[symbol]
			if !ok {
				return nil, fmt.Errorf("%w: %s on %s", apperrors.ErrUnknownCurrency, symbol, domain.DayString(date))
			}
			filtered[symbol] = rate
		}
		rates = filtered
	}

	amount := s.queryAmount(q)
	if amount != 1 {
		for code, rate := range rates {
			rates[code] = rate * amount
		}
	}

	return &domain.RateSet{Date: date, Base: base, Amount: amount, Rates: rates}, nil
}

// merge collapses one date's rows from multiple providers into a single
// mapping. A provider natively serving a currency wins; ties fall back to
// registration order.
func (s *RatesService) merge(rows []domain.ExchangeRate) map[string]float64 {
	rates := make(map[string]float64, len(rows))
	source := make(map[string]string, len(rows))

	for _, row := range rows {
		current, seen := source[row.TargetCurrency]
		if seen && !s.preferred(row.Provider, current, row.TargetCurrency) {
			continue
		}
		rates[row.TargetCurrency] = row.Rate
		source[row.TargetCurrency] = row.Provider
	}
	return rates
}

// preferred reports whether candidate should replace current as the source
// for a currency code.
func (s *RatesService) preferred(candidate, current, code string) bool {
	candidateOwns := s.registry.Owns(candidate, code)
	currentOwns := s.registry.Owns(current, code)
	if candidateOwns != currentOwns {
		return candidateOwns
	}
	return s.registry.Rank(candidate) < s.registry.Rank(current)
}

func (s *RatesService) queryBase(q domain.RateQuery) string {
	if q.Base != "" {
		return q.Base
	}
	return s.defaultBase
}

func (s *RatesService) queryAmount(q domain.RateQuery) float64 {
	if q.Amount > 0 {
		return q.Amount
	}
	return 1
}
