package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
)

const (
	nbuBatchURL = "https://bank.gov.ua/NBU_Exchange/exchange_site"

	// Official NBU series reach further back, but history before the ECB
	// epoch has no counterpart to triangulate against.
	nbuHistoryStart = "1999-01-04"

	// Politeness delay between per-currency batch requests.
	nbuRequestDelay = 50 * time.Millisecond
)

// Regional currencies best sourced from the NBU, plus the dollar leg every
// snapshot needs for normalization. UAH itself is the native base.
var nbuCurrencyNames = map[string]string{
	"UAH": "Ukrainian Hryvnia",
	"USD": "US Dollar",
	"KZT": "Kazakhstani Tenge",
	"LBP": "Lebanese Pound",
	"MDL": "Moldovan Leu",
	"SAR": "Saudi Riyal",
	"VND": "Vietnamese Dong",
	"EGP": "Egyptian Pound",
	"GEL": "Georgian Lari",
}

// NBU serves the National Bank of Ukraine official daily rates. The bank
// quotes UAH per unit of foreign currency; snapshots are emitted UAH-based,
// so each entry is units of target per one hryvnia.
type NBU struct {
	client   *http.Client
	batchURL string
	logger   *slog.Logger
	delay    time.Duration
}

// NBUOption customizes the NBU provider.
type NBUOption func(*NBU)

// WithNBUClient overrides the HTTP client.
func WithNBUClient(c *http.Client) NBUOption {
	return func(p *NBU) { p.client = c }
}

// WithNBUEndpoint overrides the batch endpoint URL.
func WithNBUEndpoint(url string) NBUOption {
	return func(p *NBU) { p.batchURL = url }
}

// WithNBULogger overrides the logger used for per-currency fetch warnings.
func WithNBULogger(l *slog.Logger) NBUOption {
	return func(p *NBU) { p.logger = l }
}

// WithNBUDelay overrides the politeness delay between batch requests.
func WithNBUDelay(d time.Duration) NBUOption {
	return func(p *NBU) { p.delay = d }
}

// NewNBU creates the NBU provider with default endpoints and a 30s client.
func NewNBU(opts ...NBUOption) *NBU {
	p := &NBU{
		client:   httpClient(0),
		batchURL: nbuBatchURL,
		logger:   slog.Default(),
		delay:    nbuRequestDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *NBU) Name() string { return "nbu" }

func (p *NBU) BaseCurrency() string { return "UAH" }

func (p *NBU) Currencies() []domain.Currency {
	codes := make([]string, 0, len(nbuCurrencyNames))
	for code := range nbuCurrencyNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	currencies := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, domain.Currency{Code: code, Name: nbuCurrencyNames[code], Provider: p.Name()})
	}
	return currencies
}

// fetchCodes is the per-currency request list: everything except the native
// base, which is always 1 in its own snapshot.
func (p *NBU) fetchCodes() []string {
	codes := make([]string, 0, len(nbuCurrencyNames)-1)
	for code := range nbuCurrencyNames {
		if code == "UAH" {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// nbuBatchRate mirrors one record of the exchange_site response.
type nbuBatchRate struct {
	ExchangeDate string  `json:"exchangedate"` // DD.MM.YYYY
	CC           string  `json:"cc"`
	Rate         float64 `json:"rate"`
	Units        int     `json:"units"`
	RatePerUnit  float64 `json:"rate_per_unit"`
}

func (p *NBU) FetchRange(ctx context.Context, start, end time.Time) ([]domain.DailySnapshot, error) {
	start, end = domain.Day(start), domain.Day(end)

	var all []nbuBatchRate
	var fetched bool

	for i, code := range p.fetchCodes() {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, ctx.Err())
			case <-time.After(p.delay):
			}
		}

		url := fmt.Sprintf("%s?start=%s&end=%s&valcode=%s&sort=exchangedate&order=asc&json",
			p.batchURL, start.Format("20060102"), end.Format("20060102"), strings.ToLower(code))

		body, err := fetchBody(ctx, p.client, url)
		if err != nil {
			// One currency's outage should not sink the rest of the window.
			p.logger.Warn("NBU batch fetch failed",
				slog.String("currency", code), slog.String("error", err.Error()))
			continue
		}

		var records []nbuBatchRate
		if err := json.Unmarshal(body, &records); err != nil {
			p.logger.Warn("NBU batch response malformed",
				slog.String("currency", code), slog.String("error", err.Error()))
			continue
		}
		fetched = true
		all = append(all, records...)
	}

	if !fetched {
		return nil, fmt.Errorf("%w: no NBU batch request succeeded for %s..%s",
			apperrors.ErrFetch, domain.DayString(start), domain.DayString(end))
	}

	return nbuSnapshots(all, p.Name()), nil
}

// nbuSnapshots groups batch records into UAH-based daily snapshots, ascending
// by date. Records with unparsable dates or non-positive quotes are dropped.
func nbuSnapshots(records []nbuBatchRate, provider string) []domain.DailySnapshot {
	// UAH per one unit of foreign currency, keyed by day then code.
	uahPerUnit := make(map[time.Time]map[string]float64)
	for _, rec := range records {
		date, err := time.Parse("02.01.2006", rec.ExchangeDate)
		if err != nil {
			continue
		}
		perUnit := rec.RatePerUnit
		if perUnit <= 0 && rec.Units > 0 {
			perUnit = rec.Rate / float64(rec.Units)
		}
		if perUnit <= 0 {
			continue
		}
		day := domain.Day(date)
		if uahPerUnit[day] == nil {
			uahPerUnit[day] = make(map[string]float64)
		}
		uahPerUnit[day][strings.ToUpper(rec.CC)] = perUnit
	}

	snapshots := make([]domain.DailySnapshot, 0, len(uahPerUnit))
	for day, perUnit := range uahPerUnit {
		rates := make(map[string]float64, len(perUnit)+1)
		for code, uah := range perUnit {
			rates[code] = 1 / uah
		}
		rates["UAH"] = 1
		snapshots = append(snapshots, domain.DailySnapshot{
			Date:     day,
			Base:     "UAH",
			Rates:    rates,
			Provider: provider,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	return snapshots
}

func (p *NBU) FetchFullHistory(ctx context.Context) ([]domain.DailySnapshot, error) {
	start, err := time.Parse(time.DateOnly, nbuHistoryStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}
	return p.FetchRange(ctx, start, domain.Today())
}
