package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
)

const (
	ecbNinetyDayURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml"
	ecbHistoryURL   = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.xml"

	// The 90-day feed covers calendar days, not publication days; anything
	// older than this window has to come from the full history file.
	ecbNinetyDayWindow = 85 * 24 * time.Hour
)

var ecbCurrencyNames = map[string]string{
	"EUR": "Euro",
	"USD": "US Dollar",
	"JPY": "Japanese Yen",
	"BGN": "Bulgarian Lev",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"GBP": "British Pound",
	"HUF": "Hungarian Forint",
	"PLN": "Polish Zloty",
	"RON": "Romanian Leu",
	"SEK": "Swedish Krona",
	"CHF": "Swiss Franc",
	"ISK": "Icelandic Krona",
	"NOK": "Norwegian Krone",
	"TRY": "Turkish Lira",
	"AUD": "Australian Dollar",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CNY": "Chinese Yuan",
	"HKD": "Hong Kong Dollar",
	"IDR": "Indonesian Rupiah",
	"ILS": "Israeli Shekel",
	"INR": "Indian Rupee",
	"KRW": "South Korean Won",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"ZAR": "South African Rand",
}

// ECB serves the European Central Bank euro foreign exchange reference rates.
// Quotes are EUR-based: each entry is units of target per one euro.
type ECB struct {
	client       *http.Client
	ninetyDayURL string
	historyURL   string
}

// ECBOption customizes the ECB provider.
type ECBOption func(*ECB)

// WithECBClient overrides the HTTP client.
func WithECBClient(c *http.Client) ECBOption {
	return func(p *ECB) { p.client = c }
}

// WithECBEndpoints overrides the feed URLs.
func WithECBEndpoints(ninetyDay, history string) ECBOption {
	return func(p *ECB) {
		p.ninetyDayURL = ninetyDay
		p.historyURL = history
	}
}

// NewECB creates the ECB provider with default endpoints and a 30s client.
func NewECB(opts ...ECBOption) *ECB {
	p := &ECB{
		client:       httpClient(0),
		ninetyDayURL: ecbNinetyDayURL,
		historyURL:   ecbHistoryURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ECB) Name() string { return "ecb" }

func (p *ECB) BaseCurrency() string { return "EUR" }

func (p *ECB) Currencies() []domain.Currency {
	codes := make([]string, 0, len(ecbCurrencyNames))
	for code := range ecbCurrencyNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	currencies := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, domain.Currency{Code: code, Name: ecbCurrencyNames[code], Provider: p.Name()})
	}
	return currencies
}

func (p *ECB) FetchRange(ctx context.Context, start, end time.Time) ([]domain.DailySnapshot, error) {
	start, end = domain.Day(start), domain.Day(end)

	url := p.ninetyDayURL
	if time.Since(start) > ecbNinetyDayWindow {
		url = p.historyURL
	}

	body, err := fetchBody(ctx, p.client, url)
	if err != nil {
		return nil, err
	}

	all, err := parseECBXML(body, p.Name())
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.DailySnapshot, 0, len(all))
	for _, s := range all {
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

func (p *ECB) FetchFullHistory(ctx context.Context) ([]domain.DailySnapshot, error) {
	body, err := fetchBody(ctx, p.client, p.historyURL)
	if err != nil {
		return nil, err
	}
	return parseECBXML(body, p.Name())
}

// ecbEnvelope mirrors the feed layout: Envelope > Cube > Cube[time] >
// Cube[currency, rate].
type ecbEnvelope struct {
	Days []ecbDay `xml:"Cube>Cube"`
}

type ecbDay struct {
	Time  string    `xml:"time,attr"`
	Rates []ecbRate `xml:"Cube"`
}

type ecbRate struct {
	Currency string  `xml:"currency,attr"`
	Rate     float64 `xml:"rate,attr"`
}

// parseECBXML decodes an ECB reference-rate feed into EUR-based snapshots,
// ascending by date. The history file arrives newest-first.
func parseECBXML(data []byte, provider string) ([]domain.DailySnapshot, error) {
	var envelope ecbEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode ECB feed: %v", apperrors.ErrParse, err)
	}

	snapshots := make([]domain.DailySnapshot, 0, len(envelope.Days))
	for _, d := range envelope.Days {
		date, err := time.Parse(time.DateOnly, d.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: bad ECB date %q: %v", apperrors.ErrParse, d.Time, err)
		}

		rates := make(map[string]float64, len(d.Rates)+1)
		for _, r := range d.Rates {
			if r.Currency == "" {
				continue
			}
			rates[r.Currency] = r.Rate
		}
		rates["EUR"] = 1

		snapshots = append(snapshots, domain.DailySnapshot{
			Date:     domain.Day(date),
			Base:     "EUR",
			Rates:    rates,
			Provider: provider,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	return snapshots, nil
}
