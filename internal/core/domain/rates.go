package domain

import "time"

// DailySnapshot is one calendar day of quotes from a single source: a mapping
// from target currency code to rate, where rate is units of target per one
// unit of Base. Providers emit snapshots in their native base; after
// normalization Base is the reference currency. Snapshots are transient and
// never shared across concurrent operations.
type DailySnapshot struct {
	Date     time.Time
	Base     string
	Rates    map[string]float64
	Provider string
}

// Rows flattens a canonical snapshot into persistable rate rows.
func (s DailySnapshot) Rows() []ExchangeRate {
	rows := make([]ExchangeRate, 0, len(s.Rates))
	for target, rate := range s.Rates {
		rows = append(rows, ExchangeRate{
			Date:           Day(s.Date),
			BaseCurrency:   s.Base,
			TargetCurrency: target,
			Rate:           rate,
			Provider:       s.Provider,
		})
	}
	return rows
}

// ExchangeRate is one persisted canonical rate row. BaseCurrency is always
// the reference currency. Rows are unique per
// (date, base_currency, target_currency, provider); re-ingesting the same key
// overwrites the rate value and leaves CreatedAt at first-insert time.
type ExchangeRate struct {
	Date           time.Time `json:"date"`
	BaseCurrency   string    `json:"baseCurrency"`
	TargetCurrency string    `json:"targetCurrency"`
	Rate           float64   `json:"rate"`
	Provider       string    `json:"provider"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Sync run statuses recorded in the audit log.
const (
	SyncStatusSuccess  = "success"
	SyncStatusPartial  = "partial"
	SyncStatusFailed   = "failed"
	SyncStatusSeeded   = "seeded"
	SyncStatusUpToDate = "up_to_date"
	SyncStatusSkipped  = "skipped"
)

// SyncRun is one audit record of a provider sync. Append-only; never consulted
// for correctness decisions.
type SyncRun struct {
	ID           int64     `json:"id"`
	Provider     string    `json:"provider"`
	SyncedAt     time.Time `json:"syncedAt"`
	DaysCount    int       `json:"daysCount"`
	RecordsCount int64     `json:"recordsCount"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
}

// TargetSpan reports the observed date coverage of one target currency for
// one provider.
type TargetSpan struct {
	Currency string
	Provider string
	MinDate  time.Time
	MaxDate  time.Time
}

// RateSet is one fully resolved day of rates: provider rows merged, re-based
// to the requested currency, and scaled. The unit every read query returns.
type RateSet struct {
	Date   time.Time
	Base   string
	Amount float64
	Rates  map[string]float64
}

// RateSeries is a resolved range query: the requested bounds plus one RateSet
// per date the store had data for, ascending. Base and Amount are the
// resolved query values even when Sets is empty.
type RateSeries struct {
	Start  time.Time
	End    time.Time
	Base   string
	Amount float64
	Sets   []RateSet
}

// CurrencyInfo aggregates what the store knows about one currency code:
// metadata plus observed coverage across providers. Derived at read time,
// never persisted.
type CurrencyInfo struct {
	Code      string
	Name      string
	Providers []string
	MinDate   time.Time // zero when the code has no rate rows yet
	MaxDate   time.Time
}
