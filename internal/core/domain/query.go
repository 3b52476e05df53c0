package domain

import "time"

// RateQuery carries the caller-controlled knobs of a read query. Zero values
// mean "use the service defaults": base falls back to the configured default,
// amount to 1, and an empty symbol list disables filtering.
type RateQuery struct {
	Base    string
	Symbols []string
	Amount  float64
}

// ProviderStatus is one provider's block in the health report.
type ProviderStatus struct {
	Name         string
	BaseCurrency string
	RatesCount   int64
	LastRateDate time.Time // zero when the provider has no rows yet
	LastSyncedAt time.Time // zero when the provider has never synced
	UpToDate     bool
}

// HealthReport aggregates per-provider sync state for the health endpoint.
type HealthReport struct {
	ReferenceCurrency string
	Providers         []ProviderStatus
}
