package dto

// ProviderHealth reports one provider's sync state.
type ProviderHealth struct {
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
	RatesCount   int64  `json:"rates_count"`
	LastRateDate string `json:"last_rate_date,omitempty"`
	LastSyncedAt string `json:"last_synced_at,omitempty"`
	UpToDate     bool   `json:"up_to_date"`
}

// HealthResponse is the payload for the health endpoint.
type HealthResponse struct {
	Status            string           `json:"status"`
	Version           string           `json:"version"`
	ReferenceCurrency string           `json:"reference_currency"`
	Providers         []ProviderHealth `json:"providers"`
}
