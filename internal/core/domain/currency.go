package domain

// Currency represents a currency served by one of the rate providers.
type Currency struct {
	Code     string `json:"code"`     // 3-letter ISO code, e.g. "USD"
	Name     string `json:"name"`     // e.g. "US Dollar"
	Provider string `json:"provider"` // metadata owner, e.g. "ecb"
}
