package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
)

// Provider is one source of daily exchange rate snapshots. Implementations
// quote against their own native base currency; normalization to the
// reference currency happens downstream.
type Provider interface {
	// Name is the registry key, e.g. "ecb".
	Name() string
	// BaseCurrency is the currency this source natively quotes against.
	BaseCurrency() string
	// Currencies is the natively served set, with display names.
	Currencies() []domain.Currency
	// FetchRange returns snapshots for publication days in [start, end],
	// ascending by date. Days the source did not publish are simply absent.
	FetchRange(ctx context.Context, start, end time.Time) ([]domain.DailySnapshot, error)
	// FetchFullHistory returns every snapshot the source has ever published,
	// ascending by date.
	FetchFullHistory(ctx context.Context) ([]domain.DailySnapshot, error)
}

// Registry resolves providers by name. Registration order doubles as the
// provider-priority order used when merging overlapping currency codes at
// query time.
type Registry struct {
	order  []Provider
	byName map[string]Provider
	native map[string]map[string]bool
}

// NewRegistry builds a registry from providers in priority order.
func NewRegistry(provs ...Provider) *Registry {
	r := &Registry{
		byName: make(map[string]Provider, len(provs)),
		native: make(map[string]map[string]bool, len(provs)),
	}
	for _, p := range provs {
		if _, dup := r.byName[p.Name()]; dup {
			continue
		}
		r.order = append(r.order, p)
		r.byName[p.Name()] = p
		set := make(map[string]bool)
		for _, c := range p.Currencies() {
			set[c.Code] = true
		}
		r.native[p.Name()] = set
	}
	return r
}

// Get resolves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", apperrors.ErrNotFound, name)
	}
	return p, nil
}

// All returns providers in registration order.
func (r *Registry) All() []Provider {
	return r.order
}

// Rank returns a provider's registration index; unknown names sort last.
func (r *Registry) Rank(name string) int {
	for i, p := range r.order {
		if p.Name() == name {
			return i
		}
	}
	return len(r.order)
}

// Owns reports whether a provider natively serves a currency code.
func (r *Registry) Owns(name, code string) bool {
	return r.native[name][code]
}

// httpClient is the shared fetch configuration for live providers.
func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// fetchBody performs one GET against a provider endpoint and returns the
// response body. Transport failures and non-2xx statuses map to ErrFetch.
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", apperrors.ErrFetch, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperrors.ErrFetch, err)
	}
	return body, nil
}
