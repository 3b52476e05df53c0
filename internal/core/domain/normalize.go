package domain

import (
	"fmt"

	"github.com/letehaha/currency-rates/internal/apperrors"
)

// Normalize converts a snapshot quoted in its native base into the
// reference-currency form used for persistence.
//
// With native base X and reference R, the snapshot's own R entry is the
// divisor: rate(R,Y) = rate(X,Y) / rate(X,R) for every target Y, the native
// base becomes a target via rate(R,X) = 1 / rate(X,R), and the identity
// rate(R,R) = 1 is always present. A snapshot without an R entry cannot be
// normalized; the whole date fails with ErrMissingReferenceRate.
func Normalize(s DailySnapshot, reference string) (DailySnapshot, error) {
	out := DailySnapshot{
		Date:     Day(s.Date),
		Base:     reference,
		Rates:    make(map[string]float64, len(s.Rates)+2),
		Provider: s.Provider,
	}

	if s.Base == reference {
		for code, rate := range s.Rates {
			if rate <= 0 {
				continue // a non-positive quote cannot become a canonical rate
			}
			out.Rates[code] = rate
		}
		out.Rates[reference] = 1
		return out, nil
	}

	div, ok := s.Rates[reference]
	if !ok || div <= 0 {
		return DailySnapshot{}, fmt.Errorf("%w: provider %q quotes no %s on %s",
			apperrors.ErrMissingReferenceRate, s.Provider, reference, DayString(s.Date))
	}

	for code, rate := range s.Rates {
		if code == reference || rate <= 0 {
			continue
		}
		out.Rates[code] = rate / div
	}
	out.Rates[s.Base] = 1 / div
	out.Rates[reference] = 1
	return out, nil
}

// ConvertBase re-expresses a date's canonical rate mapping in another base:
// rate(Q,Y) = rate(R,Y) / rate(R,Q). The requested base must be part of that
// date's currency set; the engine never defaults a missing divisor.
func ConvertBase(rates map[string]float64, base string) (map[string]float64, error) {
	div, ok := rates[base]
	if !ok || div <= 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, base)
	}
	out := make(map[string]float64, len(rates))
	for code, rate := range rates {
		out[code] = rate / div
	}
	return out, nil
}
