package domain_test

import (
	"testing"
	"time"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		snapshot  domain.DailySnapshot
		reference string
		want      map[string]float64
		wantErr   error
	}{
		{
			name: "EUR snapshot normalized to USD",
			snapshot: domain.DailySnapshot{
				Date:     day("2025-11-27"),
				Base:     "EUR",
				Rates:    map[string]float64{"USD": 1.158, "GBP": 0.872, "EUR": 1},
				Provider: "ecb",
			},
			reference: "USD",
			want: map[string]float64{
				"USD": 1,
				"EUR": 1 / 1.158,
				"GBP": 0.872 / 1.158,
			},
		},
		{
			name: "native base equals reference",
			snapshot: domain.DailySnapshot{
				Date:     day("2025-11-27"),
				Base:     "USD",
				Rates:    map[string]float64{"EUR": 0.86, "GBP": 0.75},
				Provider: "manual",
			},
			reference: "USD",
			want: map[string]float64{
				"USD": 1,
				"EUR": 0.86,
				"GBP": 0.75,
			},
		},
		{
			name: "UAH snapshot normalized to USD",
			snapshot: domain.DailySnapshot{
				Date:     day("2025-11-27"),
				Base:     "UAH",
				Rates:    map[string]float64{"USD": 1 / 41.5, "KZT": 1 / 0.08, "UAH": 1},
				Provider: "nbu",
			},
			reference: "USD",
			want: map[string]float64{
				"USD": 1,
				"UAH": 41.5,
				"KZT": (1 / 0.08) / (1 / 41.5),
			},
		},
		{
			name: "missing reference rate fails the date",
			snapshot: domain.DailySnapshot{
				Date:     day("2025-11-27"),
				Base:     "EUR",
				Rates:    map[string]float64{"GBP": 0.872},
				Provider: "ecb",
			},
			reference: "USD",
			wantErr:   apperrors.ErrMissingReferenceRate,
		},
		{
			name: "non-positive quotes are dropped",
			snapshot: domain.DailySnapshot{
				Date:     day("2025-11-27"),
				Base:     "EUR",
				Rates:    map[string]float64{"USD": 1.158, "XXX": 0, "GBP": 0.872},
				Provider: "ecb",
			},
			reference: "USD",
			want: map[string]float64{
				"USD": 1,
				"EUR": 1 / 1.158,
				"GBP": 0.872 / 1.158,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Normalize(tt.snapshot, tt.reference)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.reference, got.Base)
			assert.Equal(t, tt.snapshot.Provider, got.Provider)
			require.Len(t, got.Rates, len(tt.want))
			for code, want := range tt.want {
				assert.InDelta(t, want, got.Rates[code], 1e-12, "rate for %s", code)
			}
		})
	}
}

func TestNormalize_EndToEndExample(t *testing.T) {
	// A EUR snapshot with USD 1.158 and GBP 0.872, normalized to USD and then
	// re-based to EUR at query time, must recover the original GBP quote.
	snapshot := domain.DailySnapshot{
		Date:     day("2025-11-27"),
		Base:     "EUR",
		Rates:    map[string]float64{"EUR": 1, "USD": 1.158, "GBP": 0.872},
		Provider: "ecb",
	}

	canonical, err := domain.Normalize(snapshot, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.8636, canonical.Rates["EUR"], 1e-4)
	assert.InDelta(t, 0.7531, canonical.Rates["GBP"], 1e-4)
	assert.Equal(t, 1.0, canonical.Rates["USD"])

	rebased, err := domain.ConvertBase(canonical.Rates, "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 0.872, rebased["GBP"], 1e-9)
	assert.InDelta(t, 1.158, rebased["USD"], 1e-9)
	assert.InDelta(t, 1.0, rebased["EUR"], 1e-12)
}

func TestNormalize_RoundTrip(t *testing.T) {
	original := domain.DailySnapshot{
		Date: day("2024-06-03"),
		Base: "EUR",
		Rates: map[string]float64{
			"EUR": 1, "USD": 1.0852, "GBP": 0.85155, "JPY": 169.83,
			"CHF": 0.9732, "PLN": 4.2765,
		},
		Provider: "ecb",
	}

	canonical, err := domain.Normalize(original, "USD")
	require.NoError(t, err)

	recovered, err := domain.ConvertBase(canonical.Rates, "EUR")
	require.NoError(t, err)

	for code, want := range original.Rates {
		assert.InDelta(t, want, recovered[code], 1e-9, "rate for %s", code)
	}
}

func TestConvertBase(t *testing.T) {
	rates := map[string]float64{"USD": 1, "EUR": 0.86, "GBP": 0.75}

	t.Run("identity base is a no-op", func(t *testing.T) {
		got, err := domain.ConvertBase(rates, "USD")
		require.NoError(t, err)
		assert.Equal(t, rates, got)
	})

	t.Run("requested base present", func(t *testing.T) {
		got, err := domain.ConvertBase(rates, "EUR")
		require.NoError(t, err)
		assert.InDelta(t, 1/0.86, got["USD"], 1e-12)
		assert.InDelta(t, 1.0, got["EUR"], 1e-12)
		assert.InDelta(t, 0.75/0.86, got["GBP"], 1e-12)
	})

	t.Run("requested base absent", func(t *testing.T) {
		_, err := domain.ConvertBase(rates, "UAH")
		assert.ErrorIs(t, err, apperrors.ErrUnknownCurrency)
	})
}

func TestDailySnapshot_Rows(t *testing.T) {
	s := domain.DailySnapshot{
		Date:     day("2025-01-15"),
		Base:     "USD",
		Rates:    map[string]float64{"USD": 1, "EUR": 0.86},
		Provider: "ecb",
	}

	rows := s.Rows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, day("2025-01-15"), row.Date)
		assert.Equal(t, "USD", row.BaseCurrency)
		assert.Equal(t, "ecb", row.Provider)
		assert.Equal(t, s.Rates[row.TargetCurrency], row.Rate)
	}
}
