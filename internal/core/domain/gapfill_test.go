package domain_test

import (
	"testing"

	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOn(date string, usd float64) domain.DailySnapshot {
	return domain.DailySnapshot{
		Date:     day(date),
		Base:     "USD",
		Rates:    map[string]float64{"USD": 1, "EUR": usd},
		Provider: "ecb",
	}
}

func TestFillGaps(t *testing.T) {
	t.Run("interior gaps carry the prior snapshot forward", func(t *testing.T) {
		sparse := []domain.DailySnapshot{
			snapshotOn("2025-03-01", 0.91),
			snapshotOn("2025-03-03", 0.92),
			snapshotOn("2025-03-05", 0.93),
		}

		dense := domain.FillGaps(sparse, day("2025-03-05"))
		require.Len(t, dense, 5)

		wantDates := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04", "2025-03-05"}
		wantEUR := []float64{0.91, 0.91, 0.92, 0.92, 0.93}
		for i, s := range dense {
			assert.Equal(t, wantDates[i], domain.DayString(s.Date))
			assert.Equal(t, wantEUR[i], s.Rates["EUR"])
			assert.Equal(t, "ecb", s.Provider)
		}
	})

	t.Run("trailing gap fills up to asOf", func(t *testing.T) {
		sparse := []domain.DailySnapshot{
			snapshotOn("2025-03-01", 0.91),
			snapshotOn("2025-03-03", 0.92),
		}

		dense := domain.FillGaps(sparse, day("2025-03-06"))
		require.Len(t, dense, 6)
		assert.Equal(t, "2025-03-06", domain.DayString(dense[5].Date))
		assert.Equal(t, 0.92, dense[5].Rates["EUR"])
	})

	t.Run("no day before the earliest snapshot is fabricated", func(t *testing.T) {
		dense := domain.FillGaps([]domain.DailySnapshot{snapshotOn("2025-03-03", 0.92)}, day("2025-03-04"))
		require.Len(t, dense, 2)
		assert.Equal(t, "2025-03-03", domain.DayString(dense[0].Date))
	})

	t.Run("asOf before the last snapshot adds nothing", func(t *testing.T) {
		sparse := []domain.DailySnapshot{
			snapshotOn("2025-03-01", 0.91),
			snapshotOn("2025-03-02", 0.92),
		}

		dense := domain.FillGaps(sparse, day("2025-03-01"))
		assert.Len(t, dense, 2)
	})

	t.Run("unsorted input is sorted first", func(t *testing.T) {
		sparse := []domain.DailySnapshot{
			snapshotOn("2025-03-03", 0.92),
			snapshotOn("2025-03-01", 0.91),
		}

		dense := domain.FillGaps(sparse, day("2025-03-03"))
		require.Len(t, dense, 3)
		assert.Equal(t, "2025-03-01", domain.DayString(dense[0].Date))
		assert.Equal(t, 0.91, dense[1].Rates["EUR"])
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, domain.FillGaps(nil, day("2025-03-05")))
	})

	t.Run("carried snapshots are copies", func(t *testing.T) {
		sparse := []domain.DailySnapshot{snapshotOn("2025-03-01", 0.91)}
		dense := domain.FillGaps(sparse, day("2025-03-02"))
		require.Len(t, dense, 2)

		dense[1].Rates["EUR"] = 99
		assert.Equal(t, 0.91, sparse[0].Rates["EUR"])
	})
}
