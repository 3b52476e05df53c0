package domain

import (
	"sort"
	"time"
)

// FillGaps produces a dense daily sequence from a sparse one by carrying the
// most recent published snapshot forward across unpublished days, up to and
// including asOf. Gaps are only filled forward: days before the earliest
// snapshot stay absent, and no value is ever interpolated. Carried snapshots
// keep the originating provider tag.
func FillGaps(snapshots []DailySnapshot, asOf time.Time) []DailySnapshot {
	if len(snapshots) == 0 {
		return nil
	}

	sorted := make([]DailySnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]DailySnapshot, 0, len(sorted))
	prev := sorted[0]
	for i, s := range sorted {
		if i > 0 {
			for d := Day(prev.Date).AddDate(0, 0, 1); d.Before(Day(s.Date)); d = d.AddDate(0, 0, 1) {
				out = append(out, carry(prev, d))
			}
		}
		out = append(out, s)
		prev = s
	}

	for d := Day(prev.Date).AddDate(0, 0, 1); !d.After(Day(asOf)); d = d.AddDate(0, 0, 1) {
		out = append(out, carry(prev, d))
	}

	return out
}

// carry copies a snapshot onto a new date.
func carry(s DailySnapshot, date time.Time) DailySnapshot {
	rates := make(map[string]float64, len(s.Rates))
	for code, rate := range s.Rates {
		rates[code] = rate
	}
	return DailySnapshot{Date: date, Base: s.Base, Rates: rates, Provider: s.Provider}
}
