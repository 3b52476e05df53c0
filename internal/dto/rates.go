package dto

import (
	"math"

	"github.com/letehaha/currency-rates/internal/core/domain"
)

// RatesQuery carries the query parameters shared by the latest, single-date,
// and range endpoints.
type RatesQuery struct {
	From    string  `form:"from" binding:"omitempty,currency"`
	To      string  `form:"to"`
	Symbols string  `form:"symbols"`
	// Amount defaults to 1 downstream when omitted.
	Amount float64 `form:"amount" binding:"omitempty,gt=0"`
}

// RatesResponse is the payload for latest and single-date queries.
type RatesResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// TimeSeriesResponse is the payload for range queries: one rate mapping per
// stored date, keyed by date.
type TimeSeriesResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// CurrencyInfoResponse describes one currency in the /currencies aggregate.
type CurrencyInfoResponse struct {
	Name      string   `json:"name"`
	Providers []string `json:"providers"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
}

// CurrenciesResponse maps currency code to its metadata.
type CurrenciesResponse map[string]CurrencyInfoResponse

// roundRate trims a rate for presentation. Stored values stay unrounded; six
// decimal places only apply at the payload boundary.
func roundRate(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// ToRatesResponse converts a resolved rate set into the public payload shape.
func ToRatesResponse(rs *domain.RateSet) RatesResponse {
	rates := make(map[string]float64, len(rs.Rates))
	for code, rate := range rs.Rates {
		rates[code] = roundRate(rate)
	}
	return RatesResponse{
		Amount: rs.Amount,
		Base:   rs.Base,
		Date:   domain.DayString(rs.Date),
		Rates:  rates,
	}
}

// ToTimeSeriesResponse converts a resolved range into the public payload
// shape. The echoed bounds are the requested ones, not the stored extremes.
func ToTimeSeriesResponse(series *domain.RateSeries) TimeSeriesResponse {
	resp := TimeSeriesResponse{
		Amount:    series.Amount,
		Base:      series.Base,
		StartDate: domain.DayString(series.Start),
		EndDate:   domain.DayString(series.End),
		Rates:     make(map[string]map[string]float64, len(series.Sets)),
	}
	for _, rs := range series.Sets {
		rates := make(map[string]float64, len(rs.Rates))
		for code, rate := range rs.Rates {
			rates[code] = roundRate(rate)
		}
		resp.Rates[domain.DayString(rs.Date)] = rates
	}
	return resp
}

// ToCurrenciesResponse converts currency aggregates into the public map shape.
func ToCurrenciesResponse(infos []domain.CurrencyInfo) CurrenciesResponse {
	resp := make(CurrenciesResponse, len(infos))
	for _, info := range infos {
		entry := CurrencyInfoResponse{
			Name:      info.Name,
			Providers: info.Providers,
		}
		if !info.MinDate.IsZero() {
			entry.StartDate = domain.DayString(info.MinDate)
			entry.EndDate = domain.DayString(info.MaxDate)
		}
		resp[info.Code] = entry
	}
	return resp
}
