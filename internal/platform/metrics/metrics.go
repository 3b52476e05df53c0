package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the sync pipeline collectors. Collectors register against the
// given registerer, so tests can use an isolated registry.
type Metrics struct {
	SyncRunsTotal      *prometheus.CounterVec
	SyncDuration       *prometheus.HistogramVec
	RatesUpsertedTotal *prometheus.CounterVec
	LastSyncTimestamp  *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SyncRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_rates_sync_runs_total",
			Help: "Completed sync runs by provider and status.",
		}, []string{"provider", "status"}),
		SyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "currency_rates_sync_duration_seconds",
			Help:    "Duration of one provider sync run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"provider"}),
		RatesUpsertedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_rates_rows_upserted_total",
			Help: "Canonical rate rows written, by provider.",
		}, []string{"provider"}),
		LastSyncTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "currency_rates_last_sync_timestamp_seconds",
			Help: "Unix time of the last completed sync run, by provider.",
		}, []string{"provider"}),
	}
}

// ObserveRun records the outcome of one provider sync run.
func (m *Metrics) ObserveRun(provider, status string, duration time.Duration, rows int64) {
	if m == nil {
		return
	}
	m.SyncRunsTotal.WithLabelValues(provider, status).Inc()
	m.SyncDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if rows > 0 {
		m.RatesUpsertedTotal.WithLabelValues(provider).Add(float64(rows))
	}
	m.LastSyncTimestamp.WithLabelValues(provider).SetToCurrentTime()
}
