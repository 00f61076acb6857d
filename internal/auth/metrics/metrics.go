package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors plus a cheap atomic mirror for the
// JSON stats endpoint, which must answer without scraping the registry.
type Metrics struct {
	Exchanges          *prometheus.CounterVec // labels: outcome
	Validations        *prometheus.CounterVec // labels: outcome
	Refreshes          *prometheus.CounterVec // labels: outcome
	RateLimited        *prometheus.CounterVec // labels: endpoint
	ExchangeDurationMs prometheus.Histogram
	ValidateDurationMs prometheus.Histogram

	startedAt time.Time

	exchangeOK    atomic.Int64
	exchangeFail  atomic.Int64
	validateOK    atomic.Int64
	validateFail  atomic.Int64
	refreshOK     atomic.Int64
	refreshFail   atomic.Int64
	rateLimitHits atomic.Int64
}

// New registers and returns the service metrics collectors. Call once per
// process; promauto registers against the default registry.
func New() *Metrics {
	return &Metrics{
		Exchanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenauth_exchanges_total",
			Help: "Total number of access code exchange attempts",
		}, []string{"outcome"}),
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenauth_validations_total",
			Help: "Total number of token validation attempts",
		}, []string{"outcome"}),
		Refreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenauth_refreshes_total",
			Help: "Total number of refresh token rotations",
		}, []string{"outcome"}),
		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenauth_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}, []string{"endpoint"}),
		ExchangeDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenauth_exchange_duration_ms",
			Help:    "Duration of access code exchange in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		ValidateDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenauth_validate_duration_ms",
			Help:    "Duration of token validation in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		startedAt: time.Now().UTC(),
	}
}

func (m *Metrics) ObserveExchange(ok bool, dur time.Duration) {
	if ok {
		m.Exchanges.WithLabelValues("success").Inc()
		m.exchangeOK.Add(1)
	} else {
		m.Exchanges.WithLabelValues("failure").Inc()
		m.exchangeFail.Add(1)
	}
	m.ExchangeDurationMs.Observe(float64(dur.Milliseconds()))
}

func (m *Metrics) ObserveValidation(ok bool, dur time.Duration) {
	if ok {
		m.Validations.WithLabelValues("success").Inc()
		m.validateOK.Add(1)
	} else {
		m.Validations.WithLabelValues("failure").Inc()
		m.validateFail.Add(1)
	}
	m.ValidateDurationMs.Observe(float64(dur.Milliseconds()))
}

func (m *Metrics) ObserveRefresh(ok bool) {
	if ok {
		m.Refreshes.WithLabelValues("success").Inc()
		m.refreshOK.Add(1)
	} else {
		m.Refreshes.WithLabelValues("failure").Inc()
		m.refreshFail.Add(1)
	}
}

func (m *Metrics) ObserveRateLimited(endpoint string) {
	m.RateLimited.WithLabelValues(endpoint).Inc()
	m.rateLimitHits.Add(1)
}

// Snapshot is the JSON shape served by the internal stats endpoint.
type Snapshot struct {
	UptimeSeconds      int64   `json:"uptime_seconds"`
	ExchangeSuccesses  int64   `json:"exchange_successes"`
	ExchangeFailures   int64   `json:"exchange_failures"`
	ValidateSuccesses  int64   `json:"validate_successes"`
	ValidateFailures   int64   `json:"validate_failures"`
	RefreshSuccesses   int64   `json:"refresh_successes"`
	RefreshFailures    int64   `json:"refresh_failures"`
	RateLimitHits      int64   `json:"rate_limit_hits"`
	ExchangeSuccessPct float64 `json:"exchange_success_pct"`
}

// Snapshot returns current counter values. Values are read individually and
// may be slightly torn relative to each other; that is fine for ops stats.
func (m *Metrics) Snapshot() Snapshot {
	exOK := m.exchangeOK.Load()
	exFail := m.exchangeFail.Load()

	var pct float64
	if total := exOK + exFail; total > 0 {
		pct = 100 * float64(exOK) / float64(total)
	}

	return Snapshot{
		UptimeSeconds:      int64(time.Since(m.startedAt).Seconds()),
		ExchangeSuccesses:  exOK,
		ExchangeFailures:   exFail,
		ValidateSuccesses:  m.validateOK.Load(),
		ValidateFailures:   m.validateFail.Load(),
		RefreshSuccesses:   m.refreshOK.Load(),
		RefreshFailures:    m.refreshFail.Load(),
		RateLimitHits:      m.rateLimitHits.Load(),
		ExchangeSuccessPct: pct,
	}
}
