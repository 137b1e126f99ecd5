// Package observability defines the Prometheus metrics exported by the bot.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupExpired = "expired"
	LookupError   = "error"
)

// Upstream fetch outcomes.
const (
	FetchSuccess = "success"
	FetchEmpty   = "empty"
	FetchError   = "error"
)

// Interaction outcomes.
const (
	InteractionServed      = "served"
	InteractionUnavailable = "unavailable"
	InteractionError       = "error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	cacheLookups  *prometheus.CounterVec
	cacheSaves    *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	interactions  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechmeme_cache_lookups_total",
			Help: "Snapshot lookups by result (hit, miss, expired, error)",
		}, []string{"result"}),
		cacheSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechmeme_cache_saves_total",
			Help: "Snapshot writes by outcome (success, error)",
		}, []string{"outcome"}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechmeme_upstream_fetches_total",
			Help: "Upstream queries by outcome (success, empty, error)",
		}, []string{"outcome"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speechmeme_upstream_fetch_duration_seconds",
			Help:    "Upstream query latency",
			Buckets: prometheus.DefBuckets,
		}),
		interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechmeme_interactions_total",
			Help: "Slash command invocations by outcome (served, unavailable, error)",
		}, []string{"outcome"}),
	}
}

// CacheLookup counts one snapshot lookup.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CacheSave counts one snapshot write.
func (m *Metrics) CacheSave(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.cacheSaves.WithLabelValues(outcome).Inc()
}

// Fetch records one upstream query.
func (m *Metrics) Fetch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

// Interaction counts one slash command.
func (m *Metrics) Interaction(outcome string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(outcome).Inc()
}
