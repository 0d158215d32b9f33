// Package metrics exposes Prometheus instruments for the voiceprint
// subsystem. The host application decides whether and where to serve the
// scrape endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the subsystem.
type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CacheEvictions  *prometheus.CounterVec
	CacheSize       prometheus.Gauge
	StoreErrors     *prometheus.CounterVec
	ExtractDuration prometheus.Histogram
	SimilarityScans prometheus.Counter
}

// New registers the instrument set on its own registry. Separate registries
// keep tests and multiple service instances from colliding on registration.
func New(namespace string) (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "L1 cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "L1 cache misses (including L2 fallbacks).",
		}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "L1 evictions by reason.",
		}, []string{"reason"}),
		CacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current number of L1 cache entries.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Persistent-store failures by operation.",
		}, []string{"op"}),
		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_ms",
			Help:      "Feature extraction duration in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		SimilarityScans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "similarity_scans_total",
			Help:      "Full linear similarity scans performed.",
		}),
	}
	reg.MustRegister(
		m.CacheHits, m.CacheMisses, m.CacheEvictions, m.CacheSize,
		m.StoreErrors, m.ExtractDuration, m.SimilarityScans,
	)
	return m, reg
}

// ObserveExtract records one extraction duration.
func (m *Metrics) ObserveExtract(d time.Duration) {
	m.ExtractDuration.Observe(float64(d.Milliseconds()))
}

// Handler returns a scrape handler for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
