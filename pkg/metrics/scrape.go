package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScrapeMetrics records per-store fan-out outcomes for price source calls.
type ScrapeMetrics struct {
	duration *prometheus.HistogramVec
	offers   *prometheus.HistogramVec
	failures *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// NewScrapeMetrics registers scrape metrics on the provided registerer.
func NewScrapeMetrics(reg prometheus.Registerer) *ScrapeMetrics {
	if reg == nil {
		return &ScrapeMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrape_source_duration_seconds",
		Help:    "Duration of a single store source call.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"store"})
	offers := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrape_source_offers",
		Help:    "Offer count returned by a single store source call.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	}, []string{"store"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_source_failures",
		Help: "Store source calls that failed or timed out.",
	}, []string{"store"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_simplified_retries",
		Help: "Simplified-query retries attempted after an empty result.",
	}, []string{"store"})
	reg.MustRegister(duration, offers, failures, retries)
	return &ScrapeMetrics{
		duration: duration,
		offers:   offers,
		failures: failures,
		retries:  retries,
	}
}

// ObserveSource records a settled source call.
func (m *ScrapeMetrics) ObserveSource(store string, took time.Duration, offerCount int) {
	if m == nil || m.duration == nil {
		return
	}
	label := normalizeLabel(store)
	m.duration.WithLabelValues(label).Observe(took.Seconds())
	m.offers.WithLabelValues(label).Observe(float64(offerCount))
}

// IncFailure counts a failed or timed-out source call.
func (m *ScrapeMetrics) IncFailure(store string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncRetry counts a simplified-query retry.
func (m *ScrapeMetrics) IncRetry(store string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(store)).Inc()
}
