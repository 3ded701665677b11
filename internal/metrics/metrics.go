// Package metrics defines the Prometheus collectors of the matching engine.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "job_matcher"

// Extraction outcomes.
const (
	ExtractionParsed   = "parsed"
	ExtractionDegraded = "degraded"
	ExtractionFailed   = "failed"
	ExtractionRejected = "rejected"
)

// Match request results.
const (
	MatchSuccess         = "success"
	MatchDegraded        = "degraded"
	MatchInputError      = "input_error"
	MatchExtractionError = "extraction_error"
)

// StatusOK labels a successful provider call; failures use their error kind.
const StatusOK = "ok"

var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of job provider calls by outcome",
		},
		[]string{"provider", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Job provider call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider"},
	)

	ProviderListingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_listings_total",
			Help:      "Total number of normalized listings returned by providers",
		},
		[]string{"provider"},
	)

	ExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_extractions_total",
			Help:      "Total number of profile extractions by outcome",
		},
		[]string{"outcome"},
	)

	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_requests_total",
			Help:      "Total number of match requests by result",
		},
		[]string{"result"},
	)

	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "End-to-end match request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderListingsTotal,
			ExtractionTotal,
			MatchRequestsTotal,
			MatchDuration,
		)
	})
}

// ObserveProvider records one provider call.
func ObserveProvider(provider, status string, listings int, took time.Duration) {
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(took.Seconds())
	if listings > 0 {
		ProviderListingsTotal.WithLabelValues(provider).Add(float64(listings))
	}
}
