package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	rentalSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agrirent",
			Name:      "rental_requests_submitted_total",
			Help:      "Count of rental request submissions by result.",
		},
		[]string{"result"},
	)

	rentalTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agrirent",
			Name:      "rental_transitions_total",
			Help:      "Count of applied rental lifecycle transitions.",
		},
		[]string{"from", "to"},
	)

	credentialChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agrirent",
			Name:      "credential_checks_total",
			Help:      "Count of pickup/return credential checks by outcome.",
		},
		[]string{"purpose", "result"},
	)

	availabilityCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agrirent",
			Name:      "availability_cache_total",
			Help:      "Availability cache lookups by result.",
		},
		[]string{"result"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agrirent",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(rentalSubmitted, rentalTransitions, credentialChecks, availabilityCache, httpDuration)
	})
}

func IncRentalSubmitted(result string) {
	rentalSubmitted.WithLabelValues(result).Inc()
}

func IncTransition(from, to string) {
	rentalTransitions.WithLabelValues(from, to).Inc()
}

func IncCredentialCheck(purpose, result string) {
	credentialChecks.WithLabelValues(purpose, result).Inc()
}

func IncAvailabilityCache(result string) {
	availabilityCache.WithLabelValues(result).Inc()
}

func ObserveHTTP(route, method, status string, seconds float64) {
	httpDuration.WithLabelValues(route, method, status).Observe(seconds)
}
