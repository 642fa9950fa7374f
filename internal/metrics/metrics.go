package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts all HTTP requests processed by the service.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled by the service.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration measures how long HTTP handlers take to respond.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ProviderOperations tracks operations performed by cache providers.
	ProviderOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_provider_operations_total",
			Help: "Count of cache provider operations.",
		},
		[]string{"provider", "operation", "status"},
	)

	// ProviderOperationDuration measures how long cache provider
	// operations take to complete.
	ProviderOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_provider_operation_duration_seconds",
			Help:    "Histogram of latencies for cache provider operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	// ExternalRequests counts calls to the remote universe API by resource
	// (character, location, episode) and outcome.
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_requests_total",
			Help: "Count of requests to the remote API.",
		},
		[]string{"resource", "status"},
	)

	// ExternalRequestDuration measures duration of calls to the remote API.
	ExternalRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_request_duration_seconds",
			Help:    "Histogram of remote API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// CacheLayerHits counts how many values were found on each cache layer.
	CacheLayerHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_layer_hits_total",
			Help: "Number of cache hits on each layer.",
		},
		[]string{"level"},
	)

	// CacheLayerMisses counts misses per cache layer.
	CacheLayerMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_layer_misses_total",
			Help: "Number of cache misses on each layer.",
		},
		[]string{"level"},
	)

	// CachePopulations counts get-or-populate misses by producer outcome.
	CachePopulations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_populations_total",
			Help: "Number of cache misses resolved by calling the producer.",
		},
		[]string{"status"},
	)

	// AggregationFallbacks counts aggregation calls answered with an empty result
	// because of an upstream failure.
	AggregationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_fallbacks_total",
			Help: "Number of aggregation operations that degraded to an empty result.",
		},
		[]string{"operation"},
	)
)

// Register registers all metrics in the default registry.
func Register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderOperations,
		ProviderOperationDuration,
		ExternalRequests,
		ExternalRequestDuration,
		CacheLayerHits,
		CacheLayerMisses,
		CachePopulations,
		AggregationFallbacks,
	)
}

// RecordProviderOp increments ProviderOperations with result status.
func RecordProviderOp(provider, operation string, err error) {
	ProviderOperations.WithLabelValues(provider, operation, status(err)).Inc()
}

// RecordProviderLatency records the duration of a provider operation.
func RecordProviderLatency(provider, operation string, durationSeconds float64) {
	ProviderOperationDuration.WithLabelValues(provider, operation).Observe(durationSeconds)
}

// RecordExternalRequest records metrics for a remote API call.
func RecordExternalRequest(resource string, err error, durationSeconds float64) {
	ExternalRequests.WithLabelValues(resource, status(err)).Inc()
	ExternalRequestDuration.WithLabelValues(resource).Observe(durationSeconds)
}

// RecordPopulate records the outcome of a cache producer call.
func RecordPopulate(err error) {
	CachePopulations.WithLabelValues(status(err)).Inc()
}

// RecordFallback records an aggregation operation that returned its empty result.
func RecordFallback(operation string) {
	AggregationFallbacks.WithLabelValues(operation).Inc()
}

// RecordCacheLayer records hits/misses for a cache layer.
func RecordCacheLayer(level int, hits, misses int) {
	l := strconv.Itoa(level)
	CacheLayerHits.WithLabelValues(l).Add(float64(hits))
	CacheLayerMisses.WithLabelValues(l).Add(float64(misses))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
