package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicehub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servicehub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicehub_booking_transitions_total",
			Help: "Booking transition attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	BookingLockContentionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servicehub_booking_lock_contention_total",
			Help: "Transitions rejected because the booking lock was busy",
		},
	)

	BookingEventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicehub_booking_events_dispatched_total",
			Help: "Booking status events handed to the dispatcher",
		},
		[]string{"status"},
	)

	ListingProfileFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servicehub_listing_profile_fallbacks_total",
			Help: "Listing entries rendered with placeholder profile data",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTransition(action, outcome string) {
	BookingTransitionsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordLockContention() {
	BookingLockContentionTotal.Inc()
}

func RecordDispatch(status string) {
	BookingEventsDispatchedTotal.WithLabelValues(status).Inc()
}

func RecordProfileFallback() {
	ListingProfileFallbacksTotal.Inc()
}
