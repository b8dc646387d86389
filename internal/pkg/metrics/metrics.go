package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "car_rental"

var (
	once sync.Once

	bookingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requests_total",
			Help:      "Count of booking requests by result.",
		},
		[]string{"result"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of booking status transitions.",
		},
		[]string{"from", "to"},
	)

	availabilityConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_conflicts_total",
			Help:      "Count of rejected reservations by the layer that detected the overlap.",
		},
		[]string{"source"},
	)

	outboxPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_jobs_total",
			Help:      "Count of outbox jobs handled by the relay, by outcome.",
		},
		[]string{"outcome"},
	)

	lifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Count of bookings moved by the lifecycle sweeper, by target status.",
		},
		[]string{"to"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(bookingRequests, bookingTransitions, availabilityConflicts, outboxPublished, lifecycleTransitions, httpRequestDuration)
	})
}

const (
	ResultCreated  = "created"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultReplayed = "replayed"
	ResultError    = "error"

	SourceIndex    = "index"
	SourceDatabase = "database"
)

func IncBookingRequest(result string) {
	bookingRequests.WithLabelValues(result).Inc()
}

func IncTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

func IncConflict(source string) {
	availabilityConflicts.WithLabelValues(source).Inc()
}

func IncOutbox(outcome string) {
	outboxPublished.WithLabelValues(outcome).Inc()
}

func IncSweep(to string, n int) {
	if n > 0 {
		lifecycleTransitions.WithLabelValues(to).Add(float64(n))
	}
}

func ObserveHTTPRequest(method, route, status string, seconds float64) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
