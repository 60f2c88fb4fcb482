package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotbook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created by payment mode.",
		},
		[]string{"mode"},
	)

	bookingsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_deleted_total",
			Help:      "Bookings deleted by scope (one, all, package).",
		},
		[]string{"scope"},
	)

	paymentVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verification outcomes.",
		},
		[]string{"result"},
	)

	submissionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_transitions_total",
			Help:      "Booking submission state transitions.",
		},
		[]string{"from", "to"},
	)

	ordersAbandoned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_abandoned_total",
			Help:      "Unpaid orders marked abandoned by the sweeper.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingsDeleted,
			paymentVerifications,
			submissionTransitions,
			ordersAbandoned,
		)
	})
}

func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingCreated(mode string) {
	bookingsCreated.WithLabelValues(mode).Inc()
}

func AddBookingsDeleted(scope string, n int64) {
	if n <= 0 {
		return
	}
	bookingsDeleted.WithLabelValues(scope).Add(float64(n))
}

func IncVerification(result string) {
	paymentVerifications.WithLabelValues(result).Inc()
}

func IncTransition(from, to string) {
	submissionTransitions.WithLabelValues(from, to).Inc()
}

func AddOrdersAbandoned(n int64) {
	if n <= 0 {
		return
	}
	ordersAbandoned.Add(float64(n))
}
