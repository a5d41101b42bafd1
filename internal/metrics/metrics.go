package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotdesk",
			Name:      "booking_requests_total",
			Help:      "Count of booking requests by outcome.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotdesk",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Booking request outcomes.
const (
	ResultCreated      = "created"
	ResultOverlap      = "overlap"
	ResultInverted     = "inverted"
	ResultZeroLength   = "zero_length"
	ResultInvalid      = "invalid"
	ResultDeskNotFound = "desk_not_found"
	ResultError        = "error"
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingRequests, httpRequests, httpDuration)
	})
}

func IncBookingRequest(result string) {
	bookingRequests.WithLabelValues(result).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
