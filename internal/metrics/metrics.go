package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labreserve",
			Name:      "reservation_ops_total",
			Help:      "Count of reservation operations by engine and outcome.",
		},
		[]string{"engine", "status", "reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labreserve",
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)

	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "labreserve",
			Name:      "sessions_created_total",
			Help:      "Count of actor sessions established.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationOps, httpRequests, sessionsCreated)
	})
}

func IncReservationOp(engine, status, reason string) {
	reservationOps.WithLabelValues(engine, status, reason).Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncSessionCreated() {
	sessionsCreated.Inc()
}
