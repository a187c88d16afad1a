package api

import (
	"strconv"
	"time"

	"cofoundr/client"
	"cofoundr/state"
	"cofoundr/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service request and step outcome counters
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	stepResults *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cofoundr_client_requests_total",
				Help: "Total number of requests sent to the co-founder service",
			},
			[]string{"endpoint", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cofoundr_client_request_duration_seconds",
				Help:    "Duration of requests sent to the co-founder service",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),
		stepResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cofoundr_step_results_total",
				Help: "Total number of finished workflow steps by outcome",
			},
			[]string{"step", "status"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.stepResults)
	return m
}

// ObserveRequest implements client.Observer
func (m *Metrics) ObserveRequest(endpoint string, statusCode int, elapsed time.Duration, err error) {
	code := strconv.Itoa(statusCode)
	switch {
	case client.IsTimeout(err):
		code = "timeout"
	case statusCode == 0:
		code = "error"
	}
	m.requests.WithLabelValues(endpoint, code).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Track counts every step that reaches done or error in store
func (m *Metrics) Track(store *state.Store) (untrack func()) {
	return store.Subscribe(func(c state.Change) {
		if c.Field != state.FieldStatus {
			return
		}
		switch status := store.Status(c.Step); status {
		case types.StatusDone, types.StatusError:
			m.stepResults.WithLabelValues(string(c.Step), string(status)).Inc()
		}
	})
}
