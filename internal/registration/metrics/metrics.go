package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	Confirmed        prometheus.Counter
	Waitlisted       prometheus.Counter
	Cancelled        prometheus.Counter
	Promoted         prometheus.Counter
	RegisterDuration prometheus.Histogram
}

// New creates a new Metrics instance with all registration metrics
// registered.
func New() *Metrics {
	return &Metrics{
		Confirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_registrations_confirmed_total",
			Help: "Total number of registrations confirmed into a seat",
		}),
		Waitlisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_registrations_waitlisted_total",
			Help: "Total number of registrations queued on a waitlist",
		}),
		Cancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_registrations_cancelled_total",
			Help: "Total number of registrations cancelled",
		}),
		Promoted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_registrations_promoted_total",
			Help: "Total number of waitlisted registrations promoted into a freed seat",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatherly_register_duration_seconds",
			Help:    "Duration of register operations (capacity critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRegister records the duration of a register operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
