package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance module.
type Metrics struct {
	CheckIns  prometheus.Counter
	Undos     prometheus.Counter
	Snapshots prometheus.Counter
}

// New creates a new Metrics instance with all attendance metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_checkins_total",
			Help: "Total number of successful check-in operations",
		}),
		Undos: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_checkin_undos_total",
			Help: "Total number of successful check-in undo operations",
		}),
		Snapshots: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatherly_occupancy_snapshots_total",
			Help: "Total number of occupancy snapshots pushed to subscribers",
		}),
	}
}
