// Package metrics provides observability for the application lifecycle
// module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks submission volume, status update volume, and the
// application-number collision retry path.
type Metrics struct {
	Submissions      prometheus.Counter
	StatusUpdates    prometheus.Counter
	NumberCollisions prometheus.Counter
	SubmitDuration   prometheus.Histogram
}

// New creates a Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "egram_applications_submitted_total",
			Help: "Total number of applications submitted",
		}),
		StatusUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "egram_application_status_updates_total",
			Help: "Total number of application status updates",
		}),
		NumberCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "egram_application_number_collisions_total",
			Help: "Application number collisions that triggered a regeneration retry",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "egram_application_submit_duration_seconds",
			Help:    "Duration of application submissions including document storage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveSubmit records the duration of a submission.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
