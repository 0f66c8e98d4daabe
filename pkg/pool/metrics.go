package pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors a Pool reports to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	submitted prometheus.Counter
	completed prometheus.Counter
	failed    prometheus.Counter
	queued    prometheus.Gauge
	busy      prometheus.Gauge
	duration  prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "tasks_submitted_total",
			Help:      "Number of tasks submitted to the worker pool.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "tasks_completed_total",
			Help:      "Number of tasks that ran to completion.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "tasks_failed_total",
			Help:      "Number of tasks that returned an error or panicked.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "queue_depth",
			Help:      "Jobs waiting in the shared queue.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "busy_workers",
			Help:      "Workers currently executing a task.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parsort",
			Subsystem: "pool",
			Name:      "task_duration_seconds",
			Help:      "Wall time spent in a task.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	for _, c := range []prometheus.Collector{m.submitted, m.completed, m.failed, m.queued, m.busy, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) taskSubmitted(depth int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.queued.Set(float64(depth))
}

func (m *Metrics) taskStarted(depth int) {
	if m == nil {
		return
	}
	m.busy.Inc()
	m.queued.Set(float64(depth))
}

func (m *Metrics) taskFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.busy.Dec()
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.failed.Inc()
		return
	}
	m.completed.Inc()
}
