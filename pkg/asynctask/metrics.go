package asynctask

import "github.com/prometheus/client_golang/prometheus"

// metricsRecorder wraps the Prometheus collectors a Manager exposes. Its
// methods are safe to call without checking for a nil Manager since
// NewManager always installs one.
type metricsRecorder struct {
	liveTasks *prometheus.GaugeVec
	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
	cleared   *prometheus.CounterVec
}

func newMetricsRecorder() *metricsRecorder {
	return &metricsRecorder{
		liveTasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "asynctask",
			Name:      "live_tasks",
			Help:      "Number of tasks currently registered, by kind.",
		}, []string{"kind"}),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asynctask",
			Name:      "tasks_started_total",
			Help:      "Total tasks registered, by kind.",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asynctask",
			Name:      "tasks_completed_total",
			Help:      "Total tasks that completed naturally, by kind.",
		}, []string{"kind"}),
		cleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asynctask",
			Name:      "tasks_cleared_total",
			Help:      "Total tasks cancelled via clearAsync, by kind.",
		}, []string{"kind"}),
	}
}

func (r *metricsRecorder) observeStart(kind Kind) {
	r.liveTasks.WithLabelValues(string(kind)).Inc()
	r.started.WithLabelValues(string(kind)).Inc()
}

func (r *metricsRecorder) observeComplete(kind Kind) {
	r.liveTasks.WithLabelValues(string(kind)).Dec()
	r.completed.WithLabelValues(string(kind)).Inc()
}

func (r *metricsRecorder) observeClear(kind Kind) {
	r.liveTasks.WithLabelValues(string(kind)).Dec()
	r.cleared.WithLabelValues(string(kind)).Inc()
}

// Collectors returns m's Prometheus collectors, ready to hand to
// prometheus.MustRegister or a controller-runtime metrics.Registry.
func (m *Manager) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.metrics.liveTasks,
		m.metrics.started,
		m.metrics.completed,
		m.metrics.cleared,
	}
}
