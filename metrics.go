package dispatch

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collectors describing queue activity, labelled by queue name.
// A nil *Metrics records nothing.
type Metrics struct {
	dispatched *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	executed   *prometheus.CounterVec
	panics     *prometheus.CounterVec
	depth      *prometheus.GaugeVec
	batchSize  *prometheus.HistogramVec
}

// Creates the queue collectors and registers them with reg, or with the
// default registerer if reg is nil. Collectors which are already registered
// under the same names are reused, so several callers may share a registry.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "dispatch"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"queue"}

	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Total number of tasks accepted by the queue.",
		}, labels),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_rejected_total",
			Help:      "Total number of tasks rejected because the queue was stopped.",
		}, labels),
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_executed_total",
			Help:      "Total number of tasks invoked.",
		}, labels),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_panics_total",
			Help:      "Total number of tasks which panicked.",
		}, labels),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of tasks waiting in the queue.",
		}, labels),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of tasks taken from the queue per drain step.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, labels),
	}

	var err error
	if m.dispatched, err = register(reg, m.dispatched); err != nil {
		return nil, err
	}
	if m.rejected, err = register(reg, m.rejected); err != nil {
		return nil, err
	}
	if m.executed, err = register(reg, m.executed); err != nil {
		return nil, err
	}
	if m.panics, err = register(reg, m.panics); err != nil {
		return nil, err
	}
	if m.depth, err = register(reg, m.depth); err != nil {
		return nil, err
	}
	if m.batchSize, err = register(reg, m.batchSize); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("collector type mismatch for %T", c)
		}
		return existing, nil
	}
	return c, err
}

func (m *Metrics) taskDispatched(queue string, depth int) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(queue).Inc()
	m.depth.WithLabelValues(queue).Set(float64(depth))
}

func (m *Metrics) taskRejected(queue string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(queue).Inc()
}

func (m *Metrics) batchTaken(queue string, n int) {
	if m == nil {
		return
	}
	m.depth.WithLabelValues(queue).Set(0)
	if n > 0 {
		m.batchSize.WithLabelValues(queue).Observe(float64(n))
	}
}

func (m *Metrics) setDepth(queue string, depth int) {
	if m == nil {
		return
	}
	m.depth.WithLabelValues(queue).Set(float64(depth))
}

func (m *Metrics) taskExecuted(queue string, panicked bool) {
	if m == nil {
		return
	}
	m.executed.WithLabelValues(queue).Inc()
	if panicked {
		m.panics.WithLabelValues(queue).Inc()
	}
}
