package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	q := NewQueue(WithName("q"), WithMetrics(m))
	q.Dispatch(func() {})
	q.Dispatch(func() {})
	q.Dispatch(func() {
		panic("boom")
	})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.depth.WithLabelValues("q")))

	q.Stop()
	q.Dispatch(func() {})
	q.RunForever()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.dispatched.WithLabelValues("q")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("q")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.executed.WithLabelValues("q")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("q")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.depth.WithLabelValues("q")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_batch_size")
	assert.Contains(t, names, "test_tasks_dispatched_total")
}

func TestMetricsReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics("test", reg)
	require.NoError(t, err)
	second, err := NewMetrics("test", reg)
	require.NoError(t, err)

	NewQueue(WithName("a"), WithMetrics(first)).Dispatch(func() {})
	NewQueue(WithName("a"), WithMetrics(second)).Dispatch(func() {})
	assert.Equal(t, 2.0, testutil.ToFloat64(first.dispatched.WithLabelValues("a")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.taskDispatched("q", 1)
		m.taskRejected("q")
		m.batchTaken("q", 1)
		m.setDepth("q", 0)
		m.taskExecuted("q", true)
	})
}
