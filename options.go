package dispatch

import (
	"github.com/google/uuid"
)

type config struct {
	name    string
	logger  Logger
	metrics *Metrics
	onPanic func(*PanicError)
	repanic bool
}

// Configures a Queue or Thread.
type Option func(*config)

// Sets the name used to label this queue in logs and metrics. By default a
// random UUID is used.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// Sets the logger. By default nothing is logged.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l == nil {
			l = NopLogger{}
		}
		c.logger = l
	}
}

// Records queue activity in the given collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// Sets a function which is called with every panic recovered from a task.
// It runs on the consumer goroutine, after the panic has been logged. A
// panic raised by fn itself is recovered and logged.
func WithPanicHandler(fn func(*PanicError)) Option {
	return func(c *config) {
		c.onPanic = fn
	}
}

// Re-raises task panics on the consumer goroutine instead of continuing
// with the rest of the batch. The unexecuted remainder of the batch is put
// back at the head of the queue, in order, before the panic propagates.
func WithRepanic() Option {
	return func(c *config) {
		c.repanic = true
	}
}

func newConfig(opts []Option) config {
	c := config{logger: NopLogger{}}
	for _, opt := range opts {
		opt(&c)
	}
	if c.name == "" {
		c.name = uuid.New().String()
	}
	return c
}
