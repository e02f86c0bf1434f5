package container

import (
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Option configures a root container created with New.
// Child containers inherit their parent's configuration.
type Option func(*options)

type options struct {
	logger   *logrus.Logger
	registry metrics.Registry
}

// WithLogger routes the container's debug logging through logger.
// Defaults to logrus.StandardLogger().
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records resolution instruments into registry.
// Defaults to a fresh metrics.NewRegistry().
func WithMetrics(registry metrics.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// instruments are the go-metrics handles one container records into.
type instruments struct {
	calls   metrics.Counter
	errors  metrics.Counter
	hits    metrics.Counter
	builds  metrics.Counter
	latency metrics.Timer
}

func newInstruments(r metrics.Registry) *instruments {
	return &instruments{
		calls:   metrics.GetOrRegisterCounter("resolve.calls", r),
		errors:  metrics.GetOrRegisterCounter("resolve.errors", r),
		hits:    metrics.GetOrRegisterCounter("singleton.hits", r),
		builds:  metrics.GetOrRegisterCounter("factory.builds", r),
		latency: metrics.GetOrRegisterTimer("factory.latency", r),
	}
}
