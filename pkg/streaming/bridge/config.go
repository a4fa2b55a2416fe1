package bridge

import (
	"time"

	"github.com/vnykmshr/sqlflow/pkg/metrics"
)

// Config holds the consumer's timing budget and lifecycle options.
type Config struct {
	// PollTimeout bounds the short queue poll in HasNext.
	PollTimeout time.Duration

	// WaitTimeout bounds the wait on the producer task after an empty poll.
	WaitTimeout time.Duration

	// DrainWait is how long ForEachRemaining lets the producer get ahead
	// between drains.
	DrainWait time.Duration

	// CancelOnClose cancels a still running producer when the iterator is
	// closed. When false the producer runs to completion and its rows are
	// discarded.
	CancelOnClose bool

	// Name labels the iterator's metrics.
	Name string

	// Metrics configures consumer metrics. Disabled by default.
	Metrics metrics.Config
}

// DefaultConfig returns a 10ms poll, a 100ms producer wait, a 10ms drain
// wait and cancel-on-close.
func DefaultConfig() Config {
	return Config{
		PollTimeout:   10 * time.Millisecond,
		WaitTimeout:   100 * time.Millisecond,
		DrainWait:     10 * time.Millisecond,
		CancelOnClose: true,
		Name:          "default",
		Metrics:       metrics.Disabled(),
	}
}

// Option adjusts an iterator's Config.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithDetachedProducer leaves the producer running when the iterator is closed.
func WithDetachedProducer() Option {
	return func(c *Config) { c.CancelOnClose = false }
}

// WithTimings overrides the poll, producer wait and drain wait durations.
func WithTimings(poll, wait, drain time.Duration) Option {
	return func(c *Config) {
		c.PollTimeout = poll
		c.WaitTimeout = wait
		c.DrainWait = drain
	}
}

// WithMetrics reports consumed rows, queue depth and producer failures
// under name.
func WithMetrics(name string, cfg metrics.Config) Option {
	return func(c *Config) {
		c.Name = name
		c.Metrics = cfg
	}
}
