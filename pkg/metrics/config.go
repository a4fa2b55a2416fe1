package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, DefaultRegistry is used.
	Registry prometheus.Registerer
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Registry: nil,
	}
}

// Disabled returns a configuration that turns metrics off.
func Disabled() Config {
	return Config{}
}
