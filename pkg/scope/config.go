package scope

import (
	"log/slog"

	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/scheduling/workerpool"
)

// Config holds executor configuration.
type Config struct {
	// Name identifies the executor in logs and metrics.
	Name string

	// Pool runs scoped work. If nil, the executor owns a workerpool.Provider
	// of unbounded pools and shuts it down in Shutdown.
	Pool workerpool.Pool

	// ConfigureConnection runs on every connection the executor opens,
	// before any statement is created.
	ConfigureConnection Configurator[Connection]

	// Logger receives scope lifecycle records. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics configures scope, batch and stream metrics.
	Metrics metrics.Config
}

// DefaultConfig returns an executor named "default" with an owned
// unbounded pool and metrics disabled.
func DefaultConfig() Config {
	return Config{
		Name:    "default",
		Metrics: metrics.Disabled(),
	}
}
