package redisstream

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/sqlflow/pkg/metrics"
)

// Config holds configuration for a Sink.
type Config struct {
	// Client is the Redis connection rows are written through.
	Client redis.UniversalClient

	// Stream is the key of the target stream.
	Stream string

	// MaxLen approximately caps the stream length on every XADD. Zero
	// leaves the stream untrimmed.
	MaxLen int64

	// BatchSize is the number of XADD commands pipelined per round trip.
	BatchSize int

	// Timeout bounds each pipeline flush.
	Timeout time.Duration

	// Name labels metrics and log records. Defaults to Stream.
	Name string

	Logger  *slog.Logger
	Metrics metrics.Config
}

// DefaultConfig returns a configuration writing to stream with batches of
// 100 rows.
func DefaultConfig(client redis.UniversalClient, stream string) Config {
	return Config{
		Client:    client,
		Stream:    stream,
		BatchSize: 100,
		Timeout:   5 * time.Second,
		Metrics:   metrics.Disabled(),
	}
}
