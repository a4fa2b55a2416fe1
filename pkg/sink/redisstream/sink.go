package redisstream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	ctxutil "github.com/vnykmshr/sqlflow/pkg/common/context"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/common/validation"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

const module = "redisstream"

// Source is a row stream that can be drained in bulk. *bridge.Iterator of
// *result.Row satisfies it.
type Source interface {
	ForEachRemaining(ctx context.Context, action func(*result.Row) error) error
}

// Sink appends rows to a Redis stream.
type Sink struct {
	cfg      Config
	name     string
	logger   *slog.Logger
	registry *metrics.Registry
}

// New validates cfg and creates a Sink. It does not contact Redis.
func New(cfg Config) (*Sink, error) {
	if err := validation.First(
		validation.ValidateNotNil(module, "Client", cfg.Client),
		validation.ValidateNotEmpty(module, "Stream", cfg.Stream),
		validation.ValidatePositive(module, "BatchSize", cfg.BatchSize),
	); err != nil {
		return nil, err
	}
	if cfg.MaxLen < 0 {
		return nil, sferrors.NewValidationError(module, "MaxLen", cfg.MaxLen, "cannot be negative").
			WithHint("use 0 for an untrimmed stream")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig(nil, "").Timeout
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Stream
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{
		cfg:      cfg,
		name:     name,
		logger:   logger.With("sink", name),
		registry: metrics.FromConfig(cfg.Metrics),
	}, nil
}

// Drain consumes src and appends every row to the stream. It returns the
// number of rows Redis acknowledged. A source failure stops the drain after
// the rows already received are flushed.
func (s *Sink) Drain(ctx context.Context, src Source) (int, error) {
	pipe := s.cfg.Client.Pipeline()
	written := 0

	srcErr := src.ForEachRemaining(ctx, func(row *result.Row) error {
		s.add(ctx, pipe, row)
		if pipe.Len() < s.cfg.BatchSize {
			return nil
		}
		n, err := s.flush(ctx, pipe)
		written += n
		return err
	})

	n, err := s.flush(ctx, pipe)
	written += n
	if srcErr != nil {
		return written, srcErr
	}
	return written, err
}

// Write appends rows to the stream in batches.
func (s *Sink) Write(ctx context.Context, rows ...*result.Row) (int, error) {
	pipe := s.cfg.Client.Pipeline()
	written := 0
	for _, row := range rows {
		s.add(ctx, pipe, row)
		if pipe.Len() >= s.cfg.BatchSize {
			n, err := s.flush(ctx, pipe)
			written += n
			if err != nil {
				return written, err
			}
		}
	}
	n, err := s.flush(ctx, pipe)
	return written + n, err
}

// add queues row. Rows whose columns are all NULL have no fields and are
// skipped, since XADD needs at least one.
func (s *Sink) add(ctx context.Context, pipe redis.Pipeliner, row *result.Row) {
	fields := Fields(row)
	if len(fields) == 0 {
		s.logger.Debug("skipping empty row", "stream", s.cfg.Stream)
		return
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Stream,
		MaxLen: s.cfg.MaxLen,
		Approx: s.cfg.MaxLen > 0,
		Values: fields,
	})
}

// flush executes the queued commands and returns how many succeeded.
func (s *Sink) flush(ctx context.Context, pipe redis.Pipeliner) (int, error) {
	queued := pipe.Len()
	if queued == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmds, err := pipe.Exec(ctx)
	// A pipeline that never reached Redis leaves its commands without an
	// error; only an entry ID proves the row was appended.
	written := 0
	for _, cmd := range cmds {
		if id, ok := cmd.(*redis.StringCmd); ok && id.Err() == nil && id.Val() != "" {
			written++
		}
	}
	if s.registry != nil && written > 0 {
		s.registry.SinkRowsWritten.WithLabelValues(s.name).Add(float64(written))
	}
	if err != nil {
		if ctxutil.IsTimedOut(ctx) {
			err = fmt.Errorf("flush timed out after %v: %w", s.cfg.Timeout, err)
		}
		s.logger.Warn("stream append failed", "stream", s.cfg.Stream, "queued", queued, "written", written, "error", err)
		return written, sferrors.Wrapf(sferrors.KindExecute, module, "flush", err, "stream %s", s.cfg.Stream)
	}
	s.logger.Debug("stream append", "stream", s.cfg.Stream, "rows", written)
	return written, nil
}

// Fields maps a row to stream entry fields: column name to the value's
// string form. NULL columns are omitted and unnamed columns use their
// 1-based position. A name already taken by an earlier column, as in
// "a.id, b.id", gets its position appended ("id_2").
func Fields(row *result.Row) map[string]any {
	key := row.Key()
	fields := make(map[string]any, row.Len())
	seen := make(map[string]bool, row.Len())
	for i := 0; i < row.Len(); i++ {
		name := key.Name(i)
		switch {
		case name == "":
			name = strconv.Itoa(i + 1)
		case seen[name]:
			name = name + "_" + strconv.Itoa(i+1)
		}
		seen[key.Name(i)] = true

		v := row.At(i)
		if v.IsNull() {
			continue
		}
		if b, ok := v.Bytes(); ok {
			fields[name] = b
			continue
		}
		fields[name] = v.String()
	}
	return fields
}
