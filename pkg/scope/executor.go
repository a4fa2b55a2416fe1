package scope

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/common/validation"
	"github.com/vnykmshr/sqlflow/pkg/future"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/scheduling/workerpool"
)

const module = "scope"

// Executor runs resource-scoped work on a worker pool. Each scope opens a
// connection, configures it, hands it to the caller's work and closes it on
// every exit path.
type Executor struct {
	name      string
	conns     ConnectionProvider
	configure Configurator[Connection]
	pool      workerpool.Pool
	owned     *workerpool.Provider
	logger    *slog.Logger
	metrics   metrics.Config
	registry  *metrics.Registry
}

// New creates an executor over conns with the default configuration.
func New(conns ConnectionProvider) (*Executor, error) {
	return NewWithConfig(conns, DefaultConfig())
}

// NewWithConfig creates an executor over conns.
func NewWithConfig(conns ConnectionProvider, cfg Config) (*Executor, error) {
	if err := validation.First(
		validation.ValidateNotNil(module, "ConnectionProvider", conns),
		validation.ValidateNotEmpty(module, "Name", cfg.Name),
	); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{
		name:      cfg.Name,
		conns:     conns,
		configure: cfg.ConfigureConnection,
		pool:      cfg.Pool,
		logger:    logger.With("executor", cfg.Name),
		metrics:   cfg.Metrics,
		registry:  metrics.FromConfig(cfg.Metrics),
	}

	if e.pool == nil {
		e.owned = workerpool.NewProvider(func() workerpool.Pool {
			return workerpool.NewWithConfig(workerpool.Config{Logger: logger})
		})
		e.pool = workerpool.NewWithMetrics(e.owned, cfg.Name, cfg.Metrics)
	}

	return e, nil
}

// Name returns the executor's name.
func (e *Executor) Name() string {
	return e.name
}

// Pool returns the pool scoped work is submitted to.
func (e *Executor) Pool() workerpool.Pool {
	return e.pool
}

// Shutdown shuts down the executor's own pool. An injected pool is left to
// its owner. An owned pool is recreated by the next submission.
func (e *Executor) Shutdown() <-chan struct{} {
	if e.owned == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return e.owned.Shutdown()
}

// session is one open scope.
type session struct {
	id     string
	op     string
	conn   Connection
	logger *slog.Logger
	exec   *Executor
}

// Run opens a scope on the calling goroutine and passes its connection to
// fn. The connection is closed when fn returns or panics; a panic is
// returned as a KindExecute error. Use it from work that already runs on a
// worker, such as scheduled jobs.
func (e *Executor) Run(ctx context.Context, fn func(ctx context.Context, conn Connection) error) error {
	if fn == nil {
		return sferrors.NewValidationError(module, "fn", nil, "cannot be nil")
	}
	return e.run(ctx, "Run", func(ctx context.Context, s *session) error {
		return fn(ctx, s.conn)
	})
}

func (e *Executor) run(ctx context.Context, op string, fn func(ctx context.Context, s *session) error) (err error) {
	start := time.Now()
	s := &session{
		id:   uuid.NewString(),
		op:   op,
		exec: e,
	}
	s.logger = e.logger.With("scope_id", s.id, "op", op)

	if e.registry != nil {
		e.registry.ScopesStarted.WithLabelValues(e.name).Inc()
	}
	defer func() {
		if r := recover(); r != nil {
			err = sferrors.Wrapf(sferrors.KindExecute, module, op, fmt.Errorf("panic: %v", r), "callback panicked")
		}
		e.finish(s, start, err)
	}()

	conn, err := e.open(ctx, op)
	if err != nil {
		return err
	}
	s.conn = conn
	defer s.release("connection", conn)

	s.logger.Debug("scope opened")
	return classify(op, fn(ctx, s))
}

// open acquires and configures a connection.
func (e *Executor) open(ctx context.Context, op string) (Connection, error) {
	conn, err := e.conns.NewConnection(ctx)
	if err != nil {
		return nil, sferrors.Wrapf(sferrors.KindAcquire, module, op, err, "opening connection")
	}
	if e.configure != nil {
		if err := e.configure(ctx, conn); err != nil {
			e.closeQuietly(op, "connection", conn)
			return nil, sferrors.Wrapf(sferrors.KindConfigure, module, op, err, "configuring connection")
		}
	}
	return conn, nil
}

func (e *Executor) finish(s *session, start time.Time, err error) {
	elapsed := time.Since(start)
	if e.registry != nil {
		e.registry.ScopeDuration.WithLabelValues(e.name).Observe(elapsed.Seconds())
		if err != nil {
			e.registry.ScopesFailed.WithLabelValues(e.name, sferrors.KindOf(err).String()).Inc()
		}
	}
	if err != nil {
		s.logger.Debug("scope failed", "kind", sferrors.KindOf(err).String(), "duration", elapsed, "error", err)
		return
	}
	s.logger.Debug("scope closed", "duration", elapsed)
}

// release closes a scoped resource. Close failures are logged and never
// replace the scope's outcome.
func (s *session) release(resource string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		s.logger.Info("close failed", "resource", resource, "error", err)
	}
}

// classify keeps errors that already carry a Kind and marks the rest as
// execution failures.
func classify(op string, err error) error {
	if err == nil || sferrors.KindOf(err) != sferrors.KindUnknown {
		return err
	}
	return sferrors.Wrap(sferrors.KindExecute, module, op, err)
}

// withStatement creates and configures a statement on the session's
// connection, passes it to fn and closes it before returning.
func withStatement[S Statement](ctx context.Context, s *session, provide StatementProvider[S], configure Configurator[S], fn func(stmt S) error) error {
	stmt, err := provide(ctx, s.conn)
	if err != nil {
		return sferrors.Wrapf(sferrors.KindAcquire, module, s.op, err, "creating statement")
	}
	defer s.release("statement", stmt)

	if configure != nil {
		if err := configure(ctx, stmt); err != nil {
			return sferrors.Wrapf(sferrors.KindConfigure, module, s.op, err, "configuring statement")
		}
	}
	return fn(stmt)
}

// Connection opens and configures a connection outside any scope. The
// caller must close it.
func (e *Executor) Connection(ctx context.Context) (Connection, error) {
	return e.open(ctx, "Connection")
}

// Job returns a pool task that runs fn in a scope.
func (e *Executor) Job(fn func(ctx context.Context, conn Connection) error) workerpool.Task {
	return workerpool.TaskFunc(func(ctx context.Context) error {
		return e.Run(ctx, fn)
	})
}

// Submit runs a statement scope on the executor's pool: it opens a
// connection, creates a statement with provide, applies configure, calls
// callback and then closes the statement and the connection, in that order,
// whatever the outcome.
//
// Failures to open or create are KindAcquire, configuration failures are
// KindConfigure and callback failures are KindExecute unless the callback
// returned an error that already has a Kind.
func Submit[S Statement, T any](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], callback func(ctx context.Context, stmt S) (T, error)) future.Future[T] {
	if provide == nil || callback == nil {
		return future.Failed[T](sferrors.NewValidationError(module, "callback", nil, "statement provider and callback cannot be nil"))
	}
	return submit(ctx, e, "Submit", provide, configure, callback)
}

func submit[S Statement, T any](ctx context.Context, e *Executor, op string, provide StatementProvider[S], configure Configurator[S], callback func(ctx context.Context, stmt S) (T, error)) future.Future[T] {
	return future.Go(ctx, e.pool, func(ctx context.Context) (T, error) {
		var out T
		err := e.run(ctx, op, func(ctx context.Context, s *session) error {
			return withStatement(ctx, s, provide, configure, func(stmt S) error {
				v, err := callback(ctx, stmt)
				if err != nil {
					return err
				}
				out = v
				return nil
			})
		})
		return out, err
	})
}

// WithConnection runs callback in a connection scope on the executor's pool.
func WithConnection[T any](ctx context.Context, e *Executor, callback func(ctx context.Context, conn Connection) (T, error)) future.Future[T] {
	if callback == nil {
		return future.Failed[T](sferrors.NewValidationError(module, "callback", nil, "cannot be nil"))
	}
	return future.Go(ctx, e.pool, func(ctx context.Context) (T, error) {
		var out T
		err := e.run(ctx, "WithConnection", func(ctx context.Context, s *session) error {
			v, err := callback(ctx, s.conn)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
		return out, err
	})
}

// Unmanaged opens a connection and a configured statement on the calling
// goroutine without scoping them. The caller must close both. On failure
// nothing is left open.
func Unmanaged[S Statement](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S]) (S, Connection, error) {
	var zero S

	conn, err := e.open(ctx, "Unmanaged")
	if err != nil {
		return zero, nil, err
	}

	stmt, err := provide(ctx, conn)
	if err != nil {
		e.closeQuietly("Unmanaged", "connection", conn)
		return zero, nil, sferrors.Wrapf(sferrors.KindAcquire, module, "Unmanaged", err, "creating statement")
	}
	if configure != nil {
		if err := configure(ctx, stmt); err != nil {
			e.closeQuietly("Unmanaged", "statement", stmt)
			e.closeQuietly("Unmanaged", "connection", conn)
			return zero, nil, sferrors.Wrapf(sferrors.KindConfigure, module, "Unmanaged", err, "configuring statement")
		}
	}
	return stmt, conn, nil
}

func (e *Executor) closeQuietly(op, resource string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		e.logger.Info("close failed", "op", op, "resource", resource, "error", err)
	}
}

func (e *Executor) String() string {
	return fmt.Sprintf("scope.Executor(%s)", e.name)
}
