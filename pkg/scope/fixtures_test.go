package scope

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/vnykmshr/sqlflow/internal/testutil/fakedb"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixture is an executor over a fake database that remembers every
// statement it created.
type fixture struct {
	db   *fakedb.Provider
	exec *Executor

	mu    sync.Mutex
	stmts []*fakedb.Stmt
}

func newFixture(t *testing.T, batching bool, cfg Config) *fixture {
	t.Helper()

	f := &fixture{db: &fakedb.Provider{Batching: batching}}
	if cfg.Name == "" {
		cfg.Name = "test"
	}
	if cfg.Logger == nil {
		cfg.Logger = quiet
	}

	exec, err := NewWithConfig(ConnectionProviderFunc(func(ctx context.Context) (Connection, error) {
		conn, err := f.db.Open(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	f.exec = exec
	t.Cleanup(func() { <-exec.Shutdown() })
	return f
}

// statements returns a provider of fake statements whose queries read
// cursor.
func (f *fixture) statements(cursor *fakedb.Cursor) StatementProvider[*fakedb.Stmt] {
	return func(_ context.Context, conn Connection) (*fakedb.Stmt, error) {
		c, ok := Unwrap[*fakedb.Conn](conn)
		if !ok {
			c = fakedb.NewConn(false)
		}
		stmt := fakedb.NewStmt(c)
		stmt.Cursor = cursor
		f.mu.Lock()
		f.stmts = append(f.stmts, stmt)
		f.mu.Unlock()
		return stmt, nil
	}
}

func (f *fixture) lastStmt(t *testing.T) *fakedb.Stmt {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.stmts) == 0 {
		t.Fatal("no statement was created")
	}
	return f.stmts[len(f.stmts)-1]
}

func (f *fixture) lastConn(t *testing.T) *fakedb.Conn {
	t.Helper()
	conns := f.db.Conns()
	if len(conns) == 0 {
		t.Fatal("no connection was opened")
	}
	return conns[len(conns)-1]
}
