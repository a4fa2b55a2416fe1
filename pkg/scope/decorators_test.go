package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/vnykmshr/sqlflow/internal/testutil"
	"github.com/vnykmshr/sqlflow/internal/testutil/fakedb"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

func TestNoCloseConnection(t *testing.T) {
	conn := fakedb.NewConn(true)
	shared := NewNoCloseConnection(conn)

	ok, err := shared.SupportsBatching(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)

	testutil.AssertNoError(t, shared.Close())
	if !shared.Closed() {
		t.Error("Closed() should report the suppressed close")
	}
	if conn.Closed() {
		t.Error("the delegate must stay open")
	}

	if _, err := shared.SupportsBatching(context.Background()); !errors.Is(err, sferrors.ErrClosed) {
		t.Errorf("SupportsBatching() after Close = %v, want ErrClosed", err)
	}
	if shared.Unwrap() != Connection(conn) {
		t.Error("Unwrap() should return the delegate")
	}
}

func TestUnwrap(t *testing.T) {
	conn := fakedb.NewConn(false)
	chain := NewNoCloseConnection(NewNoCloseConnection(conn))

	got, ok := Unwrap[*fakedb.Conn](chain)
	if !ok || got != conn {
		t.Error("Unwrap should find the innermost connection")
	}

	outer, ok := Unwrap[*NoCloseConnection](chain)
	if !ok || outer != chain {
		t.Error("Unwrap should return the first match")
	}

	if _, ok := Unwrap[interface{ Flush() error }](chain); ok {
		t.Error("Unwrap matched a capability nothing in the chain has")
	}
	if _, ok := Unwrap[*fakedb.Conn](nil); ok {
		t.Error("Unwrap(nil) should find nothing")
	}
}

func TestShared(t *testing.T) {
	conn := fakedb.NewConn(false)
	exec, err := NewWithConfig(Shared(conn), Config{Name: "shared", Logger: quiet})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	for i := 0; i < 3; i++ {
		_, err := WithConnection(context.Background(), exec, func(context.Context, Connection) (int, error) {
			return i, nil
		}).Get()
		testutil.AssertNoError(t, err)
	}

	if conn.Closed() {
		t.Error("scopes over a shared connection must not close it")
	}
}
