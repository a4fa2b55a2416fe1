package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/sqlflow/internal/testutil"
	"github.com/vnykmshr/sqlflow/internal/testutil/fakedb"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/future"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

// producer runs Produce over cursor on its own goroutine. The returned
// channel closes once the goroutine has returned.
func producer(cursor result.Cursor) (*future.Promise[int], *Queue[*result.Row], <-chan struct{}) {
	q := NewQueue[*result.Row]()
	p := future.NewPromise[int]()
	ctx, cancel := context.WithCancel(context.Background())
	p.OnCancel(cancel)

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		defer cancel()
		n, err := Produce(ctx, cursor, q)
		if err != nil {
			p.Fail(err)
			return
		}
		p.Complete(n)
	}()
	return p, q, exited
}

func ints(t *testing.T, row *result.Row, names ...string) []int64 {
	t.Helper()
	out := make([]int64, len(names))
	for i, name := range names {
		v, ok := row.Get(name)
		if !ok {
			t.Fatalf("row %v has no column %q", row, name)
		}
		out[i], _ = v.Int()
	}
	return out
}

func TestIteratorTwoRows(t *testing.T) {
	cols := []result.Column{
		{Name: "a", Type: result.TypeInt},
		{Name: "b", Type: result.TypeInt},
	}
	cursor := fakedb.NewCursor(cols, []any{int64(1), int64(2)}, []any{int64(3), int64(4)})
	p, q, exited := producer(cursor)
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q)
	defer it.Close()

	want := [][]int64{{1, 2}, {3, 4}}
	for i, w := range want {
		row, ok, err := it.Next(ctx)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Fatalf("row %d missing", i)
		}
		got := ints(t, row, "a", "b")
		if got[0] != w[0] || got[1] != w[1] {
			t.Errorf("row %d = %v, want %v", i, got, w)
		}
		byPos, _ := row.Lookup(0)
		byName, _ := row.Lookup("a")
		if !byPos.Equal(byName) {
			t.Errorf("row %d: position and name lookups disagree", i)
		}
	}

	ok, err := it.HasNext(ctx)
	testutil.AssertNoError(t, err)
	if ok {
		t.Error("HasNext() after the last row should be false")
	}

	_, ok, err = it.Next(ctx)
	testutil.AssertNoError(t, err)
	if ok {
		t.Error("Next() after exhaustion should report false")
	}
}

func TestIteratorHasNextIsIdempotent(t *testing.T) {
	p, q, exited := producer(fakedb.IntCursor(2, "id"))
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q)
	defer it.Close()

	for i := 0; i < 5; i++ {
		ok, err := it.HasNext(ctx)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Fatalf("HasNext() call %d = false", i)
		}
	}

	var ids []int64
	for row, err := range it.All(ctx) {
		testutil.AssertNoError(t, err)
		ids = append(ids, ints(t, row, "id")[0])
	}
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 10 {
		t.Errorf("ids = %v, want [0 10]", ids)
	}
}

func TestIteratorProducerFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	failing := func() *fakedb.Cursor {
		cursor := fakedb.IntCursor(5, "id")
		cursor.FailAt = 4
		cursor.Err = cause
		return cursor
	}

	tests := []struct {
		name    string
		consume func(ctx context.Context, it *Iterator[*result.Row]) (int, error)
	}{
		{
			name: "one by one",
			consume: func(ctx context.Context, it *Iterator[*result.Row]) (int, error) {
				n := 0
				for {
					_, ok, err := it.Next(ctx)
					if err != nil || !ok {
						return n, err
					}
					n++
				}
			},
		},
		{
			name: "bulk",
			consume: func(ctx context.Context, it *Iterator[*result.Row]) (int, error) {
				n := 0
				err := it.ForEachRemaining(ctx, func(*result.Row) error {
					n++
					return nil
				})
				return n, err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q, exited := producer(failing())
			defer func() { <-exited }()

			ctx, cancel := testutil.WithTimeout(t)
			defer cancel()

			it := New[*result.Row](p, q)
			defer it.Close()

			n, err := tt.consume(ctx, it)
			testutil.AssertEqual(t, n, 3)
			if !sferrors.IsKind(err, sferrors.KindProducer) {
				t.Fatalf("error = %v, want a producer error", err)
			}
			if sferrors.KindOf(err) != sferrors.KindRead {
				t.Errorf("innermost kind = %v, want read", sferrors.KindOf(err))
			}
			if !errors.Is(err, cause) {
				t.Error("producer error should wrap the cursor failure")
			}

			// the failure is sticky
			_, again := it.HasNext(ctx)
			if again != err {
				t.Errorf("second HasNext() = %v, want the same error", again)
			}
		})
	}
}

func TestIteratorBulkMatchesOneByOne(t *testing.T) {
	const rows = 200

	collect := func(bulk bool) []int64 {
		cursor := fakedb.IntCursor(rows, "id")
		p, q, exited := producer(cursor)
		defer func() { <-exited }()

		ctx, cancel := testutil.WithTimeout(t)
		defer cancel()

		it := New[*result.Row](p, q, WithTimings(time.Millisecond, 5*time.Millisecond, time.Millisecond))
		defer it.Close()

		var ids []int64
		if bulk {
			testutil.AssertNoError(t, it.ForEachRemaining(ctx, func(row *result.Row) error {
				ids = append(ids, ints(t, row, "id")[0])
				return nil
			}))
			return ids
		}
		for {
			row, ok, err := it.Next(ctx)
			testutil.AssertNoError(t, err)
			if !ok {
				return ids
			}
			ids = append(ids, ints(t, row, "id")[0])
		}
	}

	one, bulk := collect(false), collect(true)
	testutil.AssertEqual(t, len(one), rows)
	testutil.AssertEqual(t, len(bulk), rows)
	for i := range one {
		if one[i] != bulk[i] || one[i] != int64(i*10) {
			t.Fatalf("row %d: one-by-one %d, bulk %d", i, one[i], bulk[i])
		}
	}
}

func TestIteratorMixedConsumption(t *testing.T) {
	p, q, exited := producer(fakedb.IntCursor(6, "id"))
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q)
	defer it.Close()

	first, ok, err := it.Next(ctx)
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("first row missing")
	}
	testutil.AssertEqual(t, ints(t, first, "id")[0], int64(0))

	// HasNext caches the second row; the bulk path must deliver it first
	ok, err = it.HasNext(ctx)
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("second row missing")
	}

	var rest []int64
	testutil.AssertNoError(t, it.ForEachRemaining(ctx, func(row *result.Row) error {
		rest = append(rest, ints(t, row, "id")[0])
		return nil
	}))
	if len(rest) != 5 || rest[0] != 10 || rest[4] != 50 {
		t.Errorf("remaining ids = %v, want [10 20 30 40 50]", rest)
	}
}

func TestIteratorActionError(t *testing.T) {
	p, q, exited := producer(fakedb.IntCursor(10, "id"))
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q)
	defer it.Close()

	stop := errors.New("stop")
	seen := 0
	err := it.ForEachRemaining(ctx, func(*result.Row) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("ForEachRemaining() error = %v, want the action's error", err)
	}
	testutil.AssertEqual(t, seen, 2)
}

func TestIteratorClose(t *testing.T) {
	t.Run("cancels a running producer", func(t *testing.T) {
		cursor := fakedb.IntCursor(3, "id")
		gate := make(chan struct{})
		cursor.Gate = gate

		p, q, exited := producer(cursor)
		it := New[*result.Row](p, q)

		testutil.AssertNoError(t, it.Close())
		if !p.IsCancelled() {
			t.Error("Close() should cancel the producer")
		}

		close(gate)
		<-exited

		ok, err := it.HasNext(context.Background())
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("a closed iterator has no rows")
		}
		testutil.AssertNoError(t, it.Close())
	})

	t.Run("detached producer runs to completion", func(t *testing.T) {
		cursor := fakedb.IntCursor(3, "id")
		gate := make(chan struct{})
		cursor.Gate = gate

		p, q, exited := producer(cursor)
		it := New[*result.Row](p, q, WithDetachedProducer())

		testutil.AssertNoError(t, it.Close())
		if p.IsCancelled() {
			t.Error("Close() cancelled a detached producer")
		}

		close(gate)
		<-exited

		n, err := p.Get()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, n, 3)
	})
}

func TestIteratorInterrupted(t *testing.T) {
	cursor := fakedb.IntCursor(1, "id")
	gate := make(chan struct{})
	cursor.Gate = gate

	p, q, exited := producer(cursor)
	defer func() { <-exited }()

	it := New[*result.Row](p, q)
	defer it.Close()

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()

	_, err := it.HasNext(short)
	if !sferrors.IsKind(err, sferrors.KindInterrupted) {
		t.Fatalf("HasNext() error = %v, want an interrupted error", err)
	}
	if !sferrors.IsRetryable(err) {
		t.Error("interrupted waits should be retryable")
	}

	// an interruption is not sticky
	close(gate)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	n := 0
	testutil.AssertNoError(t, it.ForEachRemaining(ctx, func(*result.Row) error {
		n++
		return nil
	}))
	testutil.AssertEqual(t, n, 1)
}

func TestIteratorStream(t *testing.T) {
	p, q, exited := producer(fakedb.IntCursor(10, "id"))
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q)

	count, err := it.Stream().
		Filter(func(row *result.Row) bool { return ints(t, row, "id")[0]%20 == 0 }).
		Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(5))
}

func TestIteratorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := metrics.Config{Enabled: true, Registry: reg}

	cursor := fakedb.IntCursor(4, "id")
	cursor.FailAt = 3
	p, q, exited := producer(cursor)
	defer func() { <-exited }()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	it := New[*result.Row](p, q, WithMetrics("orders", cfg))
	defer it.Close()

	err := it.ForEachRemaining(ctx, func(*result.Row) error { return nil })
	testutil.AssertError(t, err)

	registry := metrics.FromConfig(cfg)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.RowsConsumed.WithLabelValues("orders")), 2.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.ProducerFailures.WithLabelValues("orders")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.StreamQueueDepth.WithLabelValues("orders")), 0.0)
}

func TestNewPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil task", func() { New[int](nil, NewQueue[int]()) }},
		{"nil queue", func() { New[int](future.Constant(1), nil) }},
		{"zero poll", func() {
			New[int](future.Constant(1), NewQueue[int](), WithTimings(0, time.Millisecond, time.Millisecond))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("New() should panic")
				}
			}()
			tt.fn()
		})
	}
}
