package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vnykmshr/sqlflow/internal/testutil"
)

// pullOnly hides a source's bulk path.
type pullOnly[T any] struct {
	Source[T]
	pulls int
}

func (p *pullOnly[T]) Next(ctx context.Context) (T, bool, error) {
	p.pulls++
	return p.Source.Next(ctx)
}

// countingBulk records which path a terminal operation used.
type countingBulk[T any] struct {
	sliceSource[T]
	bulkCalls int
	closed    bool
}

func (c *countingBulk[T]) ForEachRemaining(ctx context.Context, action func(T) error) error {
	c.bulkCalls++
	return c.sliceSource.ForEachRemaining(ctx, action)
}

func (c *countingBulk[T]) Close() error {
	c.closed = true
	return nil
}

// failingSource yields n elements and then fails.
type failingSource struct {
	n   int
	err error
}

func (f *failingSource) Next(context.Context) (int, bool, error) {
	if f.n == 0 {
		return 0, false, f.err
	}
	f.n--
	return f.n, true, nil
}

func (f *failingSource) Close() error { return nil }

func TestFromSlice(t *testing.T) {
	slice := []int{1, 2, 3, 4, 5}
	stream := FromSlice(slice)
	defer stream.Close()

	result, err := stream.ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 5)
	testutil.AssertEqual(t, result[0], 1)
	testutil.AssertEqual(t, result[4], 5)
}

func TestEmpty(t *testing.T) {
	stream := Empty[int]()
	defer stream.Close()

	result, err := stream.ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 0)

	count, err := Empty[string]().Count(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(0))
}

func TestFromChannel(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "hello"
	ch <- "world"
	ch <- "test"
	close(ch)

	stream := FromChannel(ch)
	defer stream.Close()

	result, err := stream.ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 3)
	testutil.AssertEqual(t, result[0], "hello")
	testutil.AssertEqual(t, result[2], "test")
}

func TestMapTo(t *testing.T) {
	stream := MapTo(FromSlice([]int{1, 2, 3}), func(x int) string {
		return fmt.Sprintf("number-%d", x)
	})
	defer stream.Close()

	result, err := stream.ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 3)
	testutil.AssertEqual(t, result[0], "number-1")
	testutil.AssertEqual(t, result[2], "number-3")
}

func TestChainedOperations(t *testing.T) {
	build := func(source Source[int]) Stream[int] {
		return New(source).
			Filter(func(x int) bool { return x%2 == 0 }). // 2, 4, 6, 8, 10
			Map(func(x int) int { return x * 3 }).        // 6, 12, 18, 24, 30
			Skip(1).                                      // 12, 18, 24, 30
			Limit(2)                                      // 12, 18
	}
	values := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	bulk := &countingBulk[int]{sliceSource: sliceSource[int]{slice: values}}
	pulled := &pullOnly[int]{Source: &sliceSource[int]{slice: values}}

	for name, stream := range map[string]Stream[int]{"bulk": build(bulk), "pull": build(pulled)} {
		t.Run(name, func(t *testing.T) {
			result, err := stream.ToSlice(context.Background())
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, len(result), 2)
			testutil.AssertEqual(t, result[0], 12)
			testutil.AssertEqual(t, result[1], 18)
			testutil.AssertEqual(t, stream.IsClosed(), true)
		})
	}

	testutil.AssertEqual(t, bulk.bulkCalls, 1)
	testutil.AssertEqual(t, bulk.closed, true)
	testutil.AssertEqual(t, pulled.pulls > 0, true)
}

func TestLimitStopsBulkDrainEarly(t *testing.T) {
	source := &countingBulk[int]{sliceSource: sliceSource[int]{slice: []int{1, 2, 3, 4, 5}}}

	count, err := New[int](source).Limit(2).Count(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(2))
	testutil.AssertEqual(t, source.index, 2)

	zero := &countingBulk[int]{sliceSource: sliceSource[int]{slice: []int{1}}}
	count, err = New[int](zero).Limit(0).Count(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(0))
	testutil.AssertEqual(t, zero.index, 0)
}

func TestPeek(t *testing.T) {
	var peeked []int

	stream := FromSlice([]int{1, 2, 3}).
		Peek(func(x int) {
			peeked = append(peeked, x)
		})
	defer stream.Close()

	result, err := stream.ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 3)
	testutil.AssertEqual(t, len(peeked), 3)
	testutil.AssertEqual(t, peeked[0], 1)
	testutil.AssertEqual(t, result[0], 1)
}

func TestForEach(t *testing.T) {
	var collected []int
	stream := FromSlice([]int{1, 2, 3, 4, 5})

	err := stream.ForEach(context.Background(), func(x int) {
		collected = append(collected, x*2)
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(collected), 5)
	testutil.AssertEqual(t, collected[4], 10)
}

func TestReduce(t *testing.T) {
	sum, err := FromSlice([]int{1, 2, 3, 4, 5}).Reduce(context.Background(), 0, func(acc, x int) int {
		return acc + x
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sum, 15)
}

func TestFindFirst(t *testing.T) {
	value, found, err := FromSlice([]int{10, 20, 30}).FindFirst(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, found, true)
	testutil.AssertEqual(t, value, 10)

	value, found, err = Empty[int]().FindFirst(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, found, false)
	testutil.AssertEqual(t, value, 0)
}

func TestAnyMatch(t *testing.T) {
	hasEven, err := FromSlice([]int{1, 3, 4, 5}).AnyMatch(context.Background(), func(x int) bool {
		return x%2 == 0
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, hasEven, true)

	hasEven, err = FromSlice([]int{1, 3}).AnyMatch(context.Background(), func(x int) bool {
		return x%2 == 0
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, hasEven, false)
}

func TestSourceFailure(t *testing.T) {
	cause := errors.New("cursor failed")

	var seen []int
	err := New[int](&failingSource{n: 3, err: cause}).ForEach(context.Background(), func(x int) {
		seen = append(seen, x)
	})
	testutil.AssertEqual(t, errors.Is(err, cause), true)
	testutil.AssertEqual(t, len(seen), 3)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ch := make(chan int)
	stream := FromChannel(ch)
	defer stream.Close()

	_, err := stream.Count(ctx)
	testutil.AssertEqual(t, errors.Is(err, context.DeadlineExceeded), true)
}

func TestStreamClosing(t *testing.T) {
	stream := FromSlice([]int{1, 2, 3})
	testutil.AssertEqual(t, stream.IsClosed(), false)

	testutil.AssertNoError(t, stream.Close())
	testutil.AssertEqual(t, stream.IsClosed(), true)
	testutil.AssertNoError(t, stream.Close())

	_, err := stream.Count(context.Background())
	testutil.AssertEqual(t, err, ErrStreamClosed)

	_, _, err = stream.Next(context.Background())
	testutil.AssertEqual(t, err, ErrStreamClosed)
}

func TestStreamAsSource(t *testing.T) {
	inner := FromSlice([]int{1, 2, 3}).Map(func(x int) int { return x * 10 })

	v, ok, err := inner.Next(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, v, 10)

	rest, err := New[int](inner).ToSlice(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(rest), 2)
	testutil.AssertEqual(t, inner.IsClosed(), true)
}

func BenchmarkStreamOperations(b *testing.B) {
	slice := make([]int, 1000)
	for i := range slice {
		slice[i] = i
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream := FromSlice(slice).
			Filter(func(x int) bool { return x%2 == 0 }).
			Map(func(x int) int { return x * 2 }).
			Limit(100)

		if _, err := stream.Count(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
