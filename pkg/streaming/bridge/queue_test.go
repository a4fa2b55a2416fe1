package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vnykmshr/sqlflow/internal/testutil"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	testutil.AssertEqual(t, q.Len(), 3)

	for want := 1; want <= 3; want++ {
		got, ok := q.TryPoll()
		if !ok {
			t.Fatalf("TryPoll() found nothing, want %d", want)
		}
		testutil.AssertEqual(t, got, want)
	}

	if _, ok := q.TryPoll(); ok {
		t.Error("TryPoll() on an empty queue should report false")
	}
	testutil.AssertEqual(t, q.Len(), 0)
}

func TestQueuePoll(t *testing.T) {
	t.Run("times out when empty", func(t *testing.T) {
		q := NewQueue[int]()
		start := time.Now()
		_, ok, err := q.Poll(context.Background(), 20*time.Millisecond)
		testutil.AssertNoError(t, err)
		if ok {
			t.Fatal("Poll() returned an item from an empty queue")
		}
		if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
			t.Errorf("Poll() returned after %v, expected to wait", elapsed)
		}
	})

	t.Run("wakes on push", func(t *testing.T) {
		q := NewQueue[int]()
		go func() {
			time.Sleep(10 * time.Millisecond)
			q.Push(42)
		}()

		v, ok, err := q.Poll(context.Background(), time.Second)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Fatal("Poll() missed the pushed item")
		}
		testutil.AssertEqual(t, v, 42)
	})

	t.Run("context ends first", func(t *testing.T) {
		q := NewQueue[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := q.Poll(ctx, time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Poll() error = %v, want context.Canceled", err)
		}
	})
}

func TestQueueTake(t *testing.T) {
	q := NewQueue[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		q.Push("a")
	}()

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	v, err := q.Take(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, "a")

	short, cancelShort := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelShort()
	if _, err := q.Take(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Take() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestQueueDrainTo(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	_, _ = q.TryPoll()
	q.Push(3)

	buf := q.DrainTo([]int{0})
	if len(buf) != 3 || buf[0] != 0 || buf[1] != 2 || buf[2] != 3 {
		t.Errorf("DrainTo() = %v, want [0 2 3]", buf)
	}
	testutil.AssertEqual(t, q.Len(), 0)

	q.Push(4)
	v, ok := q.TryPoll()
	if !ok || v != 4 {
		t.Errorf("queue unusable after drain: got %d, %v", v, ok)
	}
}
