package context

import (
	"context"
	"testing"
	"time"
)

func TestWaitTimeout(t *testing.T) {
	closed := make(chan struct{})
	close(closed)

	done, err := WaitTimeout(context.Background(), closed, time.Hour)
	if !done || err != nil {
		t.Fatalf("closed channel: done=%v err=%v", done, err)
	}

	open := make(chan struct{})
	start := time.Now()
	done, err = WaitTimeout(context.Background(), open, 20*time.Millisecond)
	if done || err != nil {
		t.Fatalf("open channel: done=%v err=%v", done, err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before the timeout elapsed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, err = WaitTimeout(ctx, open, time.Hour)
	if done || err != context.Canceled {
		t.Fatalf("canceled ctx: done=%v err=%v", done, err)
	}
}

func TestIsTimedOut(t *testing.T) {
	if IsTimedOut(context.Background()) {
		t.Error("background context reported as timed out")
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if IsTimedOut(canceled) {
		t.Error("canceled context reported as timed out")
	}

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()
	if !IsTimedOut(expired) {
		t.Error("expired context not reported as timed out")
	}
}
