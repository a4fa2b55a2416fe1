package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/sqlflow/internal/testutil"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
)

// TestTask is a simple task for testing.
type TestTask struct {
	ID          int
	Duration    time.Duration
	ShouldErr   bool
	ShouldPanic bool
	Executed    *int32 // Atomic counter
}

func (t *TestTask) Execute(ctx context.Context) error {
	atomic.AddInt32(t.Executed, 1)

	if t.ShouldPanic {
		panic("test panic")
	}

	if t.Duration > 0 {
		select {
		case <-time.After(t.Duration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if t.ShouldErr {
		return errors.New("test error")
	}

	return nil
}

// collect returns a config hook that forwards results to a channel.
func collect(ch chan<- Result) func(int, Result) {
	return func(_ int, r Result) { ch <- r }
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		workerCount int
		queueSize   int
		expectPanic bool
	}{
		{"valid params", 2, 10, false},
		{"single worker", 1, 5, false},
		{"unbounded", 0, 0, false},
		{"negative workers", -1, 10, true},
		{"negative queue size", 2, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Error("expected panic")
					}
				}()
			}

			pool := New(tt.workerCount, tt.queueSize)
			if !tt.expectPanic {
				testutil.AssertEqual(t, pool.Size(), tt.workerCount)
				<-pool.Shutdown()
			}
		})
	}
}

func TestBasicTaskExecution(t *testing.T) {
	for _, workers := range []int{0, 2} {
		results := make(chan Result, 1)
		pool := NewWithConfig(Config{WorkerCount: workers, QueueSize: 5, OnTaskComplete: collect(results)})

		var executed int32
		task := &TestTask{ID: 1, Duration: 10 * time.Millisecond, Executed: &executed}
		testutil.AssertNoError(t, pool.Submit(task))

		select {
		case result := <-results:
			testutil.AssertNoError(t, result.Error)
			testutil.AssertEqual(t, result.Task == Task(task), true)
			testutil.AssertEqual(t, result.Duration >= 10*time.Millisecond, true)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for result")
		}

		<-pool.Shutdown()
		testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(1))
	}
}

func TestUnboundedRunsConcurrently(t *testing.T) {
	pool := NewUnbounded()
	defer func() { <-pool.Shutdown() }()

	const numTasks = 20
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(numTasks)

	for i := 0; i < numTasks; i++ {
		err := pool.Submit(TaskFunc(func(ctx context.Context) error {
			started.Done()
			<-release
			return nil
		}))
		testutil.AssertNoError(t, err)
	}

	// Every task must be running at once; a bounded pool would deadlock here.
	started.Wait()
	testutil.AssertEqual(t, pool.ActiveWorkers(), numTasks)
	close(release)
}

func TestMultipleTaskExecution(t *testing.T) {
	const numTasks = 10
	results := make(chan Result, numTasks)
	pool := NewWithConfig(Config{WorkerCount: 3, QueueSize: 10, OnTaskComplete: collect(results)})

	var executed int32
	for i := 0; i < numTasks; i++ {
		task := &TestTask{ID: i, Duration: 5 * time.Millisecond, Executed: &executed}
		testutil.AssertNoError(t, pool.Submit(task))
	}

	<-pool.Shutdown()
	testutil.AssertEqual(t, len(results), numTasks)
	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(numTasks))
	testutil.AssertEqual(t, pool.TotalSubmitted(), int64(numTasks))
	testutil.AssertEqual(t, pool.TotalCompleted(), int64(numTasks))
}

func TestTaskError(t *testing.T) {
	results := make(chan Result, 1)
	pool := NewWithConfig(Config{WorkerCount: 1, QueueSize: 1, OnTaskComplete: collect(results)})
	defer func() { <-pool.Shutdown() }()

	var executed int32
	testutil.AssertNoError(t, pool.Submit(&TestTask{ID: 1, ShouldErr: true, Executed: &executed}))

	result := <-results
	testutil.AssertError(t, result.Error)
	testutil.AssertEqual(t, result.Error.Error(), "test error")
}

func TestTaskPanic(t *testing.T) {
	var handled atomic.Value
	results := make(chan Result, 1)
	pool := NewWithConfig(Config{
		OnTaskComplete: collect(results),
		PanicHandler: func(task Task, recovered interface{}) {
			handled.Store(recovered)
		},
	})
	defer func() { <-pool.Shutdown() }()

	var executed int32
	testutil.AssertNoError(t, pool.Submit(&TestTask{ShouldPanic: true, Executed: &executed}))

	result := <-results
	testutil.AssertError(t, result.Error)
	testutil.AssertEqual(t, handled.Load(), interface{}("test panic"))
}

func TestSubmitNilTask(t *testing.T) {
	pool := NewUnbounded()
	defer func() { <-pool.Shutdown() }()

	testutil.AssertError(t, pool.Submit(nil))
}

func TestSubmitToShutdownPool(t *testing.T) {
	pool := New(1, 1)
	<-pool.Shutdown()

	var executed int32
	err := pool.Submit(&TestTask{Executed: &executed})
	testutil.AssertEqual(t, errors.Is(err, sferrors.ErrClosed), true)
	testutil.AssertEqual(t, pool.IsShutdown(), true)
}

func TestSubmitWithCanceledContext(t *testing.T) {
	pool := New(1, 0)
	defer func() { <-pool.Shutdown() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int32
	err := pool.SubmitWithContext(ctx, &TestTask{Executed: &executed})
	testutil.AssertEqual(t, errors.Is(err, context.Canceled), true)
}

func TestShutdownCompletesQueuedTasks(t *testing.T) {
	pool := New(1, 10)

	var executed int32
	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, pool.Submit(&TestTask{Duration: 2 * time.Millisecond, Executed: &executed}))
	}

	<-pool.Shutdown()
	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(5))
}

func TestTaskTimeout(t *testing.T) {
	results := make(chan Result, 1)
	pool := NewWithConfig(Config{TaskTimeout: 20 * time.Millisecond, OnTaskComplete: collect(results)})
	defer func() { <-pool.Shutdown() }()

	var executed int32
	testutil.AssertNoError(t, pool.Submit(&TestTask{Duration: time.Second, Executed: &executed}))

	result := <-results
	testutil.AssertEqual(t, errors.Is(result.Error, context.DeadlineExceeded), true)
}

func TestWorkerCallbacks(t *testing.T) {
	var started, completed int32
	pool := NewWithConfig(Config{
		WorkerCount: 2,
		OnTaskStart: func(workerID int, task Task) {
			atomic.AddInt32(&started, 1)
		},
		OnTaskComplete: func(workerID int, result Result) {
			atomic.AddInt32(&completed, 1)
		},
	})

	var executed int32
	for i := 0; i < 4; i++ {
		testutil.AssertNoError(t, pool.Submit(&TestTask{Executed: &executed}))
	}
	<-pool.Shutdown()

	testutil.AssertEqual(t, atomic.LoadInt32(&started), int32(4))
	testutil.AssertEqual(t, atomic.LoadInt32(&completed), int32(4))
}

func TestConcurrentAccess(t *testing.T) {
	pool := NewUnbounded()

	var executed int32
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = pool.Submit(&TestTask{Executed: &executed})
				_ = pool.ActiveWorkers()
			}
		}()
	}
	wg.Wait()
	<-pool.Shutdown()

	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(200))
}

func TestMetricsPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := NewUnbounded()
	pool := NewWithMetrics(base, "test_pool", metrics.Config{Enabled: true, Registry: reg})

	var executed int32
	testutil.AssertNoError(t, pool.Submit(&TestTask{Executed: &executed}))
	testutil.AssertNoError(t, pool.Submit(&TestTask{ShouldErr: true, Executed: &executed}))
	<-pool.Shutdown()

	count, err := promtest.GatherAndCount(reg, "sqlflow_workerpool_tasks_executed_total")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 1)

	failed, err := promtest.GatherAndCount(reg, "sqlflow_workerpool_tasks_failed_total")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, failed, 1)

	if NewWithMetrics(base, "off", metrics.Disabled()) != base {
		t.Error("disabled metrics should return the pool unchanged")
	}
}
