package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is any error that occurred during task execution
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task. Tasks on an
	// unbounded pool get a sequence number instead.
	WorkerID int
}

// Pool represents a worker pool that can execute tasks concurrently.
type Pool interface {
	// Submit adds a task to the pool for execution.
	// Returns an error if the pool is shut down or if the task cannot be queued.
	Submit(task Task) error

	// SubmitWithContext submits a task with a context. The context applies to
	// queuing and is passed to the task's Execute method.
	SubmitWithContext(ctx context.Context, task Task) error

	// Shutdown initiates a graceful shutdown of the pool.
	// No new tasks will be accepted, but queued tasks will be completed.
	// Returns a channel that closes when shutdown is complete.
	Shutdown() <-chan struct{}

	// IsShutdown reports whether Shutdown has been called.
	IsShutdown() bool

	// Size returns the configured number of workers, 0 for unbounded pools.
	Size() int

	// ActiveWorkers returns the number of tasks currently executing.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks submitted to the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks completed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Zero means unbounded: every task runs on its own goroutine.
	WorkerCount int

	// QueueSize is the number of tasks that can wait for a fixed worker.
	// Zero hands tasks over synchronously. Ignored for unbounded pools.
	QueueSize int

	// TaskTimeout is the default timeout for individual task execution.
	// Zero means no timeout.
	TaskTimeout time.Duration

	// PanicHandler is called when a task panics.
	// Panics are always recovered and reported as task errors.
	PanicHandler func(task Task, recovered interface{})

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int, task Task)

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)

	// Logger receives panic reports. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the configuration of the shared background pool:
// unbounded, no task timeout.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 0,
		QueueSize:   0,
	}
}

// taskWithContext pairs a task with the context it was submitted under.
type taskWithContext struct {
	task Task
	ctx  context.Context
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config
	logger *slog.Logger

	// Core pool state
	taskQueue    chan taskWithContext
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// State tracking
	mu             sync.RWMutex
	isShutdown     bool
	activeWorkers  atomic.Int64
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64
	sequence       atomic.Int64

	// Worker management
	workerWg sync.WaitGroup
	taskWg   sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers and queue size.
func New(workerCount, queueSize int) Pool {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
}

// NewUnbounded creates a pool that runs every task on its own goroutine.
func NewUnbounded() Pool {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new worker pool with the specified configuration.
func NewWithConfig(config Config) Pool {
	if config.WorkerCount < 0 {
		panic("worker count cannot be negative")
	}

	if config.QueueSize < 0 {
		panic("queue size cannot be negative")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool := &workerPool{
		config:     config,
		logger:     logger,
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}

	if config.WorkerCount == 0 {
		return pool
	}

	pool.taskQueue = make(chan taskWithContext, config.QueueSize)
	for i := 0; i < config.WorkerCount; i++ {
		pool.workerWg.Add(1)
		go pool.runWorker(i)
	}

	return pool
}
