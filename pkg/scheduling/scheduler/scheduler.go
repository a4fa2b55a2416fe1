package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/common/validation"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/scheduling/workerpool"
)

const module = "scheduler"

// Task describes a scheduled task.
type Task struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron tasks
	Cron     string        // Empty unless scheduled with ScheduleCron
	Created  time.Time
}

// Scheduler submits tasks to a worker pool at set times.
type Scheduler interface {
	// Basic scheduling
	Schedule(id string, task workerpool.Task, runAt time.Time) error
	ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error
	ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error

	// ScheduleCron runs task on a six-field cron expression
	// (seconds minutes hours day-of-month month day-of-week).
	ScheduleCron(id string, cronExpr string, task workerpool.Task) error

	// Task management
	Cancel(id string) bool
	CancelAll()
	List() []Task

	// Lifecycle
	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	Name         string
	WorkerPool   workerpool.Pool
	Location     *time.Location // For cron scheduling
	TickInterval time.Duration  // How often to check for ready tasks (default: 50ms)
	MaxTasks     int            // Maximum number of scheduled tasks (default: 10000)
	Logger       *slog.Logger
	Metrics      metrics.Config
}

type scheduledTask struct {
	id           string
	task         workerpool.Task
	runAt        time.Time
	interval     time.Duration
	cronExpr     string
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	name         string
	pool         workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxTasks     int
	cronParser   cron.Parser
	logger       *slog.Logger
	registry     *metrics.Registry

	mu      sync.RWMutex
	tasks   map[string]*scheduledTask
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration. Without a
// WorkerPool the scheduler owns a pool of four workers and shuts it down
// in Stop.
func NewWithConfig(cfg Config) Scheduler {
	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		pool = workerpool.New(4, 100)
		ownPool = true
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10000
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &scheduler{
		name:         name,
		pool:         pool,
		ownPool:      ownPool,
		location:     location,
		tickInterval: tickInterval,
		maxTasks:     maxTasks,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger:       logger.With("scheduler", name),
		registry:     metrics.FromConfig(cfg.Metrics),
		tasks:        make(map[string]*scheduledTask),
	}
}

func validateTask(id string, task workerpool.Task) error {
	if err := validation.ValidateNotEmpty(module, "id", id); err != nil {
		return err
	}
	if len(id) > 255 {
		return sferrors.NewValidationError(module, "id", id, "too long").WithHint("use at most 255 characters")
	}
	return validation.ValidateNotNil(module, "task", task)
}

// add registers t unless its id is taken or the scheduler is full.
func (s *scheduler) add(t *scheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.id]; exists {
		return fmt.Errorf("task with ID %q already exists, use a different ID or cancel the existing task first", t.id)
	}

	if len(s.tasks) >= s.maxTasks {
		return fmt.Errorf("cannot schedule task: maximum number of tasks (%d) reached", s.maxTasks)
	}

	s.tasks[t.id] = t
	return nil
}

func (s *scheduler) Schedule(id string, task workerpool.Task, runAt time.Time) error {
	if err := validateTask(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return sferrors.NewValidationError(module, "runAt", runAt, "cannot be zero")
	}

	return s.add(&scheduledTask{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

// ScheduleRepeating runs task now and then every interval.
func (s *scheduler) ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error {
	if err := validateTask(id, task); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration(module, "interval", interval); err != nil {
		return err
	}

	now := time.Now()
	return s.add(&scheduledTask{
		id:       id,
		task:     task,
		runAt:    now,
		interval: interval,
		created:  now,
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task workerpool.Task) error {
	if err := validateTask(id, task); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty(module, "cronExpr", cronExpr); err != nil {
		return err
	}

	schedule, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return s.add(&scheduledTask{
		id:           id,
		task:         task,
		runAt:        schedule.Next(time.Now().In(s.location)),
		cronExpr:     cronExpr,
		cronSchedule: schedule,
		created:      time.Now(),
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.tasks)
}

// List returns the scheduled tasks ordered by next run time.
func (s *scheduler) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, Task{
			ID:       t.id,
			RunAt:    t.runAt,
			Interval: t.interval,
			Cron:     t.cronExpr,
			Created:  t.created,
		})
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].RunAt.Before(tasks[j].RunAt)
	})

	return tasks
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.run(time.NewTicker(s.tickInterval), s.done, s.stopped)
	return nil
}

// Stop stops the ticker. Submitted tasks keep running; an owned pool is
// shut down and the returned channel closes once it has drained.
func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	loopStopped := s.stopped
	if s.running {
		s.running = false
		close(s.done)
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if loopStopped != nil {
			<-loopStopped
		}
		if s.ownPool {
			<-s.pool.Shutdown()
		}
	}()

	return stopped
}

func (s *scheduler) run(ticker *time.Ticker, done, stopped chan struct{}) {
	defer close(stopped)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			s.processReadyTasks(now)
		}
	}
}

func (s *scheduler) processReadyTasks(now time.Time) {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return
	}

	var ready []*scheduledTask
	for id, task := range s.tasks {
		if task.runAt.After(now) {
			continue
		}
		ready = append(ready, task)

		switch {
		case task.interval > 0:
			task.runAt = now.Add(task.interval)
		case task.cronSchedule != nil:
			task.runAt = task.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.tasks, id)
		}
	}
	s.mu.Unlock()

	for _, task := range ready {
		if err := s.pool.SubmitWithContext(context.Background(), task.task); err != nil {
			s.logger.Warn("task submission failed", "task", task.id, "error", err)
			continue
		}
		if s.registry != nil {
			s.registry.JobsRun.WithLabelValues(s.name).Inc()
		}
	}
}
