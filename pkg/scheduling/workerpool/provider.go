package workerpool

import (
	"context"
	"errors"
	"sync"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// Provider hands out a shared pool that is created on first use and created
// again if it has been shut down. It implements Pool, so components that
// accept a Pool can be given a Provider and keep working across Shutdown.
//
// The zero value is not usable; construct one with NewProvider.
type Provider struct {
	mu      sync.Mutex
	pool    Pool
	factory func() Pool
}

// NewProvider creates a Provider that builds pools with factory.
// A nil factory builds unbounded pools.
func NewProvider(factory func() Pool) *Provider {
	if factory == nil {
		factory = NewUnbounded
	}
	return &Provider{factory: factory}
}

// Current returns the live pool, creating it if there is none or the
// previous one was shut down.
func (p *Provider) Current() Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool == nil || p.pool.IsShutdown() {
		p.pool = p.factory()
	}
	return p.pool
}

// Replace swaps in pool and returns the previous one, which may be nil.
// The caller owns the returned pool and decides whether to shut it down.
func (p *Provider) Replace(pool Pool) Pool {
	if pool == nil {
		panic("replacement pool cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.pool
	p.pool = pool
	return old
}

func (p *Provider) peek() Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool
}

// Submit submits task to the current pool.
func (p *Provider) Submit(task Task) error {
	return p.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext submits task to the current pool. A pool shut down
// between lookup and submission is replaced and the submission retried once.
func (p *Provider) SubmitWithContext(ctx context.Context, task Task) error {
	err := p.Current().SubmitWithContext(ctx, task)
	if errors.Is(err, sferrors.ErrClosed) {
		err = p.Current().SubmitWithContext(ctx, task)
	}
	return err
}

// Shutdown shuts down the current pool, if any. The next submission
// creates a new one.
func (p *Provider) Shutdown() <-chan struct{} {
	pool := p.peek()
	if pool == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return pool.Shutdown()
}

// IsShutdown is always false: a Provider accepts work after Shutdown.
func (p *Provider) IsShutdown() bool {
	return false
}

// Size returns the size of the current pool, or 0 if none exists yet.
func (p *Provider) Size() int {
	if pool := p.peek(); pool != nil {
		return pool.Size()
	}
	return 0
}

// ActiveWorkers returns the active count of the current pool.
func (p *Provider) ActiveWorkers() int {
	if pool := p.peek(); pool != nil {
		return pool.ActiveWorkers()
	}
	return 0
}

// TotalSubmitted returns the submissions of the current pool only.
func (p *Provider) TotalSubmitted() int64 {
	if pool := p.peek(); pool != nil {
		return pool.TotalSubmitted()
	}
	return 0
}

// TotalCompleted returns the completions of the current pool only.
func (p *Provider) TotalCompleted() int64 {
	if pool := p.peek(); pool != nil {
		return pool.TotalCompleted()
	}
	return 0
}
