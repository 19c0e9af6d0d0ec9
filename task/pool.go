package task

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/assetgo/internal/resource"
)

// Options configures a Pool.
type Options struct {
	// Workers is the number of worker goroutines. Defaults to GOMAXPROCS.
	Workers int

	// Controller, if set, gates every running task on one of its worker
	// slots, so several pools can share a global concurrency budget.
	Controller *resource.Controller

	Logger *slog.Logger
}

// Pool runs task functions on a fixed set of worker goroutines.
//
// Spawn enqueues into an unbounded queue and never blocks, so it is safe to
// call from the goroutine that polls the resulting tasks.
type Pool struct {
	rc     *resource.Controller
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	closed  bool

	wg      sync.WaitGroup
	running atomic.Int64
	spawned atomic.Uint64
}

// NewPool starts a pool.
func NewPool(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		rc:     opts.Controller,
		logger: opts.Logger,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
	}

	p.wg.Add(opts.Workers)
	for range opts.Workers {
		go p.worker()
	}
	return p
}

// Spawn schedules fn and returns its task. fn receives the pool's lifetime
// context, which is canceled by Close. On a closed pool the returned task is
// already finished with ErrPoolClosed.
func Spawn[T any](p *Pool, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := newTask[T]()
	job := func() {
		t.run(func() (T, error) { return fn(p.ctx) })
	}

	if !p.submit(job) {
		var zero T
		t.complete(zero, ErrPoolClosed)
	}
	return t
}

func (p *Pool) submit(job func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.pending = append(p.pending, job)
	p.mu.Unlock()

	p.spawned.Add(1)
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return true
}

func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return nil, false
	}
	job := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	return job, true
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		job, ok := p.next()
		if !ok {
			select {
			case <-p.wake:
				continue
			case <-p.ctx.Done():
				// Drain whatever was queued before Close.
				for job, ok := p.next(); ok; job, ok = p.next() {
					job()
				}
				return
			}
		}

		// Pass the wake-up on so idle workers pick up the rest of the queue.
		select {
		case p.wake <- struct{}{}:
		default:
		}

		p.exec(job)
	}
}

func (p *Pool) exec(job func()) {
	if err := p.rc.AcquireWorker(p.ctx); err != nil {
		// Closing: run without a slot so the task still completes.
		job()
		return
	}
	defer p.rc.ReleaseWorker()

	p.running.Add(1)
	defer p.running.Add(-1)
	job()
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int { return int(p.running.Load()) }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Spawned returns the total number of tasks accepted.
func (p *Pool) Spawned() uint64 { return p.spawned.Load() }

// Close stops accepting tasks, cancels the lifetime context, runs the tasks
// still queued and waits for the workers to exit. It is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Debug("task pool closed", "spawned", p.spawned.Load())
}
