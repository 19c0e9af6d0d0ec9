package loading

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/task"
	"github.com/hupe1980/assetgo/world"
)

type options struct {
	logger *slog.Logger
}

// Option configures a Queue.
type Option func(*options)

// WithLogger sets the queue's logger. Defaults to the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// UpdateStats summarizes one Update pass.
type UpdateStats struct {
	Pushed   int
	Finished int
	Failed   int
	Pending  int
}

// Queue drives load requests through their loaders' pipelines.
//
// Queue is owned by the goroutine that runs the periodic hooks. It never
// waits on a task: it polls and only joins tasks that have finished.
type Queue struct {
	server   *asset.Server
	pool     *task.Pool
	logger   *slog.Logger
	metrics  asset.Metrics
	contexts []*LoadContext
	reqs     []asset.Request
}

// New creates an empty queue that spawns its work on pool.
func New(server *asset.Server, pool *task.Pool, optFns ...Option) *Queue {
	o := options{logger: server.Logger()}
	for _, fn := range optFns {
		fn(&o)
	}

	return &Queue{
		server:  server,
		pool:    pool,
		logger:  o.logger,
		metrics: server.Metrics(),
	}
}

// Len returns the number of requests in flight.
func (q *Queue) Len() int { return len(q.contexts) }

// Contexts returns a snapshot of the requests in flight.
func (q *Queue) Contexts() []*LoadContext { return slices.Clone(q.contexts) }

// PushURI starts req according to its loader's mode.
//
// Touch spawns the touch task. Prepare calls Prepare(w, nil) right away and
// spawns the load task. OnlyLoad spawns the load task.
func (q *Queue) PushURI(ctx context.Context, w *world.World, req asset.Request) {
	lc := &LoadContext{req: req, started: time.Now()}

	switch req.Loader.Mode() {
	case asset.ModeTouch:
		lc.state = StateTouchPending
		lc.touch = task.Spawn(q.pool, func(ctx context.Context) (any, error) {
			return req.Loader.AsyncTouch(ctx, q.server, req.URI)
		})
	case asset.ModePrepare:
		lc.state = StatePreparePending
		prepared, err := q.prepare(w, lc, nil)
		if err != nil {
			q.fail(lc, asset.StagePrepare, err)
			break
		}
		q.spawnLoad(lc, prepared)
	default:
		q.spawnLoad(lc, nil)
	}

	q.contexts = append(q.contexts, lc)
	q.logger.DebugContext(ctx, "load queued",
		"uri", req.URI, "id", req.ID.String(), "mode", req.Loader.Mode().String())
}

// Update first starts every request queued on the server, then advances each
// context by at most one step, from the newest to the oldest. Finished
// contexts are removed; failed ones mark their track failed and are removed
// in the same pass.
func (q *Queue) Update(ctx context.Context, w *world.World) UpdateStats {
	var stats UpdateStats

	q.reqs = q.server.TakeRequests(q.reqs[:0])
	for _, req := range q.reqs {
		q.PushURI(ctx, w, req)
	}
	stats.Pushed = len(q.reqs)
	clear(q.reqs)

	for i := len(q.contexts) - 1; i >= 0; i-- {
		lc := q.contexts[i]
		q.step(w, lc)

		switch lc.state {
		case StateFinished:
			stats.Finished++
			q.metrics.RecordLoad(lc.Tag().String(), time.Since(lc.started), nil)
			q.logger.DebugContext(ctx, "load finished", "uri", lc.URI(), "id", lc.ID().String())
		case StateFailed:
			stats.Failed++
			q.server.Tracks().MarkFailed(lc.URI(), lc.ID(), lc.err)
			q.metrics.RecordLoad(lc.Tag().String(), time.Since(lc.started), lc.err)
			q.logger.ErrorContext(ctx, "load failed", "uri", lc.URI(), "id", lc.ID().String(), "error", lc.err)
		default:
			continue
		}
		q.contexts = slices.Delete(q.contexts, i, i+1)
	}

	stats.Pending = len(q.contexts)
	return stats
}

func (q *Queue) step(w *world.World, lc *LoadContext) {
	switch lc.state {
	case StateTouchPending:
		if !lc.touch.IsFinished() {
			return
		}
		data, err := lc.touch.Join()
		lc.touch = nil
		if err != nil {
			q.fail(lc, asset.StageTouch, err)
			return
		}

		lc.state = StatePreparing
		prepared, err := q.prepare(w, lc, data)
		if err != nil {
			q.fail(lc, asset.StagePrepare, err)
			return
		}
		if prepared == nil {
			prepared = data
		}
		q.spawnLoad(lc, prepared)

	case StateLoadPending:
		if !lc.load.IsFinished() {
			return
		}
		payload, err := lc.load.Join()
		lc.load = nil
		if err != nil {
			q.fail(lc, asset.StageLoad, err)
			return
		}
		q.server.Deliver(lc.Tag(), lc.ID(), payload)
		// The Decrement is reconciled no earlier than the next
		// FreeUnusedAssets, after the Create above has been applied.
		lc.req.Hold.Release()
		lc.state = StateFinished
	}
}

// prepare runs the loader's Prepare on the owning goroutine. A panic or an
// error result is contained in the context like any other loader failure.
func (q *Queue) prepare(w *world.World, lc *LoadContext, touch any) (prepared any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", task.ErrTaskPanicked, r)
		}
	}()
	prepared = lc.req.Loader.Prepare(w, touch)
	if err, ok := prepared.(error); ok {
		return nil, err
	}
	return prepared, nil
}

func (q *Queue) spawnLoad(lc *LoadContext, prepared any) {
	req := lc.req
	lc.state = StateLoadPending
	lc.load = task.Spawn(q.pool, func(ctx context.Context) (any, error) {
		return req.Loader.AsyncLoad(ctx, q.server, req.URI, prepared, req.Params)
	})
}

func (q *Queue) fail(lc *LoadContext, stage asset.Stage, err error) {
	lc.req.Hold.Release()
	lc.state = StateFailed
	lc.err = asset.NewLoadError(lc.URI(), lc.Tag(), stage, err)
}
