package assetgo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/event"
	"github.com/hupe1980/assetgo/internal/resource"
	"github.com/hupe1980/assetgo/loading"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/task"
	"github.com/hupe1980/assetgo/world"
)

// App wires a resource server, a loading queue and a background pool, and
// runs their periodic hooks in order on every Tick.
//
// An App belongs to the goroutine that calls Tick. Load may be called from
// any goroutine; Register, Store, Events and Tick may not.
type App struct {
	server  *asset.Server
	world   *world.World
	pool    *task.Pool
	queue   *loading.Queue
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector

	types []*typeHooks

	closeOnce sync.Once
	closed    atomic.Bool
}

// typeHooks are the per-type steps of a tick.
type typeHooks struct {
	tag     asset.TypeTag
	update  func()
	flush   func()
	rotate  func()
	changes func() ChangeCounts
}

// ChangeCounts counts store events of one tick.
type ChangeCounts struct {
	Created  int
	Modified int
	Removed  int
}

func (c *ChangeCounts) add(o ChangeCounts) {
	c.Created += o.Created
	c.Modified += o.Modified
	c.Removed += o.Removed
}

// TickStats summarizes one Tick.
type TickStats struct {
	Reconcile asset.ReconcileStats
	Queue     loading.UpdateStats
	Changes   ChangeCounts
	Duration  time.Duration
}

// New creates an App with no registered types.
func New(optFns ...Option) *App {
	o := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxWorkers:         int64(o.workers),
		IOLimitBytesPerSec: o.ioLimit,
	})

	server := asset.NewServer(
		asset.WithLogger(o.logger.Logger),
		asset.WithMetrics(o.metricsCollector),
	)
	pool := task.NewPool(task.Options{
		Workers:    o.workers,
		Controller: rc,
		Logger:     o.logger.Logger,
	})

	return &App{
		server:  server,
		world:   world.New(),
		pool:    pool,
		queue:   loading.New(server, pool),
		rc:      rc,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
}

// Register registers T with the server, puts its store and event bus into
// the world and installs loader for it. loader may be nil for types that are
// only added directly.
//
// Register panics if T is already registered.
func Register[T any](a *App, loader asset.Loader) (*asset.Store[T], error) {
	tag := asset.TagOf[T]()
	if loader != nil && loader.Tag() != tag {
		return nil, fmt.Errorf("%w: loader produces %s, not %s", ErrTypeMismatch, loader.Tag(), tag)
	}

	store := asset.Register[T](a.server)
	bus := event.New[asset.AssetEvent[T]]()
	reader := bus.ReaderAtEnd()
	world.Insert(a.world, store)
	world.Insert(a.world, bus)

	a.types = append(a.types, &typeHooks{
		tag:    tag,
		update: store.UpdateAssets,
		flush:  func() { store.FlushEvents(bus) },
		rotate: bus.Update,
		changes: func() ChangeCounts {
			var c ChangeCounts
			for _, ev := range reader.Read() {
				switch ev.Kind {
				case asset.Created:
					c.Created++
				case asset.Modified:
					c.Modified++
				case asset.Removed:
					c.Removed++
				}
			}
			return c
		},
	})

	if loader != nil {
		if err := a.server.RegisterLoader(loader); err != nil {
			return store, err
		}
	}

	a.logger.Debug("type registered", "asset_type", tag.String(), "loader", loader != nil)
	return store, nil
}

// Load requests uri as a T. The returned track holds a strong handle; release
// it once the asset is no longer needed.
func Load[T any](a *App, uri string, params any) (*asset.Track, error) {
	if a.isClosed() {
		return nil, ErrClosed
	}
	t, ok := asset.LoadAsync[T](a.server, uri, params)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoLoader, asset.TagOf[T]())
	}
	return t, nil
}

// LoadSync loads uri as a T on the calling goroutine and adds it to T's store.
func LoadSync[T any](ctx context.Context, a *App, uri string, params any) (*asset.Handle[T], error) {
	if a.isClosed() {
		return nil, ErrClosed
	}
	start := time.Now()
	h, err := asset.LoadSync[T](ctx, a.server, a.world, uri, params)
	a.logger.LogLoad(ctx, uri, asset.TagOf[T](), time.Since(start), err)
	return h, err
}

// Store returns the store of T, or nil if T is not registered.
func Store[T any](a *App) *asset.Store[T] {
	s, _ := world.Get[*asset.Store[T]](a.world)
	return s
}

// Events returns the change log of T, or nil if T is not registered. Create a
// reader with Reader or ReaderAtEnd and read it at least once per tick.
func Events[T any](a *App) *event.Events[asset.AssetEvent[T]] {
	bus, _ := world.Get[*event.Events[asset.AssetEvent[T]]](a.world)
	return bus
}

// Server returns the resource server.
func (a *App) Server() *asset.Server { return a.server }

// World returns the world handed to loaders. Insert settings such as
// loaders.TextureSettings here.
func (a *App) World() *world.World { return a.world }

// Queue returns the loading queue.
func (a *App) Queue() *loading.Queue { return a.queue }

// Logger returns the app's logger.
func (a *App) Logger() *Logger { return a.logger }

// Controller returns the resource controller shared by the pool and caches.
func (a *App) Controller() *resource.Controller { return a.rc }

// Throttle wraps src so reads honor the configured IO limit. Without a limit
// src is returned unchanged.
func (a *App) Throttle(src source.Source) source.Source {
	if a.rc.Config().IOLimitBytesPerSec <= 0 {
		return src
	}
	return source.NewThrottledSource(src, a.rc)
}

// Tick runs one round of periodic hooks in order: free unused assets, advance
// the loading queue, apply lifecycle events to every store, flush store
// changes to their event logs and rotate the logs.
func (a *App) Tick(ctx context.Context) (TickStats, error) {
	if a.isClosed() {
		return TickStats{}, ErrClosed
	}
	start := time.Now()

	var stats TickStats
	stats.Reconcile = a.server.FreeUnusedAssets()
	a.logger.LogReconcile(ctx, stats.Reconcile)

	stats.Queue = a.queue.Update(ctx, a.world)

	for _, t := range a.types {
		t.update()
	}
	for _, t := range a.types {
		t.flush()
		c := t.changes()
		if c.Removed > 0 {
			a.logger.LogFree(ctx, t.tag, c.Removed)
		}
		stats.Changes.add(c)
	}
	for _, t := range a.types {
		t.rotate()
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// Run ticks every interval until ctx is canceled or the app is closed.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Close stops the background pool and disconnects the server's channels.
// Tasks still queued run with a canceled context. Close is idempotent.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		a.pool.Close()
		a.server.Close()
		a.logger.Debug("app closed")
	})
	return nil
}

func (a *App) isClosed() bool { return a.closed.Load() }
