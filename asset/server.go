package asset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/assetgo/world"
)

// Request is a load request recorded by the server and picked up by the
// loading queue.
type Request struct {
	URI    string
	ID     ID
	Loader Loader
	Params any
	// Hold is the request's own strong handle. The loading queue releases it
	// once the payload has been delivered or the request has failed, so the
	// asset outlives an early release of its Track.
	Hold *UntypedHandle
}

// Tag returns the type tag of the requested asset.
func (r Request) Tag() TypeTag { return r.ID.Tag }

type serverOptions struct {
	logger  *slog.Logger
	metrics Metrics
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

// WithLogger sets the logger used by the server and its stores.
func WithLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink used by the server and its stores.
func WithMetrics(m Metrics) ServerOption {
	return func(o *serverOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// Server owns the reference counter, the lifecycle channel of every
// registered type and the installed loaders.
//
// Types and loaders are registered once at startup. LoadAsync, LoadUntyped
// and Deliver may be called from any goroutine, so loaders can issue nested
// loads from their background tasks.
type Server struct {
	refs     *RefCounter
	tracks   *Tracks
	requests *mpsc[Request]
	logger   *slog.Logger
	metrics  Metrics

	mu       sync.RWMutex
	channels map[TypeTag]*lifecycleChannel
	loaders  map[TypeTag]Loader
}

// NewServer creates a server with no registered types.
func NewServer(optFns ...ServerOption) *Server {
	o := serverOptions{
		logger:  slog.New(slog.DiscardHandler),
		metrics: noopMetrics{},
	}
	for _, fn := range optFns {
		fn(&o)
	}

	return &Server{
		refs:     NewRefCounter(),
		tracks:   newTracks(),
		requests: newMPSC[Request](),
		logger:   o.logger,
		metrics:  o.metrics,
		channels: make(map[TypeTag]*lifecycleChannel),
		loaders:  make(map[TypeTag]Loader),
	}
}

// Register creates the lifecycle channel of T and returns the store for T.
// It panics if T is already registered.
func Register[T any](s *Server) *Store[T] {
	tag := TagOf[T]()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channels[tag]; ok {
		panic(fmt.Sprintf("asset: type %s registered twice", tag))
	}
	ch := newLifecycleChannel(tag)
	s.channels[tag] = ch

	return &Store[T]{
		tag:       tag,
		assets:    make(map[ID]*T),
		lifecycle: ch,
		refs:      s.refs.Sender(),
		tracks:    s.tracks,
		logger:    s.logger.With("asset_type", tag.String()),
		metrics:   s.metrics,
	}
}

// IsRegistered reports whether tag has a lifecycle channel.
func (s *Server) IsRegistered(tag TypeTag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.channels[tag]
	return ok
}

// RegisterLoader installs l for its tag. At most one loader per type.
func (s *Server) RegisterLoader(l Loader) error {
	tag := l.Tag()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channels[tag]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, tag)
	}
	if _, ok := s.loaders[tag]; ok {
		return fmt.Errorf("%w: %s", ErrLoaderExists, tag)
	}
	s.loaders[tag] = l
	s.logger.Debug("loader registered", "asset_type", tag.String(), "mode", l.Mode().String())
	return nil
}

// Loader returns the loader installed for tag.
func (s *Server) Loader(tag TypeTag) (Loader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loaders[tag]
	return l, ok
}

// RefSender returns the shared reference-count producer.
func (s *Server) RefSender() *RefSender { return s.refs.Sender() }

// Tracks returns the registry of pending load requests.
func (s *Server) Tracks() *Tracks { return s.tracks }

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Metrics returns the server's metrics sink.
func (s *Server) Metrics() Metrics { return s.metrics }

// NewHandle returns a strong handle for id.
func NewHandle[T any](s *Server, id ID) *Handle[T] {
	return StrongHandle[T](id, s.refs.Sender())
}

// LoadAsync requests an asset of type T. It reports false if no loader is
// registered for T.
func LoadAsync[T any](s *Server, uri string, params any) (*Track, bool) {
	return s.LoadUntyped(TagOf[T](), uri, params)
}

// LoadUntyped requests an asset of the given type.
//
// Two strong handles for the new ID are created before anything is stored:
// one for the Track and one carried by the request, so the asset cannot be
// collected while the request is in flight. The request is queued for the
// loading queue; this call never blocks and never spawns work. After Close
// the returned Track has already failed with ErrClosed.
func (s *Server) LoadUntyped(tag TypeTag, uri string, params any) (*Track, bool) {
	l, ok := s.Loader(tag)
	if !ok {
		return nil, false
	}

	id := NewID(tag)
	if s.requests.isClosed() {
		t := newTrack(uri, WeakUntyped(id))
		t.finish(LoadFailed, ErrClosed)
		return t, true
	}

	t := newTrack(uri, StrongUntyped(id, s.refs.Sender()))
	hold := t.handle.Clone()
	s.tracks.add(t)

	// Close may still win the race after the check above.
	if err := s.requests.send(Request{URI: uri, ID: id, Loader: l, Params: params, Hold: hold}); err != nil {
		hold.Release()
		t.finish(LoadFailed, err)
		s.tracks.take(id)
		return t, true
	}

	s.logger.Debug("load requested", "uri", uri, "id", id.String())
	return t, true
}

// TakeRequests drains the queued load requests.
func (s *Server) TakeRequests(dst []Request) []Request {
	dst, _ = s.requests.drain(dst)
	return dst
}

// Deliver forwards a loaded payload as a Create event on the channel of tag.
// It panics if tag is not registered or its channel is closed.
func (s *Server) Deliver(tag TypeTag, id ID, payload any) {
	s.mu.RLock()
	ch, ok := s.channels[tag]
	s.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("asset: deliver for unregistered type %s", tag))
	}
	ch.create(id, payload)
}

// FreeUnusedAssets runs the reconciler and sends Free for every ID whose
// reference count reached zero.
func (s *Server) FreeUnusedAssets() ReconcileStats {
	freed := make(map[TypeTag]int)

	s.mu.RLock()
	stats := s.refs.Reconcile(func(id ID) {
		ch, ok := s.channels[id.Tag]
		if !ok {
			panic(fmt.Sprintf("asset: free for unregistered type %s", id.Tag))
		}
		ch.free(id)
		freed[id.Tag]++
	})
	s.mu.RUnlock()

	for tag, n := range freed {
		s.metrics.RecordFree(tag.String(), n)
	}
	s.metrics.RecordReconcile(stats.Events, stats.Freed, stats.Duration)
	if stats.Freed > 0 {
		s.logger.Debug("reconciled references", "events", stats.Events, "freed", stats.Freed)
	}
	return stats
}

// LoadSync loads uri on the calling goroutine with the loader of T and
// inserts the result into T's store (found in w).
func LoadSync[T any](ctx context.Context, s *Server, w *world.World, uri string, params any) (*Handle[T], error) {
	tag := TagOf[T]()
	l, ok := s.Loader(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoLoader, tag)
	}

	start := time.Now()
	payload, err := l.SyncLoad(ctx, w, uri, s, params)
	if err != nil {
		err = NewLoadError(uri, tag, StageSync, err)
		s.metrics.RecordLoad(tag.String(), time.Since(start), err)
		return nil, err
	}

	u, err := l.AddToAsset(w, payload)
	s.metrics.RecordLoad(tag.String(), time.Since(start), err)
	if err != nil {
		return nil, NewLoadError(uri, tag, StageSync, err)
	}
	return Typed[T](u), nil
}

// Close disconnects the request queue, the reference channel and every
// lifecycle channel. Creating a strong handle afterwards panics.
func (s *Server) Close() {
	s.requests.close()
	s.refs.close()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		ch.q.close()
	}
}
