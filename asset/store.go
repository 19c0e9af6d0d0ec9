package asset

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"

	"github.com/hupe1980/assetgo/event"
)

// AssetEventKind is the kind of change a store reports.
type AssetEventKind uint8

const (
	Created AssetEventKind = iota + 1
	Modified
	Removed
)

func (k AssetEventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("AssetEventKind(%d)", k)
	}
}

// AssetEvent announces a change to one asset of type T.
type AssetEvent[T any] struct {
	Kind AssetEventKind
	ID   ID
}

// Handle returns a weak handle to the changed asset.
func (e AssetEvent[T]) Handle() *Handle[T] { return WeakHandle[T](e.ID) }

// Store owns every live value of type T.
//
// It is mutated by its own methods and by draining its lifecycle channel in
// UpdateAssets. Changes are buffered until FlushEvents. A Store belongs to the
// goroutine that runs the periodic hooks and is not safe for concurrent use.
type Store[T any] struct {
	tag       TypeTag
	assets    map[ID]*T
	changes   []AssetEvent[T]
	lifecycle *lifecycleChannel
	refs      *RefSender
	tracks    *Tracks
	logger    *slog.Logger
	metrics   Metrics
	scratch   []LifecycleEvent
}

// Tag returns the type tag of T.
func (s *Store[T]) Tag() TypeTag { return s.tag }

// Add inserts v under a fresh ID, emits Created and returns a strong handle.
func (s *Store[T]) Add(v T) *Handle[T] {
	id := NewID(s.tag)
	s.SetUntracked(id, v)
	return StrongHandle[T](id, s.refs)
}

// AddWeak inserts v under a fresh ID and returns a weak handle. The asset is
// never freed by reference counting.
func (s *Store[T]) AddWeak(v T) *Handle[T] {
	id := NewID(s.tag)
	s.SetUntracked(id, v)
	return WeakHandle[T](id)
}

// Handle returns a new strong handle for id.
func (s *Store[T]) Handle(id ID) *Handle[T] {
	return StrongHandle[T](id, s.refs)
}

// SetUntracked inserts or replaces the value of id. It emits Modified when id
// was present and Created otherwise.
func (s *Store[T]) SetUntracked(id ID, v T) {
	if cur, ok := s.assets[id]; ok {
		*cur = v
		s.changes = append(s.changes, AssetEvent[T]{Kind: Modified, ID: id})
		return
	}
	s.assets[id] = &v
	s.changes = append(s.changes, AssetEvent[T]{Kind: Created, ID: id})
}

// Get returns the value of id.
func (s *Store[T]) Get(id ID) (T, bool) {
	p, ok := s.assets[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// GetMut returns a pointer to the value of id and emits Modified.
func (s *Store[T]) GetMut(id ID) (*T, bool) {
	p, ok := s.assets[id]
	if !ok {
		return nil, false
	}
	s.changes = append(s.changes, AssetEvent[T]{Kind: Modified, ID: id})
	return p, true
}

// Contains reports whether id is present.
func (s *Store[T]) Contains(id ID) bool {
	_, ok := s.assets[id]
	return ok
}

// Remove deletes id and returns its value. Removed is emitted only if the
// entry existed.
func (s *Store[T]) Remove(id ID) (T, bool) {
	p, ok := s.assets[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.assets, id)
	s.changes = append(s.changes, AssetEvent[T]{Kind: Removed, ID: id})
	return *p, true
}

// Len returns the number of live assets.
func (s *Store[T]) Len() int { return len(s.assets) }

// All iterates over every live asset. Iteration order is unspecified.
func (s *Store[T]) All() iter.Seq2[ID, T] {
	return func(yield func(ID, T) bool) {
		for id, p := range s.assets {
			if !yield(id, *p) {
				return
			}
		}
	}
}

// IDs iterates over the IDs of every live asset.
func (s *Store[T]) IDs() iter.Seq[ID] {
	return maps.Keys(s.assets)
}

// PendingEvents returns the number of changes not yet flushed.
func (s *Store[T]) PendingEvents() int { return len(s.changes) }

// UpdateAssets drains the lifecycle channel of T.
//
// Create payloads that are not of type T are logged and dropped; the
// request's track stays pending. A closed channel panics.
func (s *Store[T]) UpdateAssets() {
	var open bool
	s.scratch, open = s.lifecycle.q.drain(s.scratch[:0])
	if !open {
		panic(fmt.Sprintf("asset: lifecycle channel of %s disconnected", s.tag))
	}

	for _, ev := range s.scratch {
		switch ev.Kind {
		case LifecycleCreate:
			v, ok := ev.Payload.(T)
			if !ok {
				err := &TypeMismatchError{ID: ev.ID, Want: s.tag, Got: fmt.Sprintf("%T", ev.Payload)}
				s.logger.Error("dropping asset payload", "id", ev.ID.String(), "error", err)
				s.metrics.RecordTypeMismatch(s.tag.String())
				continue
			}
			s.SetUntracked(ev.ID, v)
			s.tracks.MarkLoaded(ev.ID)
		case LifecycleFree:
			s.Remove(ev.ID)
		}
	}
	clear(s.scratch)
}

// FlushEvents moves the buffered changes into bus, preserving order.
func (s *Store[T]) FlushEvents(bus *event.Events[AssetEvent[T]]) {
	if len(s.changes) == 0 {
		return
	}
	bus.SendBatch(s.changes)
	clear(s.changes)
	s.changes = s.changes[:0]
}
