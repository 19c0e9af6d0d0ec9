// Package event implements a double-buffered event log.
//
// Events sent during one update cycle stay readable for that cycle and the
// next. A Reader remembers the last event it saw, so every reader observes each
// retained event exactly once, in send order, regardless of when it was
// created or how often it reads.
//
//	bus := event.New[string]()
//	r := bus.Reader()
//
//	bus.Send("a")
//	bus.Send("b")
//	r.Read() // [a b]
//	r.Read() // []
//
//	bus.Update() // a, b move to the older buffer
//	bus.Update() // a, b are dropped
//
// Events is not safe for concurrent use; it belongs to the goroutine that runs
// the periodic hooks.
package event

// Events is a double-buffered log of T.
type Events[T any] struct {
	older      []T
	newer      []T
	olderStart uint64
	newerStart uint64
	count      uint64
}

// New creates an empty log.
func New[T any]() *Events[T] {
	return &Events[T]{}
}

// Send appends one event.
func (e *Events[T]) Send(v T) {
	e.newer = append(e.newer, v)
	e.count++
}

// SendBatch appends events in order.
func (e *Events[T]) SendBatch(vs []T) {
	e.newer = append(e.newer, vs...)
	e.count += uint64(len(vs))
}

// Update rotates the buffers: events sent before the previous Update are
// dropped, events sent since then become the older buffer.
func (e *Events[T]) Update() {
	clear(e.older)
	e.older, e.newer = e.newer, e.older[:0]
	e.olderStart = e.newerStart
	e.newerStart = e.count
}

// Len returns the number of retained events.
func (e *Events[T]) Len() int {
	return len(e.older) + len(e.newer)
}

// Sent returns the total number of events ever sent.
func (e *Events[T]) Sent() uint64 { return e.count }

// Clear drops all retained events. Existing readers skip to the end.
func (e *Events[T]) Clear() {
	clear(e.older)
	clear(e.newer)
	e.older = e.older[:0]
	e.newer = e.newer[:0]
	e.olderStart = e.count
	e.newerStart = e.count
}

// Reader returns a reader that starts at the oldest retained event.
func (e *Events[T]) Reader() *Reader[T] {
	return &Reader[T]{events: e, last: e.olderStart}
}

// ReaderAtEnd returns a reader that only observes events sent after its
// creation.
func (e *Events[T]) ReaderAtEnd() *Reader[T] {
	return &Reader[T]{events: e, last: e.count}
}

// Reader tracks one consumer's position in an Events log.
type Reader[T any] struct {
	events *Events[T]
	last   uint64
	missed uint64
}

// Read returns every event not yet seen by this reader, oldest first.
func (r *Reader[T]) Read() []T {
	e := r.events
	if r.last < e.olderStart {
		r.missed += e.olderStart - r.last
		r.last = e.olderStart
	}

	var out []T
	if r.last < e.newerStart {
		out = append(out, e.older[r.last-e.olderStart:]...)
		r.last = e.newerStart
	}
	if r.last < e.count {
		out = append(out, e.newer[r.last-e.newerStart:]...)
	}
	r.last = e.count
	return out
}

// Len returns the number of events the next Read would return.
func (r *Reader[T]) Len() int {
	e := r.events
	last := max(r.last, e.olderStart)
	return int(e.count - last)
}

// Missed returns how many events were dropped before this reader saw them.
func (r *Reader[T]) Missed() uint64 { return r.missed }
