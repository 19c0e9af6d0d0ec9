package asset

import "sync"

// mpsc is an unbounded multi-producer/single-consumer queue.
//
// Producers never block: handle clone/release happens on the same goroutine
// that later drains the queue, so a bounded Go channel could deadlock there.
type mpsc[T any] struct {
	mu     sync.Mutex
	buf    []T
	closed bool
}

func newMPSC[T any]() *mpsc[T] {
	return &mpsc[T]{buf: make([]T, 0, 64)}
}

func (q *mpsc[T]) send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.buf = append(q.buf, v)
	return nil
}

// drain moves every queued item into dst and returns it. The returned bool is
// false once the queue has been closed.
func (q *mpsc[T]) drain(dst []T) ([]T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	dst = append(dst, q.buf...)
	clear(q.buf)
	q.buf = q.buf[:0]
	return dst, !q.closed
}

func (q *mpsc[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

func (q *mpsc[T]) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *mpsc[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
