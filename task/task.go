package task

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPoolClosed is returned by tasks spawned on a closed pool.
	ErrPoolClosed = errors.New("task: pool closed")

	// ErrTaskPanicked wraps a panic recovered from a task function.
	ErrTaskPanicked = errors.New("task: panicked")
)

// Task is the pending result of a function running on a Pool.
//
// The owner polls IsFinished and calls Join only once the task is finished,
// so the polling goroutine never waits on background work.
type Task[T any] struct {
	done chan struct{}

	once  sync.Once
	value T
	err   error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Ready returns a finished task holding v and err.
func Ready[T any](v T, err error) *Task[T] {
	t := newTask[T]()
	t.complete(v, err)
	return t
}

// IsFinished reports whether the result is available. It never blocks.
func (t *Task[T]) IsFinished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the task finishes.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Join waits for the task and returns its result.
func (t *Task[T]) Join() (T, error) {
	<-t.done
	return t.value, t.err
}

func (t *Task[T]) complete(v T, err error) {
	t.once.Do(func() {
		t.value = v
		t.err = err
		close(t.done)
	})
}

func (t *Task[T]) run(fn func() (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			t.complete(zero, fmt.Errorf("%w: %v", ErrTaskPanicked, r))
		}
	}()
	v, err := fn()
	t.complete(v, err)
}
