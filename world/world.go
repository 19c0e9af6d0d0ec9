// Package world provides the type-keyed resource registry that loaders see.
//
// A World holds at most one value per Go type. Asset stores, per-type event
// buses and loader settings (for example texture limits) live here, so a
// loader's Prepare and AddToAsset hooks can find what they need without
// holding references to the application.
package world

import (
	"fmt"
	"reflect"
	"sync"
)

// World maps a Go type to its single resource value.
// It is safe for concurrent use.
type World struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// New creates an empty World.
func New() *World {
	return &World{resources: make(map[reflect.Type]any)}
}

// Insert stores v as the resource of type T, replacing any previous value.
func Insert[T any](w *World, v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resources[reflect.TypeFor[T]()] = v
}

// Get returns the resource of type T.
func Get[T any](w *World) (T, bool) {
	if w == nil {
		var zero T
		return zero, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// GetOr returns the resource of type T, or def if it is absent.
func GetOr[T any](w *World, def T) T {
	if v, ok := Get[T](w); ok {
		return v
	}
	return def
}

// MustGet returns the resource of type T and panics if it is absent.
func MustGet[T any](w *World) T {
	v, ok := Get[T](w)
	if !ok {
		panic(fmt.Sprintf("world: no resource of type %s", reflect.TypeFor[T]()))
	}
	return v
}

// Has reports whether a resource of type T exists.
func Has[T any](w *World) bool {
	_, ok := Get[T](w)
	return ok
}

// Remove deletes and returns the resource of type T.
func Remove[T any](w *World) (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := reflect.TypeFor[T]()
	v, ok := w.resources[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, key)
	return v.(T), true
}

// Len returns the number of resources.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.resources)
}
