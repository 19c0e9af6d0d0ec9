package asset

import (
	"fmt"
	"math/rand/v2"
	"reflect"
)

// TypeTag identifies the Go type of an asset at runtime.
//
// Two tags are equal iff they were derived from the same type, so a TypeTag can
// be used as a map key for per-type routing (lifecycle channels, loaders).
type TypeTag struct {
	rt reflect.Type
}

// TagOf returns the TypeTag of T.
func TagOf[T any]() TypeTag {
	return TypeTag{rt: reflect.TypeFor[T]()}
}

// Type returns the underlying reflect.Type (nil for the zero tag).
func (t TypeTag) Type() reflect.Type { return t.rt }

// IsZero reports whether t is the zero tag.
func (t TypeTag) IsZero() bool { return t.rt == nil }

func (t TypeTag) String() string {
	if t.rt == nil {
		return "<none>"
	}
	return t.rt.String()
}

// ID is an opaque, comparable asset identifier: a type tag plus a random value.
//
// IDs are unique in practice; collisions are treated as negligible.
type ID struct {
	Tag   TypeTag
	Value uint64
}

// NewID returns a fresh random ID for the given tag. Value is never zero.
func NewID(tag TypeTag) ID {
	for {
		if v := rand.Uint64(); v != 0 {
			return ID{Tag: tag, Value: v}
		}
	}
}

// IsZero reports whether id is the zero (invalid) ID.
func (id ID) IsZero() bool { return id.Value == 0 && id.Tag.IsZero() }

func (id ID) String() string {
	return fmt.Sprintf("%s#%016x", id.Tag, id.Value)
}
