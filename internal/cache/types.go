package cache

import (
	"context"
	"fmt"
)

// Kind separates key spaces sharing one cache.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSource       // raw source blocks
	KindUnpacked     // decompressed container payloads
)

// Key identifies one cached block. Path names the source object and Block is
// the block index within it.
type Key struct {
	Kind  Kind
	Path  string
	Block uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s#%d", k.Kind, k.Path, k.Block)
}

// BlockCache is a byte cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok is false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. The caller must not modify b afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Close releases any resources.
	Close() error
	// Stats returns hit and miss counts.
	Stats() (hits, misses int64)
}

// ForPath returns a predicate matching every block of path.
func ForPath(kind Kind, path string) func(Key) bool {
	return func(k Key) bool { return k.Kind == kind && k.Path == path }
}
