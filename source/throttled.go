package source

import (
	"context"

	"github.com/hupe1980/assetgo/internal/resource"
)

// ThrottledSource charges every read against the controller's IO limit.
type ThrottledSource struct {
	inner Source
	rc    *resource.Controller
}

// NewThrottledSource wraps inner.
func NewThrottledSource(inner Source, rc *resource.Controller) *ThrottledSource {
	return &ThrottledSource{inner: inner, rc: rc}
}

// Open opens name on the wrapped source.
func (s *ThrottledSource) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, rc: s.rc}, nil
}

// List delegates to the wrapped source.
func (s *ThrottledSource) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// throttledBlob deliberately hides Mappable so whole-file reads are charged.
type throttledBlob struct {
	Blob
	rc *resource.Controller
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.rc.AcquireIO(ctx, len(p)); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}
