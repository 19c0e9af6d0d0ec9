package source

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/assetgo/internal/cache"
)

// DefaultBlockSize is the block size of a CachingSource when none is given.
const DefaultBlockSize = 64 << 10

// CachingSource wraps a Source and caches its bytes in fixed-size blocks.
// It is meant for remote sources where every read is a round trip.
type CachingSource struct {
	inner     Source
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingSource creates a caching wrapper. blockSize defaults to
// DefaultBlockSize if <= 0.
func NewCachingSource(inner Source, c cache.BlockCache, blockSize int64) *CachingSource {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingSource{inner: inner, cache: c, blockSize: blockSize}
}

// Open opens name on the wrapped source.
func (s *CachingSource) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

// List delegates to the wrapped source.
func (s *CachingSource) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Invalidate drops every cached block of name, e.g. after the asset changed.
func (s *CachingSource) Invalidate(name string) {
	s.cache.Invalidate(cache.ForPath(cache.KindSource, name))
}

type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) key(blk int64) cache.Key {
	return cache.Key{Kind: cache.KindSource, Path: b.name, Block: uint64(blk)}
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	size := b.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), size-off)
	first := off / b.blockSize
	last := (off + want - 1) / b.blockSize

	if err := b.fill(ctx, first, last); err != nil {
		return 0, err
	}

	read := 0
	for blk := first; blk <= last; blk++ {
		data, err := b.block(ctx, blk)
		if err != nil {
			return read, err
		}

		blkStart := blk * b.blockSize
		lo := max(blkStart, off)
		hi := min(blkStart+int64(len(data)), off+want)
		if hi <= lo {
			break
		}
		read += copy(p[lo-off:hi-off], data[lo-blkStart:])
	}

	if read < len(p) {
		return read, io.EOF
	}
	return read, nil
}

// fill loads every missing block in [first, last], fetching each contiguous
// run of missing blocks with one read on the inner blob.
func (b *cachingBlob) fill(ctx context.Context, first, last int64) error {
	type run struct{ start, count int64 }
	var missing []run

	for blk := first; blk <= last; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
		} else {
			missing = append(missing, run{start: blk, count: 1})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, r := range missing {
		g.Go(func() error {
			start := r.start * b.blockSize
			length := min(r.count*b.blockSize, b.Size()-start)
			if length <= 0 {
				return nil
			}

			buf := make([]byte, length)
			n, err := b.inner.ReadAt(gctx, buf, start)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := range r.count {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so one cached block does not pin the whole run.
				b.cache.Set(gctx, b.key(r.start+i), append([]byte(nil), buf[lo:hi]...))
			}
			return nil
		})
	}
	return g.Wait()
}

// block returns one block, reading through if the cache dropped it.
func (b *cachingBlob) block(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	start := blk * b.blockSize
	buf := make([]byte, min(b.blockSize, b.Size()-start))
	n, err := b.inner.ReadAt(ctx, buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	if n > 0 {
		b.cache.Set(ctx, b.key(blk), buf)
	}
	return buf, nil
}
