package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetgo/internal/cache"
	"github.com/hupe1980/assetgo/internal/resource"
)

func TestMemorySource(t *testing.T) {
	src := NewMemorySource()
	src.Put("textures/a.png", []byte("aaaa"))
	src.Put("textures/b.png", []byte("bb"))
	src.Put("shaders/x.vert", []byte("void main(){}"))

	data, err := ReadFile(t.Context(), src, "textures/a.png")
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))

	names, err := src.List(t.Context(), "textures/")
	require.NoError(t, err)
	assert.Equal(t, []string{"textures/a.png", "textures/b.png"}, names)

	src.Delete("textures/a.png")
	_, err = src.Open(t.Context(), "textures/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySource_ReadAt(t *testing.T) {
	src := NewMemorySource()
	src.Put("a", []byte("hello world"))

	b, err := src.Open(t.Context(), "a")
	require.NoError(t, err)
	defer b.Close()

	buf := make([]byte, 5)
	n, err := b.ReadAt(t.Context(), buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))

	n, err = b.ReadAt(t.Context(), make([]byte, 10), 6)
	assert.Equal(t, 5, n)
	assert.ErrorIs(t, err, io.EOF)

	got, err := io.ReadAll(Reader(t.Context(), b))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestReadHeader(t *testing.T) {
	src := NewMemorySource()
	src.Put("a", []byte("0123456789"))
	src.Put("empty", nil)

	h, err := ReadHeader(t.Context(), src, "a", 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(h))

	h, err = ReadHeader(t.Context(), src, "a", 100)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(h))

	h, err = ReadHeader(t.Context(), src, "empty", 4)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "textures", "a.png"), []byte("png!"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o600))

	src := NewLocalSource(dir)

	data, err := ReadFile(t.Context(), src, "textures/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png!", string(data))

	names, err := src.List(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"readme.txt", "textures/a.png"}, names)

	_, err = src.Open(t.Context(), "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Open(t.Context(), "../escape")
	assert.ErrorIs(t, err, ErrInvalidName)
}

// countingSource counts ReadAt calls on its blobs.
type countingSource struct {
	Source
	reads atomic.Int64
}

func (s *countingSource) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.Source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func TestCachingSource(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 100) // 1600 bytes
	mem := NewMemorySource()
	mem.Put("big.bin", data)

	inner := &countingSource{Source: mem}
	src := NewCachingSource(inner, cache.NewLRUBlockCache(1<<20, nil), 256)

	got, err := ReadFile(t.Context(), src, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	first := inner.reads.Load()
	assert.Positive(t, first)

	// A second full read and an unaligned read are served from the cache.
	got, err = ReadFile(t.Context(), src, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	b, err := src.Open(t.Context(), "big.bin")
	require.NoError(t, err)
	buf := make([]byte, 300)
	n, err := b.ReadAt(t.Context(), buf, 250)
	require.NoError(t, err)
	assert.Equal(t, data[250:550], buf[:n])
	assert.Equal(t, first, inner.reads.Load())

	// Reading past the end reports EOF with the bytes that exist.
	n, err = b.ReadAt(t.Context(), make([]byte, 100), 1550)
	assert.Equal(t, 50, n)
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, b.Close())

	src.Invalidate("big.bin")
	_, err = ReadFile(t.Context(), src, "big.bin")
	require.NoError(t, err)
	assert.Greater(t, inner.reads.Load(), first)
}

func TestCachingSource_CanceledContext(t *testing.T) {
	mem := NewMemorySource()
	mem.Put("a", []byte("abc"))
	src := NewCachingSource(mem, cache.NewLRUBlockCache(1024, nil), 0)

	b, err := src.Open(t.Context(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = b.ReadAt(ctx, make([]byte, 3), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThrottledSource(t *testing.T) {
	mem := NewMemorySource()
	mem.Put("a", []byte("abc"))
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	src := NewThrottledSource(mem, rc)

	b, err := src.Open(t.Context(), "a")
	require.NoError(t, err)
	_, mappable := b.(Mappable)
	assert.False(t, mappable)
	require.NoError(t, b.Close())

	data, err := ReadFile(t.Context(), src, "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	names, err := src.List(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}
