package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist. It is os.ErrNotExist
// so errors from the local filesystem match it too.
var ErrNotFound = os.ErrNotExist

// Source gives loaders read access to asset bytes.
type Source interface {
	// Open opens an object for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to one object.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Size() int64
	Close() error
}

// Mappable is implemented by blobs whose contents are already in memory.
type Mappable interface {
	// Bytes returns the contents without copying. The slice is valid until
	// the blob is closed.
	Bytes() ([]byte, error)
}

// ReadFile returns the full contents of name.
func ReadFile(ctx context.Context, src Source, name string) ([]byte, error) {
	b, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		// The mapping goes away on Close.
		return append([]byte(nil), data...), nil
	}

	return readRange(ctx, b, 0, b.Size())
}

// ReadHeader returns up to n leading bytes of name. Loaders use it to sniff
// formats cheaply during touch.
func ReadHeader(ctx context.Context, src Source, name string, n int64) ([]byte, error) {
	b, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	return readRange(ctx, b, 0, min(n, b.Size()))
}

func readRange(ctx context.Context, b Blob, off, n int64) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	read, err := b.ReadAt(ctx, buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if int64(read) != n {
		return nil, fmt.Errorf("source: short read: got %d of %d bytes: %w", read, n, io.ErrUnexpectedEOF)
	}
	return buf, nil
}

// Reader adapts a blob to io.Reader, io.ReaderAt and io.Seeker.
func Reader(ctx context.Context, b Blob) *io.SectionReader {
	return io.NewSectionReader(readerAt{ctx: ctx, b: b}, 0, b.Size())
}

type readerAt struct {
	ctx context.Context
	b   Blob
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	return r.b.ReadAt(r.ctx, p, off)
}
