package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/assetgo/source"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail reads past this offset of the object. -1 to disable.
	FailOnListing  bool
	Err            error
}

// FaultySource is a source.Source wrapper that can inject errors.
type FaultySource struct {
	Source  source.Source
	mu      sync.Mutex
	rules   map[string]Fault // Name pattern -> Fault
	Default Fault            // Fallback

	opens int
	reads int
}

// NewFaultySource creates a new FaultySource wrapping src.
func NewFaultySource(src source.Source) *FaultySource {
	return &FaultySource{
		Source: src,
		rules:  make(map[string]Fault),
		Default: Fault{
			FailAfterBytes: -1, // No limit
		},
	}
}

// AddRule adds a fault injection rule for names containing pattern.
func (f *FaultySource) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Opens returns the number of successful opens so far.
func (f *FaultySource) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// Reads returns the number of ReadAt calls so far.
func (f *FaultySource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *FaultySource) fault(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := f.Default
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

func (f *FaultySource) Open(ctx context.Context, name string) (source.Blob, error) {
	fault := f.fault(name)
	if fault.FailOnOpen {
		return nil, fault.Err
	}

	b, err := f.Source.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.opens++
	f.mu.Unlock()
	return &faultyBlob{Blob: b, fs: f, fault: fault}, nil
}

func (f *FaultySource) List(ctx context.Context, prefix string) ([]string, error) {
	if fault := f.fault(prefix); fault.FailOnListing {
		return nil, fault.Err
	}
	return f.Source.List(ctx, prefix)
}

// faultyBlob hides source.Mappable so every read goes through ReadAt.
type faultyBlob struct {
	source.Blob
	fs    *FaultySource
	fault Fault
}

func (fb *faultyBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	fb.fs.mu.Lock()
	fb.fs.reads++
	fb.fs.mu.Unlock()

	if fb.fault.FailAfterBytes >= 0 && off+int64(len(p)) > fb.fault.FailAfterBytes {
		return 0, fb.fault.Err
	}
	return fb.Blob.ReadAt(ctx, p, off)
}
