package asset

import (
	"context"
	"fmt"
	"sync"
)

// LoadState is the progress of a load request.
type LoadState uint8

const (
	LoadPending LoadState = iota
	LoadLoaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", s)
	}
}

// Track is the progress/result record of one load request.
//
// The track owns a strong handle to the requested asset, so the asset cannot be
// collected while the load is in flight. Call Release once the caller has
// cloned the handle it needs (or no longer cares about the asset).
type Track struct {
	uri    string
	handle *UntypedHandle

	mu    sync.Mutex
	state LoadState
	err   error
	done  chan struct{}
}

func newTrack(uri string, handle *UntypedHandle) *Track {
	return &Track{uri: uri, handle: handle, done: make(chan struct{})}
}

// URI returns the requested location.
func (t *Track) URI() string { return t.uri }

// ID returns the identifier allocated for the request.
func (t *Track) ID() ID { return t.handle.ID() }

// Handle returns the track's handle. Clone it to keep the asset alive beyond
// the track.
func (t *Track) Handle() *UntypedHandle { return t.handle }

// Release releases the track's strong handle.
func (t *Track) Release() { t.handle.Release() }

// State returns the current state.
func (t *Track) State() LoadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure cause once the track has failed.
func (t *Track) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed when the track reaches a terminal state.
func (t *Track) Done() <-chan struct{} { return t.done }

// Wait blocks until the track is terminal or ctx is done. It must not be
// called from the goroutine that drives the periodic hooks.
func (t *Track) Wait(ctx context.Context) (LoadState, error) {
	select {
	case <-t.done:
		return t.State(), t.Err()
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
}

func (t *Track) finish(state LoadState, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != LoadPending {
		return false
	}
	t.state = state
	t.err = err
	close(t.done)
	return true
}

// Tracks indexes the pending load requests by URI and by ID.
// It is safe for concurrent use.
type Tracks struct {
	mu    sync.Mutex
	byURI map[string][]*Track
	byID  map[ID]*Track
}

func newTracks() *Tracks {
	return &Tracks{
		byURI: make(map[string][]*Track),
		byID:  make(map[ID]*Track),
	}
}

func (ts *Tracks) add(t *Track) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.byURI[t.uri] = append(ts.byURI[t.uri], t)
	ts.byID[t.ID()] = t
}

// Pending returns the oldest pending track for uri.
func (ts *Tracks) Pending(uri string) (*Track, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	list := ts.byURI[uri]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// ByID returns the pending track for id.
func (ts *Tracks) ByID(id ID) (*Track, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.byID[id]
	return t, ok
}

// Len returns the number of pending tracks.
func (ts *Tracks) Len() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.byID)
}

// MarkLoaded resolves the pending track of id. It reports whether this call
// performed the transition.
func (ts *Tracks) MarkLoaded(id ID) bool {
	t := ts.take(id)
	if t == nil {
		return false
	}
	return t.finish(LoadLoaded, nil)
}

// MarkFailed looks up the pending request for uri and fails it. When several
// requests for uri are pending, the one with the given id is chosen. It
// reports whether this call performed the transition.
func (ts *Tracks) MarkFailed(uri string, id ID, err error) bool {
	ts.mu.Lock()
	var t *Track
	for _, cand := range ts.byURI[uri] {
		if cand.ID() == id {
			t = cand
			break
		}
	}
	if t != nil {
		ts.removeLocked(t)
	}
	ts.mu.Unlock()

	if t == nil {
		return false
	}
	return t.finish(LoadFailed, err)
}

func (ts *Tracks) take(id ID) *Track {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.byID[id]
	if !ok {
		return nil
	}
	ts.removeLocked(t)
	return t
}

func (ts *Tracks) removeLocked(t *Track) {
	delete(ts.byID, t.ID())
	list := ts.byURI[t.uri]
	for i, cand := range list {
		if cand == t {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(ts.byURI, t.uri)
	} else {
		ts.byURI[t.uri] = list
	}
}
