package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingTrack(ts *Tracks, uri string) *Track {
	t := newTrack(uri, WeakUntyped(NewID(TagOf[texture]())))
	ts.add(t)
	return t
}

func TestTracks_LoadedOnce(t *testing.T) {
	ts := newTracks()
	tr := newPendingTrack(ts, "a.png")

	assert.True(t, ts.MarkLoaded(tr.ID()))
	assert.False(t, ts.MarkLoaded(tr.ID()))
	assert.False(t, ts.MarkFailed("a.png", tr.ID(), errors.New("late")))

	assert.Equal(t, LoadLoaded, tr.State())
	assert.NoError(t, tr.Err())
	assert.Zero(t, ts.Len())
}

func TestTracks_FailedPicksMatchingID(t *testing.T) {
	ts := newTracks()
	first := newPendingTrack(ts, "a.png")
	second := newPendingTrack(ts, "a.png")

	pending, ok := ts.Pending("a.png")
	require.True(t, ok)
	assert.Same(t, first, pending)

	boom := errors.New("boom")
	assert.True(t, ts.MarkFailed("a.png", second.ID(), boom))

	assert.Equal(t, LoadPending, first.State())
	assert.Equal(t, LoadFailed, second.State())
	assert.ErrorIs(t, second.Err(), boom)

	_, ok = ts.ByID(second.ID())
	assert.False(t, ok)
	_, ok = ts.ByID(first.ID())
	assert.True(t, ok)

	assert.False(t, ts.MarkFailed("b.png", first.ID(), boom))
	assert.Equal(t, 1, ts.Len())
}

func TestTrack_Wait(t *testing.T) {
	ts := newTracks()
	tr := newPendingTrack(ts, "a.png")

	go func() {
		time.Sleep(10 * time.Millisecond)
		ts.MarkLoaded(tr.ID())
	}()

	state, err := tr.Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, LoadLoaded, state)
}

func TestTrack_WaitCanceled(t *testing.T) {
	ts := newTracks()
	tr := newPendingTrack(ts, "a.png")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	state, err := tr.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, LoadPending, state)
}

func TestLoadError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewLoadError("a.png", TagOf[texture](), StageTouch, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "touch")

	var mismatch error = &TypeMismatchError{Want: TagOf[texture](), Got: "string"}
	assert.ErrorIs(t, mismatch, ErrTypeMismatch)
}
