package asset

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetgo/event"
)

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordLoad(tag string, d time.Duration, err error) {
	m.Called(tag, d, err)
}

func (m *mockMetrics) RecordFree(tag string, count int) {
	m.Called(tag, count)
}

func (m *mockMetrics) RecordReconcile(events, freed int, d time.Duration) {
	m.Called(events, freed, d)
}

func (m *mockMetrics) RecordTypeMismatch(tag string) {
	m.Called(tag)
}

func readAll[T any](bus *event.Events[AssetEvent[T]]) []AssetEvent[T] {
	return bus.Reader().Read()
}

func TestStore_AddGetRemove(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)

	h := store.Add(texture{Name: "grass", Width: 64})
	defer h.Release()

	got, ok := store.Get(h.ID())
	require.True(t, ok)
	assert.Equal(t, texture{Name: "grass", Width: 64}, got)
	assert.True(t, store.Contains(h.ID()))
	assert.Equal(t, 1, store.Len())

	v, ok := store.Remove(h.ID())
	require.True(t, ok)
	assert.Equal(t, "grass", v.Name)
	assert.False(t, store.Contains(h.ID()))

	_, ok = store.Remove(h.ID())
	assert.False(t, ok)

	bus := event.New[AssetEvent[texture]]()
	store.FlushEvents(bus)
	assert.Equal(t, []AssetEvent[texture]{
		{Kind: Created, ID: h.ID()},
		{Kind: Removed, ID: h.ID()},
	}, readAll(bus))
	assert.Zero(t, store.PendingEvents())
}

func TestStore_SetUntrackedUpserts(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	id := NewID(store.Tag())

	store.SetUntracked(id, texture{Name: "a"})
	store.SetUntracked(id, texture{Name: "b"})

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, 1, store.Len())

	bus := event.New[AssetEvent[texture]]()
	store.FlushEvents(bus)
	assert.Equal(t, []AssetEvent[texture]{
		{Kind: Created, ID: id},
		{Kind: Modified, ID: id},
	}, readAll(bus))
}

func TestStore_GetMutEmitsModified(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	h := store.AddWeak(texture{Width: 1})
	assert.True(t, h.IsWeak())

	p, ok := store.GetMut(h.ID())
	require.True(t, ok)
	p.Width = 2

	got, _ := store.Get(h.ID())
	assert.Equal(t, 2, got.Width)

	_, ok = store.GetMut(NewID(store.Tag()))
	assert.False(t, ok)

	bus := event.New[AssetEvent[texture]]()
	store.FlushEvents(bus)
	evs := readAll(bus)
	require.Len(t, evs, 2)
	assert.Equal(t, Modified, evs[1].Kind)
	assert.Equal(t, h.ID(), evs[1].Handle().ID())
}

func TestStore_All(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	for _, name := range []string{"a", "b", "c"} {
		store.AddWeak(texture{Name: name})
	}

	names := make([]string, 0, 3)
	for _, v := range store.All() {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
	assert.Len(t, slices.Collect(store.IDs()), 3)
}

// A single strong handle that is cloned and released twice ends with exactly
// one free and one Removed event.
func TestStore_ReleaseLastHandleFrees(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	bus := event.New[AssetEvent[texture]]()

	h := store.Add(texture{Name: "rock"})
	id := h.ID()
	store.FlushEvents(bus)
	reader := bus.ReaderAtEnd()

	h2 := h.Clone()
	h.Release()
	h2.Release()

	stats := s.FreeUnusedAssets()
	assert.Equal(t, 1, stats.Freed)

	store.UpdateAssets()
	store.FlushEvents(bus)

	assert.False(t, store.Contains(id))
	assert.Equal(t, []AssetEvent[texture]{{Kind: Removed, ID: id}}, reader.Read())

	// Nothing left to reconcile.
	assert.Zero(t, s.FreeUnusedAssets().Freed)
}

func TestStore_UpdateAssetsAppliesCreate(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	id := NewID(store.Tag())

	s.Deliver(store.Tag(), id, texture{Name: "delivered"})
	assert.False(t, store.Contains(id))

	store.UpdateAssets()
	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "delivered", got.Name)
}

func TestStore_UpdateAssetsDropsMismatchedPayload(t *testing.T) {
	m := new(mockMetrics)
	m.On("RecordTypeMismatch", "asset.texture").Once()

	s := NewServer(WithMetrics(m))
	store := Register[texture](s)
	require.NoError(t, s.RegisterLoader(&stubLoader{tag: store.Tag()}))

	track, ok := LoadAsync[texture](s, "grass.png", nil)
	require.True(t, ok)
	defer track.Release()

	s.Deliver(store.Tag(), track.ID(), mesh{Vertices: 3})
	store.UpdateAssets()

	assert.Zero(t, store.Len())
	assert.Equal(t, LoadPending, track.State())
	m.AssertExpectations(t)
}

func TestStore_UpdateAssetsResolvesTrack(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	require.NoError(t, s.RegisterLoader(&stubLoader{tag: store.Tag()}))

	track, ok := LoadAsync[texture](s, "grass.png", nil)
	require.True(t, ok)

	s.Deliver(store.Tag(), track.ID(), texture{Name: "grass"})
	store.UpdateAssets()

	assert.Equal(t, LoadLoaded, track.State())
	assert.Zero(t, s.Tracks().Len())
	select {
	case <-track.Done():
	default:
		t.Fatal("track not done")
	}

	// The track's strong handle keeps the asset alive until released.
	assert.Zero(t, s.FreeUnusedAssets().Freed)
	track.Release()
	assert.Equal(t, 1, s.FreeUnusedAssets().Freed)
	store.UpdateAssets()
	assert.Zero(t, store.Len())
}

func TestStore_UpdateAssetsPanicsWhenClosed(t *testing.T) {
	s := NewServer()
	store := Register[texture](s)
	s.Close()

	assert.Panics(t, func() { store.UpdateAssets() })
}
