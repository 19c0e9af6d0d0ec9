package assetgo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/loaders"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/testutil"
	"github.com/hupe1980/assetgo/world"
)

func tickUntil(t *testing.T, app *App, done func(TickStats) bool) TickStats {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		stats, err := app.Tick(t.Context())
		require.NoError(t, err)
		if done(stats) {
			return stats
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("tick condition not reached")
	return TickStats{}
}

func newShaderApp(t *testing.T, optFns ...Option) (*App, *source.MemorySource, *asset.Store[loaders.Shader]) {
	t.Helper()

	src := source.NewMemorySource()
	app := New(append([]Option{WithWorkers(2)}, optFns...)...)
	t.Cleanup(func() { _ = app.Close() })

	shaders, err := Register[loaders.Shader](app, loaders.NewShaderLoader(src))
	require.NoError(t, err)
	return app, src, shaders
}

func TestApp_TickOrder(t *testing.T) {
	app, src, shaders := newShaderApp(t)
	src.Put("basic.frag", []byte("out vec4 color;"))
	reader := Events[loaders.Shader](app).Reader()

	track, err := Load[loaders.Shader](app, "basic.frag", nil)
	require.NoError(t, err)

	// The tick that collects the finished task also stores the asset and
	// publishes its Created event.
	stats := tickUntil(t, app, func(s TickStats) bool { return s.Queue.Finished == 1 })
	assert.Equal(t, 1, stats.Changes.Created)
	assert.Equal(t, asset.LoadLoaded, track.State())
	assert.True(t, shaders.Contains(track.ID()))

	events := reader.Read()
	require.Len(t, events, 1)
	assert.Equal(t, asset.Created, events[0].Kind)
	assert.Equal(t, track.ID(), events[0].ID)

	// Freeing happens before stores are updated, so release is observed in
	// the next tick.
	track.Release()
	stats, err = app.Tick(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Reconcile.Freed)
	assert.Equal(t, 1, stats.Changes.Removed)
	assert.Equal(t, 0, shaders.Len())

	events = reader.Read()
	require.Len(t, events, 1)
	assert.Equal(t, asset.Removed, events[0].Kind)
}

func TestApp_HandleKeepsAssetAlive(t *testing.T) {
	app, src, shaders := newShaderApp(t)
	src.Put("a.vert", []byte("void main() {}"))

	track, err := Load[loaders.Shader](app, "a.vert", nil)
	require.NoError(t, err)
	tickUntil(t, app, func(TickStats) bool { return track.State() == asset.LoadLoaded })

	h := asset.Typed[loaders.Shader](track.Handle().Clone())
	track.Release()

	_, err = app.Tick(t.Context())
	require.NoError(t, err)
	assert.True(t, shaders.Contains(h.ID()))

	h.Release()
	_, err = app.Tick(t.Context())
	require.NoError(t, err)
	assert.False(t, shaders.Contains(h.ID()))
}

func TestApp_LoadFailure(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	app, _, shaders := newShaderApp(t, WithMetricsCollector(metrics))

	track, err := Load[loaders.Shader](app, "missing.vert", nil)
	require.NoError(t, err)

	stats := tickUntil(t, app, func(s TickStats) bool { return s.Queue.Failed == 1 })
	assert.Equal(t, 0, stats.Queue.Pending)
	assert.Equal(t, asset.LoadFailed, track.State())
	assert.True(t, IsNotFound(track.Err()))

	var le *LoadError
	require.ErrorAs(t, track.Err(), &le)
	assert.Equal(t, asset.StageLoad, le.Stage)
	assert.Equal(t, 0, shaders.Len())

	s := metrics.GetStats()
	assert.Equal(t, int64(1), s.LoadCount)
	assert.Equal(t, int64(1), s.LoadErrors)
}

func TestApp_FailureIsolation(t *testing.T) {
	mem := source.NewMemorySource()
	mem.Put("good.vert", []byte("void main() {}"))
	mem.Put("bad.vert", []byte("void main() {}"))

	src := testutil.NewFaultySource(mem)
	src.AddRule("bad", testutil.Fault{FailOnOpen: true})

	app := New(WithWorkers(2))
	defer app.Close()
	shaders, err := Register[loaders.Shader](app, loaders.NewShaderLoader(src))
	require.NoError(t, err)

	good, err := Load[loaders.Shader](app, "good.vert", nil)
	require.NoError(t, err)
	bad, err := Load[loaders.Shader](app, "bad.vert", nil)
	require.NoError(t, err)

	tickUntil(t, app, func(TickStats) bool {
		return good.State() != asset.LoadPending && bad.State() != asset.LoadPending
	})
	assert.Equal(t, asset.LoadLoaded, good.State())
	assert.Equal(t, asset.LoadFailed, bad.State())
	assert.ErrorIs(t, bad.Err(), testutil.ErrInjected)
	assert.True(t, shaders.Contains(good.ID()))
	assert.Equal(t, 0, app.Queue().Len())
}

func TestApp_TextureSettingsFromWorld(t *testing.T) {
	img := testutil.NewRNG(7).PNG(4, 4)

	src := source.NewMemorySource()
	src.Put("big.png", img)
	src.Put("ok.png", img)

	app := New(WithWorkers(1))
	defer app.Close()

	textures, err := Register[loaders.Texture](app, loaders.NewTextureLoader(src))
	require.NoError(t, err)
	world.Insert(app.World(), loaders.TextureSettings{MaxDimension: 2})

	big, err := Load[loaders.Texture](app, "big.png", nil)
	require.NoError(t, err)
	tickUntil(t, app, func(TickStats) bool { return big.State() != asset.LoadPending })
	assert.ErrorIs(t, big.Err(), loaders.ErrTextureTooLarge)

	var le *LoadError
	require.ErrorAs(t, big.Err(), &le)
	assert.Equal(t, asset.StagePrepare, le.Stage)
	assert.False(t, textures.Contains(big.ID()))

	world.Insert(app.World(), loaders.TextureSettings{})
	ok, err := Load[loaders.Texture](app, "ok.png", nil)
	require.NoError(t, err)
	tickUntil(t, app, func(TickStats) bool { return ok.State() != asset.LoadPending })
	require.NoError(t, ok.Err())

	tex, found := textures.Get(ok.ID())
	require.True(t, found)
	assert.Equal(t, 4, tex.Width)
}

func TestApp_LoadSync(t *testing.T) {
	app, src, shaders := newShaderApp(t)
	src.Put("c.comp", []byte("void main() {}"))

	h, err := LoadSync[loaders.Shader](t.Context(), app, "c.comp", nil)
	require.NoError(t, err)
	sh, ok := shaders.Get(h.ID())
	require.True(t, ok)
	assert.Equal(t, loaders.StageCompute, sh.Stage)
}

func TestApp_Errors(t *testing.T) {
	app, _, _ := newShaderApp(t)

	_, err := Load[loaders.Texture](app, "x.png", nil)
	assert.ErrorIs(t, err, ErrNoLoader)

	_, err = Register[loaders.Material](app, loaders.NewShaderLoader(source.NewMemorySource()))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Panics(t, func() { _, _ = Register[loaders.Shader](app, nil) })

	_, err = Register[loaders.Texture](app, nil)
	require.NoError(t, err)
	assert.NotNil(t, Store[loaders.Texture](app))
	assert.Nil(t, Store[int](app))
	assert.Nil(t, Events[int](app))
}

func TestApp_Close(t *testing.T) {
	app := New()
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())

	_, err := app.Tick(t.Context())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = Load[loaders.Shader](app, "a.vert", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestApp_Throttle(t *testing.T) {
	src := source.NewMemorySource()

	app := New()
	defer app.Close()
	assert.Same(t, src, app.Throttle(src))

	limited := New(WithIOLimit(1 << 20))
	defer limited.Close()
	assert.IsType(t, &source.ThrottledSource{}, limited.Throttle(src))
}
