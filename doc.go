// Package assetgo provides a runtime asset manager for Go.
//
// Assets (textures, materials, shaders, ...) are referenced through typed
// handles. A strong handle keeps its asset alive; once the last strong handle
// is released, the asset is freed on the next tick. Loading runs in the
// background through a Touch → Prepare → Load pipeline chosen per loader.
//
// # Quick Start
//
//	app := assetgo.New(assetgo.WithWorkers(4))
//	defer app.Close()
//
//	src := source.NewLocalSource("./assets")
//	textures, _ := assetgo.Register[loaders.Texture](app, loaders.NewTextureLoader(src))
//
//	track, _ := assetgo.Load[loaders.Texture](app, "ui/button.png", nil)
//	defer track.Release()
//
//	for track.State() == asset.LoadPending {
//	    app.Tick(ctx)
//	}
//	tex, _ := textures.Get(track.ID())
//
// # Ticks
//
// Tick runs the periodic hooks in a fixed order on the calling goroutine:
//
//  1. free assets whose reference count dropped to zero
//  2. advance the loading queue (start new requests, collect finished tasks)
//  3. apply lifecycle events to every store
//  4. flush store changes into the per-type event logs
//  5. rotate the event logs
//
// The owning goroutine never waits on a background task. Handles may be
// cloned and released from any goroutine.
//
// # Configuration
//
// Options can be set in code or loaded from YAML:
//
//	cfg, err := assetgo.LoadConfig("assets.yaml")
//	app := assetgo.New(cfg.Options()...)
//
// # Sources
//
// Loaders read bytes through source.Source: in-memory, local files (memory
// mapped), MinIO and Amazon S3, optionally behind a block cache and an IO
// rate limit. Files ending in .lz4 or .zst are packed containers (see codec).
package assetgo
