package main

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetgo"
	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/codec"
	"github.com/hupe1980/assetgo/loaders"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/world"
)

type loadCmd struct {
	flags    *rootFlags
	timeout  time.Duration
	interval time.Duration
}

func cmdLoad(flags *rootFlags) *cobra.Command {
	lc := &loadCmd{flags: flags}

	cmd := &cobra.Command{
		Use:   "load URI...",
		Short: "Load assets and print one line per URI",
		Long: `Load assets in the background and print the outcome of each request.

The asset kind is derived from the file extension (after any .lz4 or .zst
suffix): png, jpg, jpeg and gif are textures, json files are materials and
vert, frag, comp, vs, fs and cs files are shaders.`,
		Example: `  assetctl load --root ./assets ui/button.png mats/brick.json
  assetctl load -c assets.yaml shaders/basic.vert.zst`,
		Args: cobra.MinimumNArgs(1),
		RunE: lc.run,
	}
	cmd.Flags().DurationVar(&lc.timeout, "timeout", 30*time.Second, "Give up on requests still pending after this long")
	cmd.Flags().DurationVar(&lc.interval, "tick", 5*time.Millisecond, "Interval between ticks")
	return cmd
}

// stores groups the stores of the built-in asset kinds.
type stores struct {
	textures  *asset.Store[loaders.Texture]
	materials *asset.Store[loaders.Material]
	shaders   *asset.Store[loaders.Shader]
}

func registerBuiltins(app *assetgo.App, src source.Source) (*stores, error) {
	logger := app.Logger().Logger

	textures, err := assetgo.Register[loaders.Texture](app, loaders.NewTextureLoader(src, loaders.WithLogger(logger)))
	if err != nil {
		return nil, err
	}
	materials, err := assetgo.Register[loaders.Material](app, loaders.NewMaterialLoader(src, loaders.WithLogger(logger)))
	if err != nil {
		return nil, err
	}
	shaders, err := assetgo.Register[loaders.Shader](app, loaders.NewShaderLoader(src, loaders.WithLogger(logger)))
	if err != nil {
		return nil, err
	}
	return &stores{textures: textures, materials: materials, shaders: shaders}, nil
}

// request starts loading uri with the loader its extension selects.
func request(app *assetgo.App, uri string) (*asset.Track, error) {
	_, name := codec.CompressionForName(uri)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".png", ".jpg", ".jpeg", ".gif":
		return assetgo.Load[loaders.Texture](app, uri, nil)
	case ".json":
		return assetgo.Load[loaders.Material](app, uri, nil)
	default:
		if _, err := loaders.StageForName(uri); err != nil {
			return nil, fmt.Errorf("unsupported asset kind %q", ext)
		}
		return assetgo.Load[loaders.Shader](app, uri, nil)
	}
}

func (lc *loadCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := lc.flags.loadConfig()
	if err != nil {
		return err
	}

	app := assetgo.New(cfg.Options()...)
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), lc.timeout)
	defer cancel()

	src, closer, err := openSource(ctx, cfg, app)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := registerBuiltins(app, src)
	if err != nil {
		return err
	}
	world.Insert(app.World(), loaders.TextureSettings{MaxDimension: cfg.MaxTextureDimension})

	tracks := make([]*asset.Track, len(args))
	errs := make([]error, len(args))
	for i, uri := range args {
		tracks[i], errs[i] = request(app, uri)
	}

	if err := lc.wait(ctx, app, tracks); err != nil {
		app.Logger().WarnContext(ctx, "stopped waiting for loads", "error", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, uri := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "%s\tfailed\t%v\n", uri, errs[i])
			continue
		}
		if !st.describe(out, uri, tracks[i]) {
			failed++
		}
		tracks[i].Release()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d loads failed", failed, len(args))
	}
	return nil
}

// wait ticks until every track is terminal.
func (lc *loadCmd) wait(ctx context.Context, app *assetgo.App, tracks []*asset.Track) error {
	ticker := time.NewTicker(lc.interval)
	defer ticker.Stop()

	for {
		if _, err := app.Tick(ctx); err != nil {
			return err
		}
		pending := 0
		for _, t := range tracks {
			if t != nil && t.State() == asset.LoadPending {
				pending++
			}
		}
		if pending == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// describe prints one line for t and reports whether it loaded.
func (st *stores) describe(out io.Writer, uri string, t *asset.Track) bool {
	switch t.State() {
	case asset.LoadFailed:
		fmt.Fprintf(out, "%s\tfailed\t%v\n", uri, t.Err())
		return false
	case asset.LoadPending:
		fmt.Fprintf(out, "%s\tpending\n", uri)
		return false
	}

	id := t.ID()
	var detail string
	if tex, ok := st.textures.Get(id); ok {
		detail = fmt.Sprintf("texture %dx%d %s %016x", tex.Width, tex.Height, tex.Format, tex.Fingerprint)
	} else if m, ok := st.materials.Get(id); ok {
		detail = fmt.Sprintf("material %s shader=%s", m.Name, m.Shader)
	} else if sh, ok := st.shaders.Get(id); ok {
		detail = fmt.Sprintf("shader %s %d bytes %016x", sh.Stage, len(sh.Source), sh.Fingerprint)
	}
	fmt.Fprintf(out, "%s\tloaded\t%s\n", uri, detail)
	return true
}
