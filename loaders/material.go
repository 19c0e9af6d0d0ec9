package loaders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/codec"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/world"
)

// Material is a decoded material description. Texture and shader references
// are URIs; the application loads them separately.
type Material struct {
	Name      string
	BaseColor [4]float32
	Roughness float32
	Metallic  float32
	Shader    string
	Textures  map[string]string
}

// MaterialDefaults is the world resource that fills fields a material file
// leaves out.
type MaterialDefaults struct {
	BaseColor [4]float32
	Roughness float32
	Metallic  float32
	Shader    string
}

// DefaultMaterialDefaults returns opaque white, fully rough, non-metallic.
func DefaultMaterialDefaults() MaterialDefaults {
	return MaterialDefaults{BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1}
}

type materialFile struct {
	Name      string            `json:"name"`
	BaseColor *[4]float32       `json:"base_color"`
	Roughness *float32          `json:"roughness"`
	Metallic  *float32          `json:"metallic"`
	Shader    string            `json:"shader"`
	Textures  map[string]string `json:"textures"`
}

// MaterialLoader loads JSON material files. Prepare snapshots the world's
// MaterialDefaults so the background load never touches the world.
type MaterialLoader struct {
	src    source.Source
	codec  codec.Codec
	logger *slog.Logger
}

// NewMaterialLoader creates a material loader reading from src.
func NewMaterialLoader(src source.Source, optFns ...Option) *MaterialLoader {
	o := newOptions(optFns)
	return &MaterialLoader{src: src, codec: o.codec, logger: o.logger}
}

// Tag returns the Material type tag.
func (l *MaterialLoader) Tag() asset.TypeTag { return asset.TagOf[Material]() }

// Mode returns ModePrepare.
func (l *MaterialLoader) Mode() asset.AsyncLoadMode { return asset.ModePrepare }

// AsyncTouch is unused in ModePrepare.
func (l *MaterialLoader) AsyncTouch(context.Context, *asset.Server, string) (any, error) {
	return nil, nil
}

// Prepare snapshots the world's MaterialDefaults.
func (l *MaterialLoader) Prepare(w *world.World, _ any) any {
	return world.GetOr(w, DefaultMaterialDefaults())
}

// AsyncLoad decodes the material file and fills unset fields from the defaults.
func (l *MaterialLoader) AsyncLoad(ctx context.Context, _ *asset.Server, uri string, touch any, _ any) (any, error) {
	defaults, ok := touch.(MaterialDefaults)
	if !ok {
		defaults = DefaultMaterialDefaults()
	}

	data, err := readAsset(ctx, l.src, uri)
	if err != nil {
		return nil, err
	}

	var f materialFile
	if err := l.codec.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}

	m := Material{
		Name:      f.Name,
		BaseColor: defaults.BaseColor,
		Roughness: defaults.Roughness,
		Metallic:  defaults.Metallic,
		Shader:    f.Shader,
		Textures:  f.Textures,
	}
	if m.Name == "" {
		m.Name = baseName(uri)
	}
	if f.BaseColor != nil {
		m.BaseColor = *f.BaseColor
	}
	if f.Roughness != nil {
		m.Roughness = *f.Roughness
	}
	if f.Metallic != nil {
		m.Metallic = *f.Metallic
	}
	if m.Shader == "" {
		m.Shader = defaults.Shader
	}

	l.logger.DebugContext(ctx, "material decoded", "uri", uri, "name", m.Name)
	return m, nil
}

// SyncLoad prepares and loads on the calling goroutine.
func (l *MaterialLoader) SyncLoad(ctx context.Context, w *world.World, uri string, s *asset.Server, params any) (any, error) {
	return l.AsyncLoad(ctx, s, uri, l.Prepare(w, nil), params)
}

// AddToAsset inserts a Material payload into the world's material store.
func (l *MaterialLoader) AddToAsset(w *world.World, payload any) (*asset.UntypedHandle, error) {
	return asset.AddPayload[Material](w, payload)
}
