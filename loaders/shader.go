package loaders

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/world"
)

// ShaderStage is the pipeline stage a shader runs in.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota + 1
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderStage(%d)", s)
	}
}

var shaderStages = map[string]ShaderStage{
	".vert": StageVertex,
	".vs":   StageVertex,
	".frag": StageFragment,
	".fs":   StageFragment,
	".comp": StageCompute,
	".cs":   StageCompute,
}

// StageForName derives the shader stage from a file name.
func StageForName(uri string) (ShaderStage, error) {
	stage, ok := shaderStages[extension(uri)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownShaderStage, uri)
	}
	return stage, nil
}

// Shader is shader source text.
type Shader struct {
	Stage       ShaderStage
	Source      string
	Fingerprint uint64
}

// ShaderLoader loads shader sources. It has no touch or prepare step.
type ShaderLoader struct {
	src    source.Source
	logger *slog.Logger
}

// NewShaderLoader creates a shader loader reading from src.
func NewShaderLoader(src source.Source, optFns ...Option) *ShaderLoader {
	o := newOptions(optFns)
	return &ShaderLoader{src: src, logger: o.logger}
}

// Tag returns the Shader type tag.
func (l *ShaderLoader) Tag() asset.TypeTag { return asset.TagOf[Shader]() }

// Mode returns ModeOnlyLoad.
func (l *ShaderLoader) Mode() asset.AsyncLoadMode { return asset.ModeOnlyLoad }

// AsyncTouch is unused in ModeOnlyLoad.
func (l *ShaderLoader) AsyncTouch(context.Context, *asset.Server, string) (any, error) {
	return nil, nil
}

// Prepare is unused in ModeOnlyLoad.
func (l *ShaderLoader) Prepare(*world.World, any) any { return nil }

// AsyncLoad reads the shader source and derives its stage from the name.
func (l *ShaderLoader) AsyncLoad(ctx context.Context, _ *asset.Server, uri string, _ any, _ any) (any, error) {
	stage, err := StageForName(uri)
	if err != nil {
		return nil, err
	}

	data, err := readAsset(ctx, l.src, uri)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, uri)
	}

	l.logger.DebugContext(ctx, "shader read", "uri", uri, "stage", stage.String())
	return Shader{Stage: stage, Source: string(data), Fingerprint: Fingerprint(data)}, nil
}

// SyncLoad loads on the calling goroutine.
func (l *ShaderLoader) SyncLoad(ctx context.Context, _ *world.World, uri string, s *asset.Server, params any) (any, error) {
	return l.AsyncLoad(ctx, s, uri, nil, params)
}

// AddToAsset inserts a Shader payload into the world's shader store.
func (l *ShaderLoader) AddToAsset(w *world.World, payload any) (*asset.UntypedHandle, error) {
	return asset.AddPayload[Shader](w, payload)
}
