package loaders

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/codec"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/world"
)

// touchHeaderBytes is how much of an unpacked image the touch step reads.
// It covers the header of every supported format with typical metadata.
const touchHeaderBytes = 64 << 10

// Texture is a decoded RGBA image.
type Texture struct {
	Width       int
	Height      int
	Format      string
	SRGB        bool
	Pixels      []byte
	Fingerprint uint64
}

// TextureInfo is the result of the touch step: the image header.
type TextureInfo struct {
	Format string
	Width  int
	Height int
}

// TextureSettings is the world resource consulted when preparing a texture.
type TextureSettings struct {
	// MaxDimension rejects textures wider or taller than this. Zero disables the check.
	MaxDimension int
}

// TextureParams is what Prepare hands to the load step.
type TextureParams struct {
	Info TextureInfo
}

// TextureOptions are optional per-request parameters.
type TextureOptions struct {
	SRGB bool
}

// TextureLoader loads png, jpeg and gif images. It reads the image header in
// the touch step, so oversize images are rejected before any pixel is decoded.
type TextureLoader struct {
	src    source.Source
	logger *slog.Logger
}

// NewTextureLoader creates a texture loader reading from src.
func NewTextureLoader(src source.Source, optFns ...Option) *TextureLoader {
	o := newOptions(optFns)
	return &TextureLoader{src: src, logger: o.logger}
}

// Tag returns the Texture type tag.
func (l *TextureLoader) Tag() asset.TypeTag { return asset.TagOf[Texture]() }

// Mode returns ModeTouch.
func (l *TextureLoader) Mode() asset.AsyncLoadMode { return asset.ModeTouch }

// AsyncTouch decodes the image header of uri.
func (l *TextureLoader) AsyncTouch(ctx context.Context, _ *asset.Server, uri string) (any, error) {
	var (
		header []byte
		err    error
	)
	if c, _ := codec.CompressionForName(uri); c != codec.CompressionNone {
		// Packed containers must be read whole to be unpacked.
		header, err = readAsset(ctx, l.src, uri)
	} else {
		header, err = source.ReadHeader(ctx, l.src, uri, touchHeaderBytes)
	}
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(header))
	if err != nil {
		return nil, fmt.Errorf("decode header %s: %w", uri, err)
	}
	return TextureInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Prepare checks the touched header against the world's TextureSettings.
// An oversize texture yields an ErrTextureTooLarge error, which fails the
// request at the prepare stage.
func (l *TextureLoader) Prepare(w *world.World, touch any) any {
	info, ok := touch.(TextureInfo)
	if !ok {
		return nil
	}

	settings := world.GetOr(w, TextureSettings{})
	if m := settings.MaxDimension; m > 0 && (info.Width > m || info.Height > m) {
		return fmt.Errorf("%w: %dx%d > %d", ErrTextureTooLarge, info.Width, info.Height, m)
	}
	return TextureParams{Info: info}
}

// AsyncLoad decodes the pixels of uri.
func (l *TextureLoader) AsyncLoad(ctx context.Context, _ *asset.Server, uri string, _ any, params any) (any, error) {
	data, err := readAsset(ctx, l.src, uri)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	t := Texture{
		Width:       rgba.Rect.Dx(),
		Height:      rgba.Rect.Dy(),
		Format:      format,
		Pixels:      rgba.Pix,
		Fingerprint: Fingerprint(data),
	}
	if opts, ok := params.(TextureOptions); ok {
		t.SRGB = opts.SRGB
	}

	l.logger.DebugContext(ctx, "texture decoded", "uri", uri, "width", t.Width, "height", t.Height)
	return t, nil
}

// SyncLoad runs touch, prepare and load on the calling goroutine.
func (l *TextureLoader) SyncLoad(ctx context.Context, w *world.World, uri string, s *asset.Server, params any) (any, error) {
	touch, err := l.AsyncTouch(ctx, s, uri)
	if err != nil {
		return nil, err
	}
	prepared := l.Prepare(w, touch)
	if err, ok := prepared.(error); ok {
		return nil, err
	}
	return l.AsyncLoad(ctx, s, uri, prepared, params)
}

// AddToAsset inserts a Texture payload into the world's texture store.
func (l *TextureLoader) AddToAsset(w *world.World, payload any) (*asset.UntypedHandle, error) {
	return asset.AddPayload[Texture](w, payload)
}
