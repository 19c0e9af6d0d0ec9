package loaders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/assetgo/codec"
	"github.com/hupe1980/assetgo/source"
)

var (
	// ErrTextureTooLarge is returned for textures above the configured maximum dimension.
	ErrTextureTooLarge = errors.New("loaders: texture exceeds maximum dimension")
	// ErrUnknownShaderStage is returned when a shader's stage cannot be derived from its name.
	ErrUnknownShaderStage = errors.New("loaders: unknown shader stage")
	// ErrInvalidSource is returned for shader sources that are not valid UTF-8.
	ErrInvalidSource = errors.New("loaders: shader source is not valid UTF-8")
)

type options struct {
	logger *slog.Logger
	codec  codec.Codec
}

// Option configures a built-in loader.
type Option func(*options)

// WithLogger sets the loader's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCodec sets the codec used for structured files. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

func newOptions(optFns []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		codec:  codec.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// readAsset reads uri from src and unpacks it if it is a packed container.
func readAsset(ctx context.Context, src source.Source, uri string) ([]byte, error) {
	data, err := source.ReadFile(ctx, src, uri)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	data, err = codec.UnpackNamed(uri, data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", uri, err)
	}
	return data, nil
}

// baseName returns the name of uri without directories, compression suffix
// and extension.
func baseName(uri string) string {
	_, name := codec.CompressionForName(uri)
	name = path.Base(name)
	return strings.TrimSuffix(name, path.Ext(name))
}

// extension returns the lower-cased extension of uri, ignoring any
// compression suffix.
func extension(uri string) string {
	_, name := codec.CompressionForName(uri)
	return strings.ToLower(path.Ext(name))
}

// Fingerprint is the content hash stored on loaded assets.
func Fingerprint(data []byte) uint64 { return xxhash.Sum64(data) }
