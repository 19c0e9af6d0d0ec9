package assetgo

import (
	"errors"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/internal/resource"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/task"
)

var (
	// ErrClosed is returned by App methods after Close.
	ErrClosed = errors.New("assetgo: app closed")

	// ErrNoLoader is returned when no loader is registered for a type.
	ErrNoLoader = asset.ErrNoLoader

	// ErrLoaderExists is returned when a second loader is registered for a type.
	ErrLoaderExists = asset.ErrLoaderExists

	// ErrNotRegistered is returned for types that were never registered.
	ErrNotRegistered = asset.ErrNotRegistered

	// ErrTypeMismatch indicates a payload or loader of the wrong type.
	ErrTypeMismatch = asset.ErrTypeMismatch

	// ErrTaskPanicked wraps panics raised by loaders.
	ErrTaskPanicked = task.ErrTaskPanicked

	// ErrMemoryLimitExceeded is returned when the memory budget is exhausted.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrNotFound is returned by sources for missing objects.
	ErrNotFound = source.ErrNotFound

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("assetgo: invalid config")
)

// LoadError is the error recorded on a failed load.
//
// The loader's error can be accessed via errors.Unwrap.
type LoadError = asset.LoadError

// IsNotFound reports whether err means the requested object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
