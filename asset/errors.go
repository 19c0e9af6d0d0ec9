package asset

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when sending on a closed channel.
	ErrClosed = errors.New("asset: channel closed")

	// ErrNoLoader is returned when no loader is registered for a type.
	ErrNoLoader = errors.New("asset: no loader registered")

	// ErrLoaderExists is returned when a second loader is registered for a type.
	ErrLoaderExists = errors.New("asset: loader already registered")

	// ErrNotRegistered is returned when a type has not been registered with the server.
	ErrNotRegistered = errors.New("asset: type not registered")

	// ErrTypeMismatch indicates that a payload does not have the expected type.
	ErrTypeMismatch = errors.New("asset: payload type mismatch")
)

// Stage names the pipeline step a load failed in.
type Stage string

const (
	StageTouch   Stage = "touch"
	StagePrepare Stage = "prepare"
	StageLoad    Stage = "load"
	StageSync    Stage = "sync"
)

// LoadError is the error recorded on a failed load request.
//
// The loader's error can be accessed via errors.Unwrap.
type LoadError struct {
	URI   string
	Tag   TypeTag
	Stage Stage
	cause error
}

// NewLoadError wraps cause for the given request.
func NewLoadError(uri string, tag TypeTag, stage Stage, cause error) *LoadError {
	return &LoadError{URI: uri, Tag: tag, Stage: stage, cause: cause}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q (%s) failed during %s: %v", e.URI, e.Tag, e.Stage, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }

// TypeMismatchError is reported when a payload cannot be converted to the
// store's type. It matches ErrTypeMismatch with errors.Is.
type TypeMismatchError struct {
	ID   ID
	Want TypeTag
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("asset: payload for %s has type %s, want %s", e.ID, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
