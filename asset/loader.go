package asset

import (
	"context"
	"fmt"

	"github.com/hupe1980/assetgo/world"
)

// AsyncLoadMode is a loader's entry point into the Touch → Prepare → Load
// pipeline.
type AsyncLoadMode uint8

const (
	// ModeTouch runs AsyncTouch on the pool, then Prepare, then AsyncLoad.
	ModeTouch AsyncLoadMode = iota
	// ModePrepare calls Prepare immediately (without touch data), then AsyncLoad.
	ModePrepare
	// ModeOnlyLoad spawns AsyncLoad directly.
	ModeOnlyLoad
)

func (m AsyncLoadMode) String() string {
	switch m {
	case ModeTouch:
		return "touch"
	case ModePrepare:
		return "prepare"
	case ModeOnlyLoad:
		return "only-load"
	default:
		return fmt.Sprintf("AsyncLoadMode(%d)", m)
	}
}

// Loader produces assets of one type.
//
// AsyncTouch and AsyncLoad run on background goroutines; Prepare, SyncLoad
// and AddToAsset run on the caller's goroutine. Implementations must be safe
// for concurrent use.
type Loader interface {
	// Tag returns the type of asset this loader produces.
	Tag() TypeTag

	// Mode declares where requests enter the pipeline.
	Mode() AsyncLoadMode

	// SyncLoad loads uri on the calling goroutine.
	SyncLoad(ctx context.Context, w *world.World, uri string, s *Server, params any) (any, error)

	// AsyncTouch is a light-weight prefetch that runs before Prepare.
	AsyncTouch(ctx context.Context, s *Server, uri string) (any, error)

	// Prepare derives load-time data from the world and the touch result
	// (nil in ModePrepare). A nil result keeps the touch data unchanged; an
	// error result fails the request at StagePrepare.
	Prepare(w *world.World, touch any) any

	// AsyncLoad produces the asset payload. touch is the prepared data.
	AsyncLoad(ctx context.Context, s *Server, uri string, touch any, params any) (any, error)

	// AddToAsset inserts a payload into the right store and returns a strong
	// handle to it.
	AddToAsset(w *world.World, payload any) (*UntypedHandle, error)
}

// AddPayload inserts payload into the *Store[T] registered in w. It is the
// usual AddToAsset implementation.
func AddPayload[T any](w *world.World, payload any) (*UntypedHandle, error) {
	store, ok := world.Get[*Store[T]](w)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, TagOf[T]())
	}
	v, ok := payload.(T)
	if !ok {
		return nil, &TypeMismatchError{Want: TagOf[T](), Got: fmt.Sprintf("%T", payload)}
	}
	return store.Add(v).Untyped(), nil
}
