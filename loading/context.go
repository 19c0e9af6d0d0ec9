package loading

import (
	"fmt"
	"time"

	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/task"
)

// State is the position of a request in the Touch → Prepare → Load pipeline.
type State uint8

const (
	StateTouchPending State = iota
	StatePreparePending
	StatePreparing
	StateLoadPending
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTouchPending:
		return "touch-pending"
	case StatePreparePending:
		return "prepare-pending"
	case StatePreparing:
		return "preparing"
	case StateLoadPending:
		return "load-pending"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Terminal reports whether s is Finished or Failed.
func (s State) Terminal() bool { return s == StateFinished || s == StateFailed }

// LoadContext is the in-flight record of one request.
type LoadContext struct {
	req     asset.Request
	state   State
	touch   *task.Task[any]
	load    *task.Task[any]
	err     error
	started time.Time
}

// URI returns the requested location.
func (lc *LoadContext) URI() string { return lc.req.URI }

// ID returns the identifier the payload will be stored under.
func (lc *LoadContext) ID() asset.ID { return lc.req.ID }

// Tag returns the requested asset type.
func (lc *LoadContext) Tag() asset.TypeTag { return lc.req.Tag() }

// State returns the current pipeline state.
func (lc *LoadContext) State() State { return lc.state }

// Err returns the failure cause of a Failed context.
func (lc *LoadContext) Err() error { return lc.err }
