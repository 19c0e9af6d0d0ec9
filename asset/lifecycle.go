package asset

import "fmt"

// LifecycleKind distinguishes lifecycle notifications.
type LifecycleKind uint8

const (
	// LifecycleCreate carries a loaded payload into its store.
	LifecycleCreate LifecycleKind = iota + 1
	// LifecycleFree tells a store to evict an unreferenced asset.
	LifecycleFree
)

func (k LifecycleKind) String() string {
	switch k {
	case LifecycleCreate:
		return "create"
	case LifecycleFree:
		return "free"
	default:
		return fmt.Sprintf("LifecycleKind(%d)", k)
	}
}

// LifecycleEvent is a Create or Free notification for one asset.
type LifecycleEvent struct {
	Kind    LifecycleKind
	Payload any
	ID      ID
}

// lifecycleChannel is the per-type queue between loaders/reconciler and the
// store that owns the type.
type lifecycleChannel struct {
	tag TypeTag
	q   *mpsc[LifecycleEvent]
}

func newLifecycleChannel(tag TypeTag) *lifecycleChannel {
	return &lifecycleChannel{tag: tag, q: newMPSC[LifecycleEvent]()}
}

func (c *lifecycleChannel) create(id ID, payload any) {
	c.mustSend(LifecycleEvent{Kind: LifecycleCreate, Payload: payload, ID: id})
}

func (c *lifecycleChannel) free(id ID) {
	c.mustSend(LifecycleEvent{Kind: LifecycleFree, ID: id})
}

// A closed lifecycle channel means the store was torn down while a tracked
// asset still exists.
func (c *lifecycleChannel) mustSend(ev LifecycleEvent) {
	if err := c.q.send(ev); err != nil {
		panic(fmt.Sprintf("asset: lifecycle channel of %s disconnected while sending %s for %s", c.tag, ev.Kind, ev.ID))
	}
}
