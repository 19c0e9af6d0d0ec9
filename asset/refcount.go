package asset

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// RefKind is the direction of a reference-count change.
type RefKind uint8

const (
	// Increment records a new strong handle.
	Increment RefKind = iota + 1
	// Decrement records a released strong handle.
	Decrement
)

func (k RefKind) String() string {
	switch k {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	default:
		return fmt.Sprintf("RefKind(%d)", k)
	}
}

// RefEvent is a single reference-count change for one ID.
type RefEvent struct {
	Kind RefKind
	ID   ID
}

// RefSender is the producing side of the reference-count channel.
// It is safe for concurrent use.
type RefSender struct {
	q *mpsc[RefEvent]
}

func (s *RefSender) send(ev RefEvent) error {
	return s.q.send(ev)
}

// ReconcileStats summarizes one reconciliation pass.
type ReconcileStats struct {
	Events   int
	Freed    int
	Duration time.Duration
}

// RefCounter owns the reference counts of every tracked ID.
//
// Counts are only touched by Reconcile, which runs on the owning goroutine.
type RefCounter struct {
	events  *mpsc[RefEvent]
	sender  *RefSender
	counts  map[ID]int
	scratch []RefEvent
}

// NewRefCounter creates an empty counter with its channel.
func NewRefCounter() *RefCounter {
	q := newMPSC[RefEvent]()
	return &RefCounter{
		events: q,
		sender: &RefSender{q: q},
		counts: make(map[ID]int),
	}
}

// Sender returns the shared producer for this counter.
func (c *RefCounter) Sender() *RefSender { return c.sender }

// Pending returns the number of queued, not yet reconciled events.
func (c *RefCounter) Pending() int { return c.events.len() }

// Reconcile drains all queued events and calls free for every ID whose count
// is exactly zero after the whole batch has been applied.
//
// An ID that hits zero mid-batch and is incremented again later in the same
// batch is not freed.
func (c *RefCounter) Reconcile(free func(ID)) ReconcileStats {
	start := time.Now()

	c.scratch, _ = c.events.drain(c.scratch[:0])
	stats := ReconcileStats{Events: len(c.scratch)}

	var candidates map[TypeTag]*roaring64.Bitmap
	for _, ev := range c.scratch {
		switch ev.Kind {
		case Increment:
			c.counts[ev.ID]++
		case Decrement:
			n := c.counts[ev.ID] - 1
			if n < 0 {
				panic(fmt.Sprintf("asset: reference count of %s dropped below zero", ev.ID))
			}
			c.counts[ev.ID] = n
			if n == 0 {
				if candidates == nil {
					candidates = make(map[TypeTag]*roaring64.Bitmap)
				}
				bm, ok := candidates[ev.ID.Tag]
				if !ok {
					bm = roaring64.New()
					candidates[ev.ID.Tag] = bm
				}
				bm.Add(ev.ID.Value)
			}
		}
	}
	clear(c.scratch)

	for tag, bm := range candidates {
		it := bm.Iterator()
		for it.HasNext() {
			id := ID{Tag: tag, Value: it.Next()}
			if n, ok := c.counts[id]; ok && n == 0 {
				delete(c.counts, id)
				free(id)
				stats.Freed++
			}
		}
	}

	stats.Duration = time.Since(start)
	return stats
}

func (c *RefCounter) close() {
	c.events.close()
}
