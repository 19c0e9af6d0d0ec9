package asset

import "fmt"

// Handle is an ownership-aware reference to an asset of type T.
//
// A strong handle holds one reference count on its ID; a weak handle holds
// none. Go has no destructors, so the count is logical: every strong handle
// must be released exactly once with Release, handed off with Untyped/Typed,
// or deliberately leaked with Forget. A Handle value must not be used from
// several goroutines at once; Clone it instead.
type Handle[T any] struct {
	id     ID
	sender *RefSender
}

// WeakHandle returns a handle that does not participate in reference counting.
func WeakHandle[T any](id ID) *Handle[T] {
	mustMatchTag[T](id)
	return &Handle[T]{id: id}
}

// StrongHandle returns a strong handle for id and records its Increment.
// It panics if the reference channel has been closed.
func StrongHandle[T any](id ID, sender *RefSender) *Handle[T] {
	mustMatchTag[T](id)
	mustIncrement(sender, id)
	return &Handle[T]{id: id, sender: sender}
}

// ID returns the identifier this handle refers to.
func (h *Handle[T]) ID() ID { return h.id }

// IsStrong reports whether h holds a reference.
func (h *Handle[T]) IsStrong() bool { return h != nil && h.sender != nil }

// IsWeak reports whether h holds no reference.
func (h *Handle[T]) IsWeak() bool { return !h.IsStrong() }

// Clone returns a new handle to the same asset. Cloning a strong handle
// records one more Increment.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.sender == nil {
		return &Handle[T]{id: h.id}
	}
	mustIncrement(h.sender, h.id)
	return &Handle[T]{id: h.id, sender: h.sender}
}

// Weak returns a weak copy of h without touching the count.
func (h *Handle[T]) Weak() *Handle[T] {
	return &Handle[T]{id: h.id}
}

// Release drops the reference held by a strong handle. The Decrement is
// best-effort: a closed channel is ignored. Release is idempotent; the handle
// is weak afterwards.
func (h *Handle[T]) Release() {
	if h == nil || h.sender == nil {
		return
	}
	_ = h.sender.send(RefEvent{Kind: Decrement, ID: h.id})
	h.sender = nil
}

// Forget demotes a strong handle to weak without a Decrement. The asset stays
// resident for the lifetime of the process.
func (h *Handle[T]) Forget() {
	h.sender = nil
}

// Untyped moves the handle's ownership into an UntypedHandle. h is weak
// afterwards; no Increment or Decrement is recorded.
func (h *Handle[T]) Untyped() *UntypedHandle {
	u := &UntypedHandle{id: h.id, sender: h.sender}
	h.sender = nil
	return u
}

func (h *Handle[T]) String() string {
	if h.IsStrong() {
		return fmt.Sprintf("Handle(strong %s)", h.id)
	}
	return fmt.Sprintf("Handle(weak %s)", h.id)
}

// UntypedHandle is a Handle with its asset type erased.
type UntypedHandle struct {
	id     ID
	sender *RefSender
}

// WeakUntyped returns an untyped handle without ownership.
func WeakUntyped(id ID) *UntypedHandle {
	return &UntypedHandle{id: id}
}

// StrongUntyped returns a strong untyped handle and records its Increment.
func StrongUntyped(id ID, sender *RefSender) *UntypedHandle {
	mustIncrement(sender, id)
	return &UntypedHandle{id: id, sender: sender}
}

// ID returns the identifier this handle refers to.
func (h *UntypedHandle) ID() ID { return h.id }

// Tag returns the type tag of the referenced asset.
func (h *UntypedHandle) Tag() TypeTag { return h.id.Tag }

// IsStrong reports whether h holds a reference.
func (h *UntypedHandle) IsStrong() bool { return h != nil && h.sender != nil }

// IsWeak reports whether h holds no reference.
func (h *UntypedHandle) IsWeak() bool { return !h.IsStrong() }

// Clone returns a new handle to the same asset.
func (h *UntypedHandle) Clone() *UntypedHandle {
	if h.sender == nil {
		return &UntypedHandle{id: h.id}
	}
	mustIncrement(h.sender, h.id)
	return &UntypedHandle{id: h.id, sender: h.sender}
}

// Weak returns a weak copy of h.
func (h *UntypedHandle) Weak() *UntypedHandle {
	return &UntypedHandle{id: h.id}
}

// Release drops the reference held by a strong handle. See Handle.Release.
func (h *UntypedHandle) Release() {
	if h == nil || h.sender == nil {
		return
	}
	_ = h.sender.send(RefEvent{Kind: Decrement, ID: h.id})
	h.sender = nil
}

// Forget demotes h to weak without a Decrement.
func (h *UntypedHandle) Forget() {
	h.sender = nil
}

func (h *UntypedHandle) String() string {
	if h.IsStrong() {
		return fmt.Sprintf("UntypedHandle(strong %s)", h.id)
	}
	return fmt.Sprintf("UntypedHandle(weak %s)", h.id)
}

// Typed moves ownership of u into a Handle[T]. u is weak afterwards.
// It panics if u does not refer to an asset of type T.
func Typed[T any](u *UntypedHandle) *Handle[T] {
	mustMatchTag[T](u.id)
	h := &Handle[T]{id: u.id, sender: u.sender}
	u.sender = nil
	return h
}

func mustIncrement(s *RefSender, id ID) {
	if s == nil {
		panic(fmt.Sprintf("asset: strong handle for %s without a reference channel", id))
	}
	if err := s.send(RefEvent{Kind: Increment, ID: id}); err != nil {
		panic(fmt.Sprintf("asset: reference channel disconnected while tracking %s: %v", id, err))
	}
}

func mustMatchTag[T any](id ID) {
	if want := TagOf[T](); id.Tag != want {
		panic(fmt.Sprintf("asset: handle of %s cannot refer to %s", want, id))
	}
}
