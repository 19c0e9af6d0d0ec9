// Package asset implements reference-counted asset lifetime management.
//
// # Architecture
//
//	┌──────────┐ Increment/Decrement ┌──────────────┐  Free(id)   ┌──────────┐
//	│ Handle[T]│ ──────────────────▶ │  RefCounter  │ ──────────▶ │          │
//	└──────────┘                     │ (Reconcile)  │             │ Store[T] │
//	                                 └──────────────┘             │          │
//	┌──────────┐   Deliver(payload)  ┌──────────────┐ Create(...) │          │
//	│  loader  │ ──────────────────▶ │    Server    │ ──────────▶ │          │
//	└──────────┘                     └──────────────┘             └──────────┘
//	                                                    Created/Modified/Removed
//	                                                               ▼
//	                                                        event.Events[...]
//
// Every strong Handle records one Increment when it is created or cloned and
// one Decrement when it is released. Server.FreeUnusedAssets drains these
// events and, after the whole batch, sends Free for each ID whose count is
// exactly zero. Stores drain their lifecycle channel in UpdateAssets.
//
// # Handles
//
//	store := asset.Register[Texture](server)
//	h := store.Add(tex)   // strong, count 1
//	h2 := h.Clone()       // count 2
//	h.Release()           // count 1
//	h2.Release()          // count 0
//	server.FreeUnusedAssets()
//	store.UpdateAssets()  // entry removed, Removed emitted
//
// Go has no destructors: the count is logical and every strong handle must be
// released exactly once (or handed off with Untyped/Typed, or kept forever with
// Forget).
//
// # Channel Disconnection
//
// Sending on a closed reference or lifecycle channel is a programming error
// (the owning server was torn down while handles were alive) and panics. The
// only exception is Release, which ignores a closed channel.
//
// # Thread Safety
//
// Handles, the Server's load APIs and Deliver may be used from any goroutine.
// Stores and the reconciler belong to the goroutine that runs the periodic
// hooks.
package asset
