// Package loading implements the loading queue.
//
// Requests recorded by asset.Server.LoadAsync are picked up by Queue.Update
// and driven through their loader's pipeline:
//
//	ModeTouch:    TouchPending ─► Preparing ─► LoadPending ─► Finished | Failed
//	ModePrepare:  PreparePending ──────────► LoadPending ─► Finished | Failed
//	ModeOnlyLoad:                            LoadPending ─► Finished | Failed
//
// Touch and load functions run on a task.Pool; Prepare runs on the goroutine
// that calls Update, with access to the world. A finished load is delivered to
// the store of its type as a Create event. A failure at any stage marks the
// request's track failed; it never affects other requests.
package loading
