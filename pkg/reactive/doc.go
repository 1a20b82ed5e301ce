// Package reactive provides fine-grained reactive cells with automatic
// dependency tracking.
//
// A Cell holds a typed value. Reading it with Get while an Observer is
// installed links the cell to that observer; every later Set or Update then
// invokes the observer's invalidate callback. Cells also accept explicit
// subscribers that receive each new value.
//
// # Observation Sessions
//
// A host (typically a render loop) starts a session by creating an Observer:
//
//	obs := reactive.Observe(func() {
//	    scheduleRerender()
//	})
//	defer obs.Dispose()
//
//	title := page.Title.Get() // tracked
//	count := page.Count.Peek() // untracked
//
// Observers are installed into a Slot. Observe uses the calling goroutine's
// ambient slot; ObserveIn takes an explicit one, and cells read through it
// with GetIn. A slot holds at most one observer: installing a second one
// replaces the first, so nested sessions are not supported.
//
// Cells keep only weak links to observers. Disposing an observer stops all
// future invalidations, and its links are pruned during the next write to
// each cell.
//
// # Notification Order
//
// Every Set and Update notifies, even when the new value equals the old one.
// Explicit subscribers run first in ascending subscription order, then live
// observers in the order they first read the cell. Both run synchronously on
// the writing goroutine before Set or Update returns.
//
// # Caller Contracts
//
//   - An Update mutator must not read or write the cell it is mutating.
//   - Callbacks that write cells recurse synchronously; there is no
//     reentrancy guard beyond skipping an observer whose callback is
//     already running on the writing goroutine.
//   - A panic inside an Update mutator poisons the cell. Every later
//     operation on it panics with an error wrapping ErrPoisoned.
package reactive
