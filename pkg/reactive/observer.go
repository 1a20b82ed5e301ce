package reactive

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
)

// observerState is the lifecycle of an Observer.
type observerState int32

const (
	stateUninstalled observerState = iota
	stateInstalled
	stateDisposed
)

// String returns the state name.
func (s observerState) String() string {
	switch s {
	case stateUninstalled:
		return "uninstalled"
	case stateInstalled:
		return "installed"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Observer is one observation session, such as a single render pass.
//
// Creating an Observer installs it into a Slot. Cells read through that slot
// keep a weak link to it and call its invalidate callback on every write.
// Dispose ends the session; no callback runs after Dispose returns, except
// one already in flight on another goroutine.
type Observer struct {
	id   string
	fn   func()
	slot *Slot

	state atomic.Int32

	// running holds the ids of goroutines currently inside fn. Only a
	// goroutine re-entering its own callback is skipped; writes from other
	// goroutines still invoke fn.
	running sync.Map // map[uint64]struct{}

	invalidations atomic.Uint64
}

// Observe starts a session on the calling goroutine's ambient slot.
// It panics if invalidate is nil.
func Observe(invalidate func()) *Observer {
	return ObserveIn(Ambient(), invalidate)
}

// ObserveIn starts a session on an explicit slot.
// It panics if invalidate is nil.
func ObserveIn(slot *Slot, invalidate func()) *Observer {
	if invalidate == nil {
		panic(cserrors.New("E202"))
	}
	o := &Observer{
		id:   uuid.NewString(),
		fn:   invalidate,
		slot: slot,
	}
	slot.Install(o)
	o.state.Store(int32(stateInstalled))
	instrument().ObserverInstalled(o.id)
	return o
}

// ID returns the session identifier.
func (o *Observer) ID() string {
	return o.id
}

// Slot returns the slot the observer was installed into.
func (o *Observer) Slot() *Slot {
	return o.slot
}

// Dispose ends the session. It removes the observer from its slot if it is
// still the current one and makes every link to it dead. Dispose is
// idempotent.
func (o *Observer) Dispose() {
	if !o.state.CompareAndSwap(int32(stateInstalled), int32(stateDisposed)) {
		return
	}
	o.slot.ClearIf(o)
	instrument().ObserverDisposed(o.id, o.invalidations.Load())
}

// Disposed reports whether Dispose has been called.
func (o *Observer) Disposed() bool {
	return observerState(o.state.Load()) == stateDisposed
}

// Changed reports whether any tracked cell has been written since the
// session started.
func (o *Observer) Changed() bool {
	return o.invalidations.Load() > 0
}

// Invalidations returns how many times the invalidate callback has run.
func (o *Observer) Invalidations() uint64 {
	return o.invalidations.Load()
}

// invalidate runs the callback unless the observer is disposed or the
// calling goroutine is already inside it. Returns false if the observer
// is dead.
func (o *Observer) invalidate() bool {
	if o.Disposed() {
		return false
	}
	gid := getGoroutineID()
	if _, busy := o.running.LoadOrStore(gid, struct{}{}); busy {
		return true
	}
	defer o.running.Delete(gid)

	o.invalidations.Add(1)
	o.fn()
	return true
}
