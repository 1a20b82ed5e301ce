package reactive

import (
	"runtime"
	"sync"
)

// Slot holds at most one installed Observer.
//
// A Slot is an observation context: cells read through a slot link
// themselves to the observer it currently holds. Installing replaces
// whatever was installed before; there is no stack of observers.
type Slot struct {
	mu      sync.Mutex
	current *Observer

	// gid is the owning goroutine of an ambient slot, zero for slots from
	// NewSlot. detached is set once an emptied ambient slot has left
	// ambientSlots.
	gid      uint64
	detached bool
}

// NewSlot creates an empty slot for explicit, injected observation contexts.
func NewSlot() *Slot {
	return &Slot{}
}

// Install makes o the slot's current observer, replacing any previous one.
func (s *Slot) Install(o *Observer) {
	s.mu.Lock()
	s.current = o
	s.attachLocked()
	s.mu.Unlock()
}

// attachLocked puts a detached ambient slot back into ambientSlots.
func (s *Slot) attachLocked() {
	if s.gid != 0 && s.detached {
		ambientSlots.Store(s.gid, s)
		s.detached = false
	}
}

// Current returns the installed observer, or nil.
func (s *Slot) Current() *Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ClearIf empties the slot only if it still holds o.
// Reports whether the slot was cleared. An emptied ambient slot is dropped
// from the goroutine table so finished goroutines leave nothing behind.
func (s *Slot) ClearIf(o *Observer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != o || o == nil {
		return false
	}
	s.current = nil
	if s.gid != 0 && !s.detached {
		ambientSlots.CompareAndDelete(s.gid, s)
		s.detached = true
	}
	return true
}

// ambientSlots stores one slot per goroutine.
var ambientSlots sync.Map // map[uint64]*Slot

// getGoroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Ambient returns the calling goroutine's slot, creating it on first use.
// Get, When and Map track into this slot.
func Ambient() *Slot {
	gid := getGoroutineID()
	if s, ok := ambientSlots.Load(gid); ok {
		return s.(*Slot)
	}
	s, _ := ambientSlots.LoadOrStore(gid, &Slot{gid: gid})
	return s.(*Slot)
}

// peekAmbient returns the calling goroutine's slot without creating one.
func peekAmbient() *Slot {
	if s, ok := ambientSlots.Load(getGoroutineID()); ok {
		return s.(*Slot)
	}
	return nil
}

// ReleaseAmbient drops the calling goroutine's slot. Disposing the last
// session on a goroutine already does this; ReleaseAmbient covers slots
// obtained with Ambient that never hosted a session.
func ReleaseAmbient() {
	if v, ok := ambientSlots.LoadAndDelete(getGoroutineID()); ok {
		s := v.(*Slot)
		s.mu.Lock()
		s.detached = true
		s.mu.Unlock()
	}
}

// Untrack runs fn with the ambient slot emptied, then reinstalls the
// observer that was current before. Reads inside fn are not tracked.
func Untrack(fn func()) {
	s := peekAmbient()
	if s == nil {
		fn()
		return
	}

	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == nil && prev != nil && !prev.Disposed() {
			s.current = prev
			s.attachLocked()
		}
		s.mu.Unlock()
	}()
	fn()
}
