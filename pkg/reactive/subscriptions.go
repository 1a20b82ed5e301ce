package reactive

import (
	"slices"
	"sync"
	"weak"
)

// SubscriptionID identifies an explicit subscription on one cell.
// IDs start at 1, increase monotonically and are never reused.
type SubscriptionID uint64

type subscriber[T any] struct {
	id SubscriptionID
	fn func(T)
}

// subscriptions is the explicit-subscriber registry of a cell.
// Entries stay sorted by id because ids are assigned under the same lock
// that appends them.
type subscriptions[T any] struct {
	mu      sync.Mutex
	entries []subscriber[T]
	nextID  SubscriptionID
}

func (s *subscriptions[T]) add(fn func(T)) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, subscriber[T]{id: id, fn: fn})
	return id
}

func (s *subscriptions[T]) remove(id SubscriptionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := slices.BinarySearchFunc(s.entries, id, func(e subscriber[T], id SubscriptionID) int {
		switch {
		case e.id < id:
			return -1
		case e.id > id:
			return 1
		}
		return 0
	})
	if !found {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// snapshot copies the callbacks so they can run without the lock held.
func (s *subscriptions[T]) snapshot() []func(T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]func(T), len(s.entries))
	for i, e := range s.entries {
		fns[i] = e.fn
	}
	return fns
}

func (s *subscriptions[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// links is the implicit-subscriber list of a cell: weak references to
// observers in the order they first read the cell.
type links struct {
	mu    sync.Mutex
	items []weak.Pointer[Observer]
}

// track records o unless a link to the same observer already exists.
func (l *links) track(o *Observer) {
	wp := weak.Make(o)
	l.mu.Lock()
	defer l.mu.Unlock()
	if slices.Contains(l.items, wp) {
		return
	}
	l.items = append(l.items, wp)
}

// sweep invalidates every live observer, then drops dead links.
// Observers that die while the sweep runs are dropped too.
func (l *links) sweep() (invoked, pruned int) {
	l.mu.Lock()
	items := slices.Clone(l.items)
	l.mu.Unlock()

	for _, wp := range items {
		if o := wp.Value(); o != nil && o.invalidate() {
			invoked++
		}
	}

	l.mu.Lock()
	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(wp weak.Pointer[Observer]) bool {
		o := wp.Value()
		return o == nil || o.Disposed()
	})
	pruned = before - len(l.items)
	l.mu.Unlock()
	return invoked, pruned
}

func (l *links) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
