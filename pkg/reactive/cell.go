package reactive

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
)

var cellCounter atomic.Uint64

// CellOption configures a cell at construction.
type CellOption func(*cellOptions)

type cellOptions struct {
	name   string
	logger *slog.Logger
}

// WithName names the cell in logs, errors and instrumentation.
// Unnamed cells are called "cell-<n>".
func WithName(name string) CellOption {
	return func(o *cellOptions) {
		o.name = name
	}
}

// WithLogger sets the cell's logger. If nil, the package logger is used.
func WithLogger(l *slog.Logger) CellOption {
	return func(o *cellOptions) {
		o.logger = l
	}
}

// Cell is an observable value.
//
// The value, the explicit subscribers and the implicit links are guarded by
// separate locks, and a cell never holds more than one of them at a time.
// No lock is held while callbacks run.
type Cell[T any] struct {
	name   string
	logger *slog.Logger

	// mu protects value.
	mu    sync.Mutex
	value T

	// clone copies values handed out by Get and notifications.
	clone func(T) T

	poison atomic.Pointer[cserrors.CellError]

	subs  subscriptions[T]
	links links
}

// New creates a cell holding initial.
func New[T any](initial T, opts ...CellOption) *Cell[T] {
	var o cellOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("cell-%d", cellCounter.Add(1))
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	c := &Cell[T]{
		name:   o.name,
		logger: o.logger.With("cell", o.name),
		value:  initial,
	}
	instrument().CellCreated(c.name)
	return c
}

// WithClone sets a copy function for values leaving the cell. Use it for
// slices, maps and pointer types whose readers must not alias the stored
// value.
func (c *Cell[T]) WithClone(fn func(T) T) *Cell[T] {
	c.clone = fn
	return c
}

// Name returns the cell's name.
func (c *Cell[T]) Name() string {
	return c.name
}

// lock acquires the value lock, panicking if the cell is poisoned.
func (c *Cell[T]) lock() {
	c.mu.Lock()
	if err := c.poison.Load(); err != nil {
		c.mu.Unlock()
		panic(err)
	}
}

func (c *Cell[T]) copyOf(v T) T {
	if c.clone != nil {
		return c.clone(v)
	}
	return v
}

// load returns a copy of the value without tracking.
func (c *Cell[T]) load() T {
	c.lock()
	v := c.value
	c.mu.Unlock()
	return c.copyOf(v)
}

// trackAccess links the cell to the observer installed in slot, if any.
func (c *Cell[T]) trackAccess(slot *Slot) {
	if slot == nil {
		return
	}
	if o := slot.Current(); o != nil && !o.Disposed() {
		c.links.track(o)
	}
}

// Get returns the current value and links the cell to the ambient observer.
func (c *Cell[T]) Get() T {
	v := c.load()
	c.trackAccess(peekAmbient())
	return v
}

// GetIn returns the current value and links the cell to the observer
// installed in slot.
func (c *Cell[T]) GetIn(slot *Slot) T {
	v := c.load()
	c.trackAccess(slot)
	return v
}

// Peek returns the current value without tracking.
func (c *Cell[T]) Peek() T {
	return c.load()
}

// When reports whether pred holds for the current value. It tracks like Get.
func (c *Cell[T]) When(pred func(T) bool) bool {
	return pred(c.Get())
}

// WhenIn is When tracking into an explicit slot.
func (c *Cell[T]) WhenIn(slot *Slot, pred func(T) bool) bool {
	return pred(c.GetIn(slot))
}

// Map applies fn to the current value of c. It tracks like Get.
func Map[T, U any](c *Cell[T], fn func(T) U) U {
	return fn(c.Get())
}

// MapIn is Map tracking into an explicit slot.
func MapIn[T, U any](slot *Slot, c *Cell[T], fn func(T) U) U {
	return fn(c.GetIn(slot))
}

// Set replaces the value and notifies, even if value equals the old one.
func (c *Cell[T]) Set(value T) {
	c.lock()
	c.value = value
	c.mu.Unlock()

	c.notify()
}

// Update applies fn to the value in place, then notifies.
//
// fn runs with the value lock held and must not touch this cell. If fn
// panics the cell is poisoned and the panic propagates.
func (c *Cell[T]) Update(fn func(*T)) {
	c.mutate(fn)
	c.notify()
}

func (c *Cell[T]) mutate(fn func(*T)) {
	c.lock()
	done := false
	defer func() {
		if done {
			c.mu.Unlock()
			return
		}
		r := recover()
		c.poison.Store(poisonError(c.name, r))
		c.mu.Unlock()

		c.logger.Error("cell poisoned by panicking update", "panic", r)
		instrument().Poisoned(c.name, r)
		if r != nil {
			panic(r)
		}
	}()
	fn(&c.value)
	done = true
}

// Subscribe registers fn to receive every new value. The returned id stays
// valid until Unsubscribe. fn may be called from any goroutine that writes.
// It panics if fn is nil.
func (c *Cell[T]) Subscribe(fn func(T)) SubscriptionID {
	if fn == nil {
		panic(cserrors.New("E203").WithCell(c.name))
	}
	c.checkPoison()
	return c.subs.add(fn)
}

// Unsubscribe removes the subscription with id. Unknown ids are ignored.
func (c *Cell[T]) Unsubscribe(id SubscriptionID) {
	c.checkPoison()
	c.subs.remove(id)
}

// SubscriberCount returns the number of explicit subscribers.
func (c *Cell[T]) SubscriberCount() int {
	return c.subs.len()
}

// LinkCount returns the number of implicit links, live or not yet pruned.
func (c *Cell[T]) LinkCount() int {
	return c.links.len()
}

// Poisoned reports whether a panicking Update has poisoned the cell.
func (c *Cell[T]) Poisoned() bool {
	return c.poison.Load() != nil
}

func (c *Cell[T]) checkPoison() {
	if err := c.poison.Load(); err != nil {
		panic(err)
	}
}

// notify fans the current value out to explicit subscribers, then to live
// observers, pruning dead links.
func (c *Cell[T]) notify() {
	start := time.Now()
	snapshot := c.load()

	fns := c.subs.snapshot()
	for _, fn := range fns {
		fn(snapshot)
	}

	invoked, pruned := c.links.sweep()
	if pruned > 0 {
		c.logger.Debug("pruned dead observer links", "pruned", pruned, "remaining", c.links.len())
	}

	instrument().Notified(NotifyStats{
		Cell:     c.name,
		Explicit: len(fns),
		Implicit: invoked,
		Pruned:   pruned,
		Start:    start,
		Duration: time.Since(start),
	})
}

// Value is an alias for Get.
func (c *Cell[T]) Value() T { return c.Get() }

// SetValue is an alias for Set.
func (c *Cell[T]) SetValue(value T) { c.Set(value) }

// UpdateValue is an alias for Update.
func (c *Cell[T]) UpdateValue(fn func(*T)) { c.Update(fn) }

// OnChange is an alias for Subscribe.
func (c *Cell[T]) OnChange(fn func(T)) SubscriptionID { return c.Subscribe(fn) }

// OffChange is an alias for Unsubscribe.
func (c *Cell[T]) OffChange(id SubscriptionID) { c.Unsubscribe(id) }

// String implements fmt.Stringer without tracking.
func (c *Cell[T]) String() string {
	if c.Poisoned() {
		return fmt.Sprintf("Cell(%s, poisoned)", c.name)
	}
	return fmt.Sprintf("Cell(%s, %v)", c.name, c.Peek())
}
