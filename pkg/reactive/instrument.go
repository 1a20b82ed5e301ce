package reactive

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// NotifyStats describes one completed notification pass.
type NotifyStats struct {
	// Cell is the name of the written cell.
	Cell string

	// Explicit is the number of explicit subscribers invoked.
	Explicit int

	// Implicit is the number of live observers reached.
	Implicit int

	// Pruned is the number of dead links removed.
	Pruned int

	// Start is when the pass began.
	Start time.Time

	// Duration is how long both fan-outs took.
	Duration time.Duration
}

// Instrumentation receives engine events. Implementations must be safe for
// concurrent use and must not write cells.
type Instrumentation interface {
	// CellCreated is called once per new cell.
	CellCreated(cell string)

	// Notified is called after every Set or Update has fanned out.
	Notified(stats NotifyStats)

	// ObserverInstalled is called when a session starts.
	ObserverInstalled(id string)

	// ObserverDisposed is called when a session ends.
	ObserverDisposed(id string, invalidations uint64)

	// Poisoned is called when a panicking mutator poisons a cell.
	Poisoned(cell string, cause any)
}

// NopInstrumentation ignores every event.
type NopInstrumentation struct{}

func (NopInstrumentation) CellCreated(string)              {}
func (NopInstrumentation) Notified(NotifyStats)            {}
func (NopInstrumentation) ObserverInstalled(string)        {}
func (NopInstrumentation) ObserverDisposed(string, uint64) {}
func (NopInstrumentation) Poisoned(string, any)            {}

// multi fans events out to several instrumentations.
type multi []Instrumentation

// Multi combines instrumentations. Nil entries are skipped.
func Multi(is ...Instrumentation) Instrumentation {
	out := make(multi, 0, len(is))
	for _, i := range is {
		if i != nil {
			out = append(out, i)
		}
	}
	return out
}

func (m multi) CellCreated(cell string) {
	for _, i := range m {
		i.CellCreated(cell)
	}
}

func (m multi) Notified(stats NotifyStats) {
	for _, i := range m {
		i.Notified(stats)
	}
}

func (m multi) ObserverInstalled(id string) {
	for _, i := range m {
		i.ObserverInstalled(id)
	}
}

func (m multi) ObserverDisposed(id string, invalidations uint64) {
	for _, i := range m {
		i.ObserverDisposed(id, invalidations)
	}
}

func (m multi) Poisoned(cell string, cause any) {
	for _, i := range m {
		i.Poisoned(cell, cause)
	}
}

type instrumentationHolder struct {
	Instrumentation
}

var currentInstrumentation atomic.Pointer[instrumentationHolder]

// SetInstrumentation installs process-wide instrumentation.
// Passing nil restores the no-op default.
func SetInstrumentation(i Instrumentation) {
	if i == nil {
		currentInstrumentation.Store(nil)
		return
	}
	currentInstrumentation.Store(&instrumentationHolder{i})
}

func instrument() Instrumentation {
	if h := currentInstrumentation.Load(); h != nil {
		return h.Instrumentation
	}
	return NopInstrumentation{}
}

var currentLogger atomic.Pointer[slog.Logger]

// SetLogger sets the default logger for cells created without one.
// If nil, slog.Default() is used.
func SetLogger(l *slog.Logger) {
	currentLogger.Store(l)
}

func defaultLogger() *slog.Logger {
	if l := currentLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
