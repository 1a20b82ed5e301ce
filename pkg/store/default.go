package store

import "sync"

// DefaultName is the name of the process-wide registry and of the default
// context in every Manager.
const DefaultName = "default"

var (
	defaultOnce     sync.Once
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		if defaultRegistry == nil {
			defaultRegistry = NewRegistry(DefaultName)
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// SetDefault replaces the process-wide registry.
// Bundles already handed out keep their cells.
func SetDefault(r *Registry) {
	defaultOnce.Do(func() {})
	defaultMu.Lock()
	defaultRegistry = r
	defaultMu.Unlock()
}

// Use returns the process-wide instance of S, creating it on first use.
func Use[S Defaulter[S]]() S {
	return GetOrCreate[S](Default())
}

// Global is an alias for Use.
func Global[S Defaulter[S]]() S {
	return Use[S]()
}

// Provide registers s process-wide and returns it.
func Provide[S any](s S) S {
	Register(Default(), s)
	return s
}

// Lookup returns the process-wide instance of S, if registered.
func Lookup[S any]() (S, bool) {
	return Get[S](Default())
}

// Exists reports whether S is registered process-wide.
func Exists[S any]() bool {
	return Has[S](Default())
}

// Drop removes the process-wide instance of S.
func Drop[S any]() {
	Remove[S](Default())
}

// Reset replaces the process-wide instance of S with a fresh default.
// Holders of the previous instance keep observing its cells.
func Reset[S Defaulter[S]]() S {
	var zero S
	return Provide(zero.Default())
}

// ClearAll removes every process-wide bundle.
func ClearAll() {
	Default().Clear()
}

// Count returns the number of process-wide bundles.
func Count() int {
	return Default().Count()
}

// Action runs fn on the process-wide instance of S if one is registered.
func Action[S, R any](fn func(S) R) (R, bool) {
	return With(Default(), fn)
}

// ActionMut runs fn on a copy of the process-wide instance of S.
func ActionMut[S, R any](fn func(*S) R) (R, bool) {
	return WithMut(Default(), fn)
}
