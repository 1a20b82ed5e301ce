package store

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
)

// Defaulter is implemented by bundles that can construct their initial state.
// Default is called on the zero value of S, so pointer bundles must not
// dereference the receiver.
type Defaulter[S any] interface {
	Default() S
}

// Named is implemented by bundles that want a custom name in logs and
// listings. Other bundles are named after their Go type.
type Named interface {
	StoreName() string
}

// storage is the map shared by a registry and its clones.
type storage struct {
	mu      sync.RWMutex
	entries map[reflect.Type]any
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry maps bundle types to shared instances. It is safe for concurrent
// use. The zero value is not usable; create registries with NewRegistry.
type Registry struct {
	name   string
	logger *slog.Logger
	data   *storage
}

// NewRegistry creates an empty registry with the given name.
func NewRegistry(name string, opts ...RegistryOption) *Registry {
	r := &Registry{
		name: name,
		data: &storage{entries: make(map[reflect.Type]any)},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("registry", name)
	return r
}

// Name returns the registry's name.
func (r *Registry) Name() string {
	return r.name
}

// CloneTo returns a registry with a different name that shares this one's
// entries. Registering in either is visible in both.
func (r *Registry) CloneTo(name string) *Registry {
	return &Registry{
		name:   name,
		logger: r.logger.With("clone_of", r.name),
		data:   r.data,
	}
}

// Count returns the number of registered bundles.
func (r *Registry) Count() int {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()
	return len(r.data.entries)
}

// Clear removes every bundle.
func (r *Registry) Clear() {
	r.data.mu.Lock()
	n := len(r.data.entries)
	clear(r.data.entries)
	r.data.mu.Unlock()

	r.logger.Debug("cleared stores", "count", n)
	hooks().StoresCleared(r.name, n)
}

// Types returns the names of the registered bundles, sorted.
func (r *Registry) Types() []string {
	r.data.mu.RLock()
	names := make([]string, 0, len(r.data.entries))
	for t, v := range r.data.entries {
		names = append(names, nameOf(t, v))
	}
	r.data.mu.RUnlock()

	slices.Sort(names)
	return names
}

func nameOf(t reflect.Type, v any) string {
	if n, ok := v.(Named); ok {
		return n.StoreName()
	}
	return t.String()
}

// Register stores s as the instance for S, replacing any previous one.
func Register[S any](r *Registry, s S) {
	t := reflect.TypeFor[S]()
	r.data.mu.Lock()
	r.data.entries[t] = s
	r.data.mu.Unlock()

	name := nameOf(t, s)
	r.logger.Debug("registered store", "store", name)
	hooks().StoreRegistered(r.name, name)
}

// Get returns the instance for S, or false if none is registered.
func Get[S any](r *Registry) (S, bool) {
	r.data.mu.RLock()
	v, ok := r.data.entries[reflect.TypeFor[S]()]
	r.data.mu.RUnlock()

	if !ok {
		var zero S
		return zero, false
	}
	return v.(S), true
}

// MustGet returns the instance for S and panics if none is registered.
func MustGet[S any](r *Registry) S {
	s, ok := Get[S](r)
	if !ok {
		panic(cserrors.New("E301").WithStore(reflect.TypeFor[S]().String()))
	}
	return s
}

// GetOrCreate returns the instance for S, constructing and registering its
// default if none exists. Concurrent callers always receive the same
// instance; a default built by a caller that lost the race is discarded.
func GetOrCreate[S Defaulter[S]](r *Registry) S {
	if s, ok := Get[S](r); ok {
		return s
	}

	var zero S
	created := zero.Default()

	t := reflect.TypeFor[S]()
	r.data.mu.Lock()
	if existing, ok := r.data.entries[t]; ok {
		r.data.mu.Unlock()
		return existing.(S)
	}
	r.data.entries[t] = created
	r.data.mu.Unlock()

	name := nameOf(t, created)
	r.logger.Debug("created store", "store", name)
	hooks().StoreRegistered(r.name, name)
	return created
}

// Has reports whether an instance for S is registered.
func Has[S any](r *Registry) bool {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()
	_, ok := r.data.entries[reflect.TypeFor[S]()]
	return ok
}

// Remove drops the instance for S. It is a no-op if none is registered.
func Remove[S any](r *Registry) {
	t := reflect.TypeFor[S]()
	r.data.mu.Lock()
	v, ok := r.data.entries[t]
	delete(r.data.entries, t)
	r.data.mu.Unlock()

	if !ok {
		return
	}
	name := nameOf(t, v)
	r.logger.Debug("removed store", "store", name)
	hooks().StoreRemoved(r.name, name)
}

// With runs fn on the instance for S if one is registered.
func With[S, R any](r *Registry, fn func(S) R) (R, bool) {
	s, ok := Get[S](r)
	if !ok {
		var zero R
		return zero, false
	}
	return fn(s), true
}

// WithMut runs fn on a copy of the instance for S if one is registered.
// Writes through the copy's cells are shared; reassigning the copy's fields
// is not.
func WithMut[S, R any](r *Registry, fn func(*S) R) (R, bool) {
	s, ok := Get[S](r)
	if !ok {
		var zero R
		return zero, false
	}
	return fn(&s), true
}
