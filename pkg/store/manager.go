package store

import (
	"slices"
	"sync"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
)

// Manager holds named registries ("contexts") and tracks a current one.
// The default context always exists and cannot be removed.
type Manager struct {
	mu       sync.RWMutex
	contexts map[string]*Registry
	current  string
}

// NewManager creates a manager whose default context is def.
// If def is nil a fresh registry is used.
func NewManager(def *Registry) *Manager {
	if def == nil {
		def = NewRegistry(DefaultName)
	}
	return &Manager{
		contexts: map[string]*Registry{DefaultName: def},
		current:  DefaultName,
	}
}

// Create adds an empty registry under name, replacing any existing one,
// and returns it. Creating "default" replaces the default context.
func (m *Manager) Create(name string) *Registry {
	r := NewRegistry(name)
	m.mu.Lock()
	m.contexts[name] = r
	m.mu.Unlock()
	return r
}

// Context returns the registry named name.
func (m *Manager) Context(name string) (*Registry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.contexts[name]
	return r, ok
}

// Switch makes name the current context. Unknown names leave the current
// context unchanged and return an error.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contexts[name]; !ok {
		return cserrors.New("E302").WithStore(name)
	}
	m.current = name
	return nil
}

// Current returns the current context.
func (m *Manager) Current() *Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contexts[m.current]
}

// CurrentName returns the name of the current context.
func (m *Manager) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Remove deletes the named context. The default context is never removed.
// Removing the current context switches back to the default.
func (m *Manager) Remove(name string) {
	if name == DefaultName {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, name)
	if m.current == name {
		m.current = DefaultName
	}
}

// Clear removes every context except the default and makes it current.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.contexts {
		if name != DefaultName {
			delete(m.contexts, name)
		}
	}
	m.current = DefaultName
}

// Names returns the context names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.contexts))
	for name := range m.contexts {
		names = append(names, name)
	}
	m.mu.RUnlock()
	slices.Sort(names)
	return names
}

var (
	contextsOnce sync.Once
	contexts     *Manager
)

// Contexts returns the process-wide manager, creating it on first use with
// Default() as its default context.
func Contexts() *Manager {
	contextsOnce.Do(func() {
		contexts = NewManager(Default())
	})
	return contexts
}

// CreateNamed creates a named context in the process-wide manager.
func CreateNamed(name string) *Registry {
	return Contexts().Create(name)
}

// SwitchTo switches the process-wide manager's current context.
func SwitchTo(name string) error {
	return Contexts().Switch(name)
}

// CurrentContext returns the process-wide manager's current context.
func CurrentContext() *Registry {
	return Contexts().Current()
}

// UseCurrent returns the instance of S from the current context, creating
// it on first use.
func UseCurrent[S Defaulter[S]]() S {
	return GetOrCreate[S](CurrentContext())
}
