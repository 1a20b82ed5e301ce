package store

import "sync/atomic"

// Hooks receives registry events. Implementations must be safe for
// concurrent use and must not call back into the registry.
type Hooks interface {
	StoreRegistered(registry, store string)
	StoreRemoved(registry, store string)
	StoresCleared(registry string, count int)
}

type nopHooks struct{}

func (nopHooks) StoreRegistered(string, string) {}
func (nopHooks) StoreRemoved(string, string)    {}
func (nopHooks) StoresCleared(string, int)      {}

type hooksHolder struct {
	Hooks
}

var currentHooks atomic.Pointer[hooksHolder]

// SetHooks installs process-wide registry hooks. Passing nil removes them.
func SetHooks(h Hooks) {
	if h == nil {
		currentHooks.Store(nil)
		return
	}
	currentHooks.Store(&hooksHolder{h})
}

func hooks() Hooks {
	if h := currentHooks.Load(); h != nil {
		return h.Hooks
	}
	return nopHooks{}
}

type multiHooks []Hooks

// MultiHooks combines hooks. Nil entries are skipped.
func MultiHooks(hs ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (m multiHooks) StoreRegistered(registry, store string) {
	for _, h := range m {
		h.StoreRegistered(registry, store)
	}
}

func (m multiHooks) StoreRemoved(registry, store string) {
	for _, h := range m {
		h.StoreRemoved(registry, store)
	}
}

func (m multiHooks) StoresCleared(registry string, count int) {
	for _, h := range m {
		h.StoresCleared(registry, count)
	}
}
