package store

import (
	"testing"

	"github.com/vango-dev/cellstore/pkg/reactive"
)

// Settings is only used through the process-wide registry.
type Settings struct {
	Theme *reactive.String
}

func (Settings) Default() Settings {
	return Settings{Theme: reactive.NewString("light")}
}

func TestProcessWideRegistry(t *testing.T) {
	t.Cleanup(ClearAll)

	if Default() != Default() {
		t.Fatal("Default should return the same registry")
	}

	if Exists[Settings]() {
		t.Fatal("Settings should not exist yet")
	}

	s := Use[Settings]()
	s.Theme.Set("dark")

	if !Exists[Settings]() {
		t.Error("Use should register")
	}
	if got := Global[Settings]().Theme.Get(); got != "dark" {
		t.Errorf("Global saw %q, want dark", got)
	}

	got, ok := Lookup[Settings]()
	if !ok || got.Theme != s.Theme {
		t.Error("Lookup should return the shared instance")
	}

	theme, ok := Action(func(s Settings) string { return s.Theme.Get() })
	if !ok || theme != "dark" {
		t.Errorf("Action = %q, %v", theme, ok)
	}
	if _, ok := ActionMut(func(s *Settings) bool { s.Theme.Set("blue"); return true }); !ok {
		t.Error("ActionMut should find the store")
	}
	if s.Theme.Get() != "blue" {
		t.Errorf("ActionMut write not shared, got %q", s.Theme.Get())
	}

	fresh := Reset[Settings]()
	if fresh.Theme == s.Theme || fresh.Theme.Get() != "light" {
		t.Error("Reset should register a fresh default")
	}
	if s.Theme.Get() != "blue" {
		t.Error("old holders keep their cells after Reset")
	}

	Drop[Settings]()
	if Exists[Settings]() {
		t.Error("Drop should unregister")
	}

	Provide(Settings{}.Default())
	if Count() != 1 {
		t.Errorf("Count() = %d, want 1", Count())
	}
	ClearAll()
	if Count() != 0 {
		t.Errorf("Count() after ClearAll = %d", Count())
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	custom := NewRegistry("custom")
	SetDefault(custom)
	if Default() != custom {
		t.Error("SetDefault should replace the process-wide registry")
	}

	Use[Settings]()
	if !Has[Settings](custom) {
		t.Error("Use should go through the replaced registry")
	}
	if Has[Settings](prev) {
		t.Error("previous registry should be untouched")
	}
}
