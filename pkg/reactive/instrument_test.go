package reactive

import (
	"sync"
	"testing"
)

type recordingInstrumentation struct {
	mu        sync.Mutex
	created   []string
	notified  []NotifyStats
	installed []string
	disposed  map[string]uint64
	poisoned  []string
}

func newRecordingInstrumentation() *recordingInstrumentation {
	return &recordingInstrumentation{disposed: make(map[string]uint64)}
}

func (r *recordingInstrumentation) CellCreated(cell string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, cell)
}

func (r *recordingInstrumentation) Notified(stats NotifyStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, stats)
}

func (r *recordingInstrumentation) ObserverInstalled(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installed = append(r.installed, id)
}

func (r *recordingInstrumentation) ObserverDisposed(id string, invalidations uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed[id] = invalidations
}

func (r *recordingInstrumentation) Poisoned(cell string, cause any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poisoned = append(r.poisoned, cell)
}

func TestInstrumentation(t *testing.T) {
	rec := newRecordingInstrumentation()
	SetInstrumentation(rec)
	t.Cleanup(func() { SetInstrumentation(nil) })

	c := New(0, WithName("instrumented"))
	c.Subscribe(func(int) {})

	obs := Observe(func() {})
	_ = c.Get()
	c.Set(1)
	obs.Dispose()
	c.Set(2)

	if len(rec.created) != 1 || rec.created[0] != "instrumented" {
		t.Errorf("created = %v", rec.created)
	}
	if len(rec.installed) != 1 || rec.installed[0] != obs.ID() {
		t.Errorf("installed = %v", rec.installed)
	}
	if rec.disposed[obs.ID()] != 1 {
		t.Errorf("disposed invalidations = %d, want 1", rec.disposed[obs.ID()])
	}

	if len(rec.notified) != 2 {
		t.Fatalf("expected 2 notify passes, got %d", len(rec.notified))
	}
	first, second := rec.notified[0], rec.notified[1]
	if first.Cell != "instrumented" || first.Explicit != 1 || first.Implicit != 1 || first.Pruned != 0 {
		t.Errorf("first pass = %+v", first)
	}
	if second.Explicit != 1 || second.Implicit != 0 || second.Pruned != 1 {
		t.Errorf("second pass = %+v", second)
	}

	func() {
		defer func() { _ = recover() }()
		c.Update(func(*int) { panic("boom") })
	}()
	if len(rec.poisoned) != 1 {
		t.Errorf("poisoned = %v", rec.poisoned)
	}
}

func TestMultiSkipsNil(t *testing.T) {
	a := newRecordingInstrumentation()
	b := newRecordingInstrumentation()
	m := Multi(a, nil, b)

	m.CellCreated("x")
	m.Notified(NotifyStats{Cell: "x"})
	m.ObserverInstalled("id")
	m.ObserverDisposed("id", 3)
	m.Poisoned("x", nil)

	for _, r := range []*recordingInstrumentation{a, b} {
		if len(r.created) != 1 || len(r.notified) != 1 || len(r.installed) != 1 || r.disposed["id"] != 3 || len(r.poisoned) != 1 {
			t.Errorf("event not fanned out: %+v", r)
		}
	}
}
