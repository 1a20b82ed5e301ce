package reactive

import (
	"sync"
	"testing"
)

func TestSlotInstallAndClear(t *testing.T) {
	s := NewSlot()
	if s.Current() != nil {
		t.Fatal("new slot should be empty")
	}

	a := &Observer{}
	b := &Observer{}

	s.Install(a)
	if s.Current() != a {
		t.Error("Install should set current")
	}

	s.Install(b)
	if s.Current() != b {
		t.Error("Install should overwrite current")
	}

	if s.ClearIf(a) {
		t.Error("ClearIf with a stale observer should not clear")
	}
	if s.Current() != b {
		t.Error("stale ClearIf clobbered the slot")
	}

	if !s.ClearIf(b) {
		t.Error("ClearIf with the current observer should clear")
	}
	if s.Current() != nil {
		t.Error("slot should be empty")
	}

	if s.ClearIf(nil) {
		t.Error("ClearIf(nil) should be a no-op")
	}
}

func TestGetGoroutineID(t *testing.T) {
	id1 := getGoroutineID()
	id2 := getGoroutineID()
	if id1 == 0 || id1 != id2 {
		t.Fatalf("goroutine id unstable: %d %d", id1, id2)
	}

	var other uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = getGoroutineID()
	}()
	wg.Wait()

	if other == id1 {
		t.Error("different goroutines should have different ids")
	}
}

func TestAmbientPerGoroutine(t *testing.T) {
	mine := Ambient()
	if Ambient() != mine {
		t.Error("Ambient should return the same slot on one goroutine")
	}

	var theirs *Slot
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		theirs = Ambient()
		ReleaseAmbient()
	}()
	wg.Wait()

	if theirs == mine {
		t.Error("goroutines should not share ambient slots")
	}
}

func TestReleaseAmbient(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = Ambient()
		if peekAmbient() == nil {
			t.Error("expected ambient slot to exist")
		}
		ReleaseAmbient()
		if peekAmbient() != nil {
			t.Error("expected ambient slot to be released")
		}
	}()
	wg.Wait()
}

func ambientSlotCount() int {
	n := 0
	ambientSlots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestAmbientSlotDroppedOnDispose(t *testing.T) {
	c := New(0)
	before := ambientSlotCount()

	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs := Observe(func() {})
			_ = c.Get()
			obs.Dispose()
		}()
	}
	wg.Wait()

	if after := ambientSlotCount(); after != before {
		t.Errorf("ambient slots before=%d after 500 finished sessions=%d", before, after)
	}
	c.Set(1)
	if c.LinkCount() != 0 {
		t.Errorf("LinkCount() = %d after notify, want 0", c.LinkCount())
	}
}

func TestAmbientSlotReattachedOnInstall(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c := New(0)

		first := Observe(func() {})
		first.Dispose()
		if peekAmbient() != nil {
			t.Error("slot should leave the table once emptied")
		}

		calls := 0
		second := Observe(func() { calls++ })
		defer second.Dispose()
		_ = c.Get()
		c.Set(1)
		if calls != 1 {
			t.Errorf("second session got %d invalidations, want 1", calls)
		}
	}()
	wg.Wait()
}

func TestUntrackRestoresIntoDroppedSlot(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c := New(0)

		calls := 0
		outer := Observe(func() { calls++ })
		defer outer.Dispose()

		Untrack(func() {
			inner := Observe(func() {})
			inner.Dispose()
		})

		_ = c.Get()
		c.Set(1)
		if calls != 1 {
			t.Errorf("restored observer got %d invalidations, want 1", calls)
		}
	}()
	wg.Wait()
}
