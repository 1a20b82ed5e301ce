package main

import (
	"context"
	"time"

	"github.com/vango-dev/cellstore/pkg/reactive"
	"github.com/vango-dev/cellstore/pkg/store"
)

// Ticker is the demo bundle served by "inspect --demo".
type Ticker struct {
	Count   *reactive.Int
	Running *reactive.Bool
	History *reactive.Slice[int]
}

func (*Ticker) Default() *Ticker {
	return &Ticker{
		Count:   reactive.New(0, reactive.WithName("ticker.count")),
		Running: reactive.NewBool(true, reactive.WithName("ticker.running")),
		History: reactive.NewSlice[int](nil, reactive.WithName("ticker.history")),
	}
}

func (*Ticker) StoreName() string { return "ticker" }

// runDemo increments the ticker every interval until ctx is done. Each tick
// runs inside an observation session so the inspector shows sessions,
// explicit subscribers and implicit links.
func runDemo(ctx context.Context, reg *store.Registry, interval time.Duration) {
	t := store.GetOrCreate[*Ticker](reg)
	id := t.Count.Subscribe(func(n int) {
		t.History.Update(func(h *[]int) {
			*h = append(*h, n)
			if len(*h) > 16 {
				*h = (*h)[len(*h)-16:]
			}
		})
	})
	defer t.Count.Unsubscribe(id)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	defer t.Running.Set(false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			obs := reactive.Observe(func() {})
			if t.Running.Get() {
				t.Count.Update(func(n *int) { *n++ })
			}
			obs.Dispose()
		}
	}
}
