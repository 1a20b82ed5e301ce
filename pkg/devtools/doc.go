// Package devtools provides a developer inspector for cellstore.
//
// The inspector is an HTTP server that exposes the contents of store
// registries, recent engine events, Prometheus metrics and a websocket
// stream of live events. It never serializes cell values: events carry cell
// names, counts and timings only.
//
// Basic usage:
//
//	hub := devtools.NewHub()
//	reactive.SetInstrumentation(hub)
//	store.SetHooks(hub)
//
//	srv := devtools.NewServer(
//	    devtools.WithAddress("localhost:7070"),
//	    devtools.WithHub(hub),
//	    devtools.WithManager(store.Contexts()),
//	)
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Endpoints:
//
//	GET /healthz          liveness probe
//	GET /stores           every context with its registered store names
//	GET /stores/{context} one context
//	GET /events?limit=N   most recent events, oldest first
//	GET /metrics          Prometheus exposition (when a gatherer is set)
//	GET /ws               websocket stream of events as JSON text frames
package devtools
