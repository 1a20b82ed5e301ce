// Package store provides type-keyed registries of shared state bundles.
//
// A bundle is any type built from reactive cells. Bundles are keyed by their
// Go type, so each registry holds at most one instance per type. Because a
// bundle is either a pointer or a struct of *reactive.Cell fields, every copy
// handed out by a registry observes the same cells.
//
// Usage:
//
//	type Cart struct {
//	    Items *reactive.Slice[Item]
//	    Open  *reactive.Bool
//	}
//
//	func (Cart) Default() Cart {
//	    return Cart{
//	        Items: reactive.NewSlice[Item](nil),
//	        Open:  reactive.NewBool(false),
//	    }
//	}
//
//	cart := store.Use[Cart]() // created on first use
//	cart.Open.Set(true)
//
//	same := store.Use[Cart]()
//	same.Open.Get() // true
//
// Process-wide state:
// Default returns the process-wide registry, created on first use. Contexts
// returns the process-wide Manager of named registries; its "default" context
// is the Default registry.
package store
