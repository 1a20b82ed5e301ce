// Package errors provides structured, coded errors for cellstore.
//
// Every abnormal condition the engine can surface has a unique code
// (e.g. "E201") that maps to a short message, a longer explanation and a
// documentation URL. Errors carry the name of the cell or store involved
// and can wrap a sentinel so callers can match with errors.Is.
//
// # Error Categories
//
//   - reactive: cell and observer failures (poisoned cell, nil callback)
//   - store: registry failures (missing store, unknown context)
//   - config: inspector configuration failures
//   - cli: command line tool failures
//
// # Usage
//
//	err := errors.New("E201").
//	    WithCell("cart.items").
//	    WithSuggestion("Recreate the cell; a poisoned cell cannot be recovered").
//	    Wrap(reactive.ErrPoisoned)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Cell poisoned by panic during update
//	//
//	//   cell: cart.items
//	//
//	//   A previous Update mutator panicked while holding the value lock.
//	//   ...
package errors
