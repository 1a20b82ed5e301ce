package reactive

import (
	"errors"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
)

// ErrPoisoned is wrapped by the panic value raised when a poisoned cell is used.
// A cell is poisoned when an Update mutator panics while holding its value lock.
var ErrPoisoned = errors.New("reactive: cell poisoned")

// poisonError builds the structured error carried by poisoned-cell panics.
func poisonError(cell string, cause any) *cserrors.CellError {
	return cserrors.New("E201").
		WithCell(cell).
		WithCause(cause).
		WithSuggestion("Discard the cell and create a new one; a poisoned cell cannot be recovered").
		Wrap(ErrPoisoned)
}
