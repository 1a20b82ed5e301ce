package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive Category = "reactive"
	CategoryStore    Category = "store"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// CellError is a structured error with the affected cell or store,
// suggestions, and documentation.
type CellError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (reactive, store, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Cell is the name of the cell involved, if any.
	Cell string

	// Store is the type name of the store bundle involved, if any.
	Store string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Cause is the recovered panic value or other origin of the error.
	Cause any

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CellError) Error() string {
	msg := e.Message
	if e.Cell != "" {
		msg = fmt.Sprintf("%s (cell %q)", msg, e.Cell)
	} else if e.Store != "" {
		msg = fmt.Sprintf("%s (store %s)", msg, e.Store)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CellError) Unwrap() error {
	return e.Wrapped
}

// WithCell records the cell the error relates to.
func (e *CellError) WithCell(name string) *CellError {
	e.Cell = name
	return e
}

// WithStore records the store type the error relates to.
func (e *CellError) WithStore(name string) *CellError {
	e.Store = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *CellError) WithSuggestion(s string) *CellError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *CellError) WithDetail(d string) *CellError {
	e.Detail = d
	return e
}

// WithCause records the panic value or other origin of the error.
func (e *CellError) WithCause(cause any) *CellError {
	e.Cause = cause
	return e
}

// Wrap wraps another error.
func (e *CellError) Wrap(err error) *CellError {
	e.Wrapped = err
	return e
}

// New creates a CellError from a registered error code.
func New(code string) *CellError {
	template, ok := registry[code]
	if !ok {
		return &CellError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CellError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new CellError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *CellError {
	return &CellError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a CellError.
func FromError(err error, code string) *CellError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CellError); ok {
		return ce
	}
	return New(code).Wrap(err)
}
