package reactive

import (
	"maps"
	"slices"
)

// Common cell types.
type (
	Bool    = Cell[bool]
	String  = Cell[string]
	Int     = Cell[int]
	Int32   = Cell[int32]
	Uint32  = Cell[uint32]
	Float64 = Cell[float64]
)

// Slice is a cell holding a slice.
type Slice[T any] = Cell[[]T]

// MapCell is a cell holding a map.
type MapCell[K comparable, V any] = Cell[map[K]V]

// Optional is a cell holding a possibly-nil pointer.
type Optional[T any] = Cell[*T]

// Number constrains the element types accepted by NewNumber.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NewBool creates a bool cell.
func NewBool(initial bool, opts ...CellOption) *Bool {
	return New(initial, opts...)
}

// NewString creates a string cell.
func NewString(initial string, opts ...CellOption) *String {
	return New(initial, opts...)
}

// NewNumber creates a numeric cell.
func NewNumber[N Number](initial N, opts ...CellOption) *Cell[N] {
	return New(initial, opts...)
}

// NewSlice creates a slice cell. Values leaving the cell are shallow copies,
// so readers can append without affecting the stored slice.
func NewSlice[T any](initial []T, opts ...CellOption) *Slice[T] {
	return New(initial, opts...).WithClone(func(s []T) []T { return slices.Clone(s) })
}

// NewMap creates a map cell. Values leaving the cell are shallow copies.
func NewMap[K comparable, V any](initial map[K]V, opts ...CellOption) *MapCell[K, V] {
	return New(initial, opts...).WithClone(func(m map[K]V) map[K]V { return maps.Clone(m) })
}

// NewOptional creates a cell holding a possibly-nil pointer.
func NewOptional[T any](initial *T, opts ...CellOption) *Optional[T] {
	return New(initial, opts...)
}
