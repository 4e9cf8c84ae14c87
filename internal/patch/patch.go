// Package patch models one field of a partial update.
package patch

// Field is either untouched, set to a value, or cleared. The zero value is
// untouched.
type Field[T any] struct {
	state state
	value T
}

type state uint8

const (
	keep state = iota
	set
	cleared
)

func Keep[T any]() Field[T] { return Field[T]{} }

func Set[T any](v T) Field[T] { return Field[T]{state: set, value: v} }

func Clear[T any]() Field[T] { return Field[T]{state: cleared} }

// Value returns the new value and whether there is one.
func (f Field[T]) Value() (T, bool) { return f.value, f.state == set }

// Apply writes the new value, or the zero value on clear, into dst.
func (f Field[T]) Apply(dst *T) {
	switch f.state {
	case set:
		*dst = f.value
	case cleared:
		var zero T
		*dst = zero
	}
}
