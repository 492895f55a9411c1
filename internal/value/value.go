package value

import "sort"

// Value is a sealed interface representing a constant document value.
// Only Null, Bool, Int, String, Array, and Object implement it.
// NO Float - floats are forbidden in the constant model (determinism).
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Null represents the document null value.
// An explicit type ensures all values satisfy the sealed interface.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integer value.
// Always int64, never float64.
type Int int64

func (Int) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Array represents an array of values.
type Array []Value

func (Array) value() {}

// Object represents a map of string keys to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns the object's keys in ascending order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsTrue reports document truthiness for a value.
//
// Truthiness rules:
//   - null, false, 0, "" are false
//   - everything else, including empty arrays and objects, is true
func IsTrue(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case String:
		return val != ""
	case Array, Object:
		return true
	default:
		return false
	}
}
