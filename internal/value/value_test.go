package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsTrue tests document truthiness rules.
func TestIsTrue(t *testing.T) {
	tests := []struct {
		name     string
		val      Value
		expected bool
	}{
		{name: "null is false", val: Null{}, expected: false},
		{name: "false is false", val: Bool(false), expected: false},
		{name: "true is true", val: Bool(true), expected: true},
		{name: "zero is false", val: Int(0), expected: false},
		{name: "nonzero is true", val: Int(42), expected: true},
		{name: "negative is true", val: Int(-1), expected: true},
		{name: "empty string is false", val: String(""), expected: false},
		{name: "string is true", val: String("x"), expected: true},
		{name: "empty array is true", val: Array{}, expected: true},
		{name: "array is true", val: Array{Int(1)}, expected: true},
		{name: "empty object is true", val: Object{}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTrue(tt.val))
		})
	}
}

// TestCompareTypeOrder tests that values of different types order by the
// document type order.
func TestCompareTypeOrder(t *testing.T) {
	ordered := []Value{
		Null{},
		Bool(true),
		Int(99),
		String("a"),
		Array{Int(1)},
		Object{"a": Int(1)},
	}

	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			c := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, c, "expected %T < %T", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, c, "expected %T > %T", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, c)
			}
		}
	}
}

// TestCompareWithinType tests ordering within a single type.
func TestCompareWithinType(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		expected int
	}{
		{name: "false before true", a: Bool(false), b: Bool(true), expected: -1},
		{name: "ints numeric", a: Int(-5), b: Int(3), expected: -1},
		{name: "ints equal", a: Int(7), b: Int(7), expected: 0},
		{name: "strings lexicographic", a: String("abc"), b: String("abd"), expected: -1},
		{name: "array prefix first", a: Array{Int(1)}, b: Array{Int(1), Int(2)}, expected: -1},
		{name: "array elementwise", a: Array{Int(1), Int(3)}, b: Array{Int(1), Int(2)}, expected: 1},
		{name: "objects by key", a: Object{"a": Int(1)}, b: Object{"b": Int(1)}, expected: -1},
		{name: "objects by value", a: Object{"a": Int(1)}, b: Object{"a": Int(2)}, expected: -1},
		{name: "objects equal", a: Object{"a": Int(1)}, b: Object{"a": Int(1)}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.expected, Compare(tt.b, tt.a))
		})
	}
}

// TestCompareNFCNormalization tests that composed and decomposed forms of the
// same string compare equal.
func TestCompareNFCNormalization(t *testing.T) {
	composed := String("café")    // é as single code point
	decomposed := String("café") // e + combining acute

	assert.Equal(t, 0, Compare(composed, decomposed))
	assert.True(t, Equal(composed, decomposed))
}

// TestMarshalCanonical tests deterministic JSON rendering.
func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name     string
		val      Value
		expected string
	}{
		{name: "null", val: Null{}, expected: `null`},
		{name: "bool", val: Bool(true), expected: `true`},
		{name: "int", val: Int(-42), expected: `-42`},
		{name: "string", val: String("hi"), expected: `"hi"`},
		{name: "no html escaping", val: String("a<b&c>d"), expected: `"a<b&c>d"`},
		{name: "array", val: Array{Int(1), String("x")}, expected: `[1,"x"]`},
		{
			name:     "object keys sorted",
			val:      Object{"b": Int(2), "a": Int(1)},
			expected: `{"a":1,"b":2}`,
		},
		{
			name:     "nested",
			val:      Object{"a": Array{Null{}, Bool(false)}},
			expected: `{"a":[null,false]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

// TestMarshalCanonicalDeterministic tests that repeated marshaling of the
// same object yields identical bytes.
func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Object{"z": Int(1), "a": Int(2), "m": Array{String("x"), Null{}}}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
