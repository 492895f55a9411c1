// Package value defines the constant value model shared by the expression
// AST and the optimizer.
//
// Values are the results of constant folding and the endpoints of range
// bounds. The model is deliberately small and deterministic:
//
//   - Null, Bool, Int, String, Array, Object
//   - NO floats - a float constant cannot be folded deterministically across
//     platforms, so the parser never produces one and this package forbids it
//
// Value is a sealed interface using the marker method pattern. Only types in
// this package implement it, which keeps type switches in the folder and the
// range map exhaustive.
//
// ORDERING:
//
// Compare implements the document type order used for range intersection:
//
//	null < bool < int < string < array < object
//
// Within a type, bool orders false < true, ints numerically, strings by NFC
// normalized byte order, arrays elementwise, objects by sorted key then value.
//
// CANONICAL RENDERING:
//
// MarshalCanonical produces deterministic JSON (sorted object keys, NFC
// normalized strings, no HTML escaping) for explain output and golden tests.
package value
