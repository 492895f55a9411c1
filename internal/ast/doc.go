// Package ast defines the expression tree attached to Calculation nodes and
// the constant-folding surface the optimizer rules consume.
//
// The parser (outside this repository's scope) produces these trees; the
// optimizer only reads them. Nodes are immutable after construction, which is
// what lets cloned plans share constant sub-expressions with their original.
//
// Node kinds the range decomposition recognizes:
//
//	Reference        - a variable produced elsewhere in the plan
//	AttributeAccess  - base.attr, chains form dotted paths
//	Eq, Lt, Gt, Le, Ge - binary comparisons
//	And              - conjunction
//
// Everything else (Or, Not, arithmetic, function calls) exists so that the
// folder and the rules have realistic unrecognized shapes to be conservative
// about.
//
// CONSTANT FOLDING CONTRACT:
//
// IsConstant reports whether a tree can be evaluated without runtime context.
// CanThrow reports whether evaluation could raise a runtime error (division,
// modulo, function calls). Fold and ToBool may only be called when IsConstant
// is true and CanThrow is false; the rules check both before evaluating.
package ast
