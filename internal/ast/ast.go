package ast

import "github.com/tern-db/tern/internal/value"

// Kind tags the shape of an expression node.
type Kind uint8

const (
	// KindValue is a constant literal.
	KindValue Kind = iota
	// KindReference reads a variable defined elsewhere in the plan.
	KindReference
	// KindAttributeAccess is base.attr.
	KindAttributeAccess
	// KindEq is the == comparison.
	KindEq
	// KindNe is the != comparison.
	KindNe
	// KindLt is the < comparison.
	KindLt
	// KindGt is the > comparison.
	KindGt
	// KindLe is the <= comparison.
	KindLe
	// KindGe is the >= comparison.
	KindGe
	// KindAnd is logical conjunction.
	KindAnd
	// KindOr is logical disjunction.
	KindOr
	// KindNot is logical negation.
	KindNot
	// KindAdd is integer addition.
	KindAdd
	// KindSub is integer subtraction.
	KindSub
	// KindMul is integer multiplication.
	KindMul
	// KindDiv is integer division. Can throw (division by zero).
	KindDiv
	// KindMod is integer modulo. Can throw (modulo by zero).
	KindMod
	// KindCall is a function call. Can throw.
	KindCall
)

var kindNames = map[Kind]string{
	KindValue:           "value",
	KindReference:       "reference",
	KindAttributeAccess: "attribute-access",
	KindEq:              "eq",
	KindNe:              "ne",
	KindLt:              "lt",
	KindGt:              "gt",
	KindLe:              "le",
	KindGe:              "ge",
	KindAnd:             "and",
	KindOr:              "or",
	KindNot:             "not",
	KindAdd:             "add",
	KindSub:             "sub",
	KindMul:             "mul",
	KindDiv:             "div",
	KindMod:             "mod",
	KindCall:            "call",
}

// String returns the kind's name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Node is one expression tree node.
//
// Which fields are meaningful depends on Kind:
//   - KindValue: Constant
//   - KindReference: RefID, RefName
//   - KindAttributeAccess: Operands[0] (base), Attr
//   - binary kinds: Operands[0], Operands[1]
//   - KindNot: Operands[0]
//   - KindCall: Func, Operands (arguments)
//
// Nodes are treated as immutable once built.
type Node struct {
	Kind     Kind
	Operands []*Node

	// Constant is the literal for KindValue.
	Constant value.Value

	// RefID and RefName identify the variable read by KindReference.
	RefID   int64
	RefName string

	// Attr is the attribute name for KindAttributeAccess.
	Attr string

	// Func is the function name for KindCall.
	Func string
}

// NewValue builds a constant literal node.
func NewValue(v value.Value) *Node {
	return &Node{Kind: KindValue, Constant: v}
}

// NewReference builds a variable reference node.
func NewReference(id int64, name string) *Node {
	return &Node{Kind: KindReference, RefID: id, RefName: name}
}

// NewAttributeAccess builds base.attr.
func NewAttributeAccess(base *Node, attr string) *Node {
	return &Node{Kind: KindAttributeAccess, Operands: []*Node{base}, Attr: attr}
}

// NewBinary builds a two-operand node of the given kind.
func NewBinary(kind Kind, lhs, rhs *Node) *Node {
	return &Node{Kind: kind, Operands: []*Node{lhs, rhs}}
}

// NewNot builds a negation node.
func NewNot(op *Node) *Node {
	return &Node{Kind: KindNot, Operands: []*Node{op}}
}

// NewCall builds a function call node.
func NewCall(name string, args ...*Node) *Node {
	return &Node{Kind: KindCall, Func: name, Operands: args}
}

// IsComparison reports whether the kind is one of the binary comparisons
// recognized by range decomposition.
func (k Kind) IsComparison() bool {
	switch k {
	case KindEq, KindNe, KindLt, KindGt, KindLe, KindGe:
		return true
	default:
		return false
	}
}
