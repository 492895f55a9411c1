package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/catalog"
	"github.com/tern-db/tern/internal/ranges"
)

// NodeID addresses a node within its owning plan.
type NodeID int64

// NodeType tags the operator kind of a node.
type NodeType string

const (
	// TypeSingleton produces exactly one empty row; the start of every chain.
	TypeSingleton NodeType = "singleton"
	// TypeEnumerateCollection iterates a collection's documents.
	TypeEnumerateCollection NodeType = "enumerate-collection"
	// TypeCalculation evaluates an expression and binds the result.
	TypeCalculation NodeType = "calculation"
	// TypeFilter conditionally drops rows.
	TypeFilter NodeType = "filter"
	// TypeReturn emits rows to the caller; the root of the chains seen here.
	TypeReturn NodeType = "return"
	// TypeIndexRange iterates documents via an index over bound intervals.
	TypeIndexRange NodeType = "index-range"
	// TypeNoResults produces zero rows forever.
	TypeNoResults NodeType = "no-results"
)

// Node is one plan operator.
//
// The interface is sealed to this package; rules create nodes through the
// exported constructors and mutate the graph through plan edit operations
// only. Dependencies and Parents return the plan-held edges by id.
type Node interface {
	ID() NodeID
	Type() NodeType

	// Dependencies are the node's inputs (toward the producers), ordered.
	Dependencies() []NodeID

	// Parents are the node's consumers (toward the root).
	Parents() []NodeID

	// VariablesUsed are the variables the node consumes.
	VariablesUsed() []*Variable

	// VariablesDefined are the variables the node produces.
	VariablesDefined() []*Variable

	// summary renders the operator-specific part of an explain line.
	summary() string

	// cloneNode deep-copies node-local state under the same id. Expression
	// trees and bound endpoints are shared: they are immutable.
	cloneNode() Node

	base() *baseNode
}

// baseNode carries the id and edges every variant shares.
type baseNode struct {
	id      NodeID
	deps    []NodeID
	parents []NodeID
}

func (b *baseNode) ID() NodeID { return b.id }
func (b *baseNode) Dependencies() []NodeID {
	return append([]NodeID(nil), b.deps...)
}
func (b *baseNode) Parents() []NodeID {
	out := append([]NodeID(nil), b.parents...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func (b *baseNode) base() *baseNode { return b }

func (b *baseNode) cloneBase() baseNode {
	return baseNode{
		id:      b.id,
		deps:    append([]NodeID(nil), b.deps...),
		parents: append([]NodeID(nil), b.parents...),
	}
}

// removeParent deletes one parent edge if present.
func (b *baseNode) removeParent(id NodeID) {
	for i, p := range b.parents {
		if p == id {
			b.parents = append(b.parents[:i], b.parents[i+1:]...)
			return
		}
	}
}

// addParent adds a parent edge, keeping the set free of duplicates.
func (b *baseNode) addParent(id NodeID) {
	for _, p := range b.parents {
		if p == id {
			return
		}
	}
	b.parents = append(b.parents, id)
}

// replaceDependency switches one dependency edge in place, preserving order.
func (b *baseNode) replaceDependency(old, repl NodeID) bool {
	for i, d := range b.deps {
		if d == old {
			b.deps[i] = repl
			return true
		}
	}
	return false
}

// SingletonNode produces a single empty row.
type SingletonNode struct {
	baseNode
}

// NewSingletonNode creates a singleton node.
func NewSingletonNode() *SingletonNode { return &SingletonNode{} }

func (n *SingletonNode) Type() NodeType { return TypeSingleton }
func (n *SingletonNode) VariablesUsed() []*Variable { return nil }
func (n *SingletonNode) VariablesDefined() []*Variable { return nil }
func (n *SingletonNode) summary() string { return "" }
func (n *SingletonNode) cloneNode() Node {
	return &SingletonNode{baseNode: n.cloneBase()}
}

// EnumerateCollectionNode iterates a collection, binding each document to its
// iteration variable.
type EnumerateCollectionNode struct {
	baseNode
	Collection string
	outVar     *Variable
}

// NewEnumerateCollectionNode creates an enumeration over collection, binding
// documents to outVar.
func NewEnumerateCollectionNode(collection string, outVar *Variable) *EnumerateCollectionNode {
	return &EnumerateCollectionNode{Collection: collection, outVar: outVar}
}

func (n *EnumerateCollectionNode) Type() NodeType { return TypeEnumerateCollection }
func (n *EnumerateCollectionNode) VariablesUsed() []*Variable { return nil }
func (n *EnumerateCollectionNode) VariablesDefined() []*Variable { return []*Variable{n.outVar} }

// OutVariable is the iteration variable.
func (n *EnumerateCollectionNode) OutVariable() *Variable { return n.outVar }

func (n *EnumerateCollectionNode) summary() string {
	return fmt.Sprintf("for %s in %s", n.outVar.Name, n.Collection)
}

func (n *EnumerateCollectionNode) cloneNode() Node {
	return &EnumerateCollectionNode{
		baseNode:   n.cloneBase(),
		Collection: n.Collection,
		outVar:     n.outVar,
	}
}

// CalculationNode evaluates an expression and binds the result to its output
// variable. The expression tree is owned by the parser's AST and treated as
// immutable here.
type CalculationNode struct {
	baseNode
	expr   *ast.Node
	outVar *Variable
}

// NewCalculationNode creates a calculation binding expr's result to outVar.
func NewCalculationNode(expr *ast.Node, outVar *Variable) *CalculationNode {
	return &CalculationNode{expr: expr, outVar: outVar}
}

func (n *CalculationNode) Type() NodeType { return TypeCalculation }

func (n *CalculationNode) VariablesUsed() []*Variable { return collectRefVars(n.expr) }

func (n *CalculationNode) VariablesDefined() []*Variable { return []*Variable{n.outVar} }

// Expression is the calculation's expression tree.
func (n *CalculationNode) Expression() *ast.Node { return n.expr }

// OutVariable is the variable the calculation defines.
func (n *CalculationNode) OutVariable() *Variable { return n.outVar }

func (n *CalculationNode) summary() string {
	return fmt.Sprintf("%s = %s", n.outVar.Name, n.expr)
}

func (n *CalculationNode) cloneNode() Node {
	return &CalculationNode{baseNode: n.cloneBase(), expr: n.expr, outVar: n.outVar}
}

// FilterNode drops rows for which its input variable is falsy. A filter
// consumes exactly one variable and defines none.
type FilterNode struct {
	baseNode
	inVar *Variable
}

// NewFilterNode creates a filter over inVar.
func NewFilterNode(inVar *Variable) *FilterNode {
	return &FilterNode{inVar: inVar}
}

func (n *FilterNode) Type() NodeType { return TypeFilter }
func (n *FilterNode) VariablesUsed() []*Variable { return []*Variable{n.inVar} }
func (n *FilterNode) VariablesDefined() []*Variable { return nil }

// InVariable is the filter's condition variable.
func (n *FilterNode) InVariable() *Variable { return n.inVar }

func (n *FilterNode) summary() string { return "filter " + n.inVar.Name }

func (n *FilterNode) cloneNode() Node {
	return &FilterNode{baseNode: n.cloneBase(), inVar: n.inVar}
}

// ReturnNode emits its input variable's rows to the caller.
type ReturnNode struct {
	baseNode
	inVar *Variable
}

// NewReturnNode creates a return of inVar.
func NewReturnNode(inVar *Variable) *ReturnNode {
	return &ReturnNode{inVar: inVar}
}

func (n *ReturnNode) Type() NodeType { return TypeReturn }
func (n *ReturnNode) VariablesUsed() []*Variable { return []*Variable{n.inVar} }
func (n *ReturnNode) VariablesDefined() []*Variable { return nil }

// InVariable is the returned variable.
func (n *ReturnNode) InVariable() *Variable { return n.inVar }

func (n *ReturnNode) summary() string { return "return " + n.inVar.Name }

func (n *ReturnNode) cloneNode() Node {
	return &ReturnNode{baseNode: n.cloneBase(), inVar: n.inVar}
}

// NoResultsNode produces zero rows forever. Substituted for filters that are
// constantly false.
type NoResultsNode struct {
	baseNode
}

// NewNoResultsNode creates a no-results node.
func NewNoResultsNode() *NoResultsNode { return &NoResultsNode{} }

func (n *NoResultsNode) Type() NodeType { return TypeNoResults }
func (n *NoResultsNode) VariablesUsed() []*Variable { return nil }
func (n *NoResultsNode) VariablesDefined() []*Variable { return nil }
func (n *NoResultsNode) summary() string { return "" }
func (n *NoResultsNode) cloneNode() Node {
	return &NoResultsNode{baseNode: n.cloneBase()}
}

// AttributeRange pairs a dotted attribute path with its accumulated interval.
type AttributeRange struct {
	Attribute string
	Range     *ranges.Range
}

// IndexRangeNode iterates a collection via an index over bound intervals.
// Substituted for an EnumerateCollectionNode by the index-range rule.
type IndexRangeNode struct {
	baseNode
	Collection string
	outVar     *Variable
	Index      catalog.Index
	Ranges     []AttributeRange
}

// NewIndexRangeNode creates an index scan over collection with the given
// index and attribute ranges, binding documents to outVar. Ranges are stored
// in ascending attribute order.
func NewIndexRangeNode(collection string, outVar *Variable, idx catalog.Index, attrRanges []AttributeRange) *IndexRangeNode {
	sorted := append([]AttributeRange(nil), attrRanges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Attribute < sorted[j].Attribute })
	return &IndexRangeNode{
		Collection: collection,
		outVar:     outVar,
		Index:      idx,
		Ranges:     sorted,
	}
}

func (n *IndexRangeNode) Type() NodeType { return TypeIndexRange }
func (n *IndexRangeNode) VariablesUsed() []*Variable { return nil }
func (n *IndexRangeNode) VariablesDefined() []*Variable { return []*Variable{n.outVar} }

// OutVariable is the iteration variable.
func (n *IndexRangeNode) OutVariable() *Variable { return n.outVar }

func (n *IndexRangeNode) summary() string {
	parts := make([]string, len(n.Ranges))
	for i, ar := range n.Ranges {
		parts[i] = fmt.Sprintf("%s in %s", ar.Attribute, ar.Range)
	}
	return fmt.Sprintf("for %s in %s via %s: %s",
		n.outVar.Name, n.Collection, n.Index.Name, strings.Join(parts, ", "))
}

func (n *IndexRangeNode) cloneNode() Node {
	return &IndexRangeNode{
		baseNode:   n.cloneBase(),
		Collection: n.Collection,
		outVar:     n.outVar,
		Index:      n.Index,
		Ranges:     append([]AttributeRange(nil), n.Ranges...),
	}
}
