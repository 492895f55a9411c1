// Package testutil provides shared helpers for building the linear plans the
// optimizer tests exercise.
package testutil

import (
	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/plan"
)

// PlanBuilder assembles a linear plan bottom-up: each appended node depends
// on the previously appended one, starting from a singleton.
type PlanBuilder struct {
	p       *plan.Plan
	last    plan.NodeID
	nextVar int64
}

// NewPlanBuilder creates a builder whose plan already contains the singleton
// start node.
func NewPlanBuilder() *PlanBuilder {
	b := &PlanBuilder{p: plan.New()}
	b.last = b.p.RegisterNode(plan.NewSingletonNode())
	b.p.SetRoot(b.last)
	return b
}

// Var allocates a fresh variable with a builder-unique id.
func (b *PlanBuilder) Var(name string) *plan.Variable {
	b.nextVar++
	return plan.NewVariable(b.nextVar, name)
}

// append registers n, wires it onto the chain, and makes it the root.
func (b *PlanBuilder) append(n plan.Node) plan.NodeID {
	id := b.p.RegisterNode(n)
	b.p.AddDependency(id, b.last)
	b.p.SetRoot(id)
	b.last = id
	return id
}

// EnumerateCollection appends a collection scan binding outVar.
func (b *PlanBuilder) EnumerateCollection(collection string, outVar *plan.Variable) plan.NodeID {
	return b.append(plan.NewEnumerateCollectionNode(collection, outVar))
}

// Calculation appends a calculation binding expr to outVar.
func (b *PlanBuilder) Calculation(expr *ast.Node, outVar *plan.Variable) plan.NodeID {
	return b.append(plan.NewCalculationNode(expr, outVar))
}

// Filter appends a filter over inVar.
func (b *PlanBuilder) Filter(inVar *plan.Variable) plan.NodeID {
	return b.append(plan.NewFilterNode(inVar))
}

// Return appends a return of inVar.
func (b *PlanBuilder) Return(inVar *plan.Variable) plan.NodeID {
	return b.append(plan.NewReturnNode(inVar))
}

// Plan returns the built plan.
func (b *PlanBuilder) Plan() *plan.Plan {
	return b.p
}
