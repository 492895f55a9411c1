package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/plan"
	"github.com/tern-db/tern/internal/testutil"
	"github.com/tern-db/tern/internal/value"
)

// buildScanFilterPlan builds the reference chain
//
//	return <- filter <- calculation <- enumerate-collection <- singleton
//
// for "FOR x IN users FILTER x.a == 5 RETURN x" and returns the plan with
// the node ids of interest.
func buildScanFilterPlan(t *testing.T) (*plan.Plan, plan.NodeID, plan.NodeID) {
	t.Helper()
	b := testutil.NewPlanBuilder()
	x := b.Var("x")
	c := b.Var("c")
	b.EnumerateCollection("users", x)
	expr := ast.NewBinary(ast.KindEq,
		ast.NewAttributeAccess(ast.NewReference(x.ID, x.Name), "a"),
		ast.NewValue(value.Int(5)))
	calcID := b.Calculation(expr, c)
	filterID := b.Filter(c)
	b.Return(x)
	return b.Plan(), calcID, filterID
}

// TestRegisterNodeAssignsIncreasingIDs tests the plan-scoped id source.
func TestRegisterNodeAssignsIncreasingIDs(t *testing.T) {
	p := plan.New()
	first := p.RegisterNode(plan.NewSingletonNode())
	second := p.RegisterNode(plan.NewNoResultsNode())
	assert.Greater(t, int64(second), int64(first))
	assert.Equal(t, 2, p.Size())
}

// TestFindNodesOfTypeOrder tests the documented root-to-leaf traversal
// order.
func TestFindNodesOfTypeOrder(t *testing.T) {
	b := testutil.NewPlanBuilder()
	x := b.Var("x")
	c1 := b.Var("c1")
	c2 := b.Var("c2")
	b.EnumerateCollection("users", x)
	lower := b.Calculation(ast.NewValue(value.Bool(true)), c1)
	upper := b.Calculation(ast.NewValue(value.Bool(true)), c2)
	b.Return(x)
	p := b.Plan()

	calcs := p.FindNodesOfType(plan.TypeCalculation, true)
	require.Len(t, calcs, 2)
	// Root-to-leaf: the calculation closer to the return comes first.
	assert.Equal(t, upper, calcs[0].ID())
	assert.Equal(t, lower, calcs[1].ID())
}

// TestVarSetBy tests producer lookup.
func TestVarSetBy(t *testing.T) {
	p, calcID, _ := buildScanFilterPlan(t)

	producer := p.VarSetBy(2) // c
	require.NotNil(t, producer)
	assert.Equal(t, calcID, producer.ID())
	assert.Equal(t, plan.TypeCalculation, producer.Type())

	enum := p.VarSetBy(1) // x
	require.NotNil(t, enum)
	assert.Equal(t, plan.TypeEnumerateCollection, enum.Type())

	assert.Nil(t, p.VarSetBy(99))
}

// TestVarSetByReflectsEdits tests that the producer index is not a stale
// snapshot.
func TestVarSetByReflectsEdits(t *testing.T) {
	p, calcID, filterID := buildScanFilterPlan(t)

	require.NotNil(t, p.VarSetBy(2))
	p.UnlinkNodes(map[plan.NodeID]struct{}{
		filterID: {},
		calcID:   {},
	})
	assert.Nil(t, p.VarSetBy(2))
}

// TestVarsUsedAfter tests the liveness sets.
func TestVarsUsedAfter(t *testing.T) {
	p, calcID, filterID := buildScanFilterPlan(t)

	// Downstream of the calculation: the filter consumes c, the return
	// consumes x.
	after := p.VarsUsedAfter(calcID)
	assert.Contains(t, after, int64(2))
	assert.Contains(t, after, int64(1))

	// Downstream of the filter only the return remains, which reads x.
	after = p.VarsUsedAfter(filterID)
	assert.NotContains(t, after, int64(2))
	assert.Contains(t, after, int64(1))

	// Nothing is live after the root.
	assert.Empty(t, p.VarsUsedAfter(p.Root().ID()))
}

// TestReplaceNode tests splicing a node into another's position.
func TestReplaceNode(t *testing.T) {
	p, _, filterID := buildScanFilterPlan(t)
	filter := p.Node(filterID)
	parents := filter.Parents()
	require.Len(t, parents, 1)
	formerDeps := filter.Dependencies()

	noRes := plan.NewNoResultsNode()
	newID := p.RegisterNode(noRes)
	p.ReplaceNode(filterID, newID, parents[0])

	assert.Nil(t, p.Node(filterID))
	assert.Equal(t, formerDeps, p.Node(newID).Dependencies())
	assert.Equal(t, []plan.NodeID{parents[0]}, p.Node(newID).Parents())
	assert.Contains(t, p.Node(parents[0]).Dependencies(), newID)

	// The former dependency now reports the replacement as its parent.
	dep := p.Node(formerDeps[0])
	assert.Contains(t, dep.Parents(), newID)
	assert.NotContains(t, dep.Parents(), filterID)
}

// TestReplaceNodePanicsOnWrongParent tests the contract assertion.
func TestReplaceNodePanicsOnWrongParent(t *testing.T) {
	p, calcID, filterID := buildScanFilterPlan(t)
	newID := p.RegisterNode(plan.NewNoResultsNode())

	assert.Panics(t, func() {
		p.ReplaceNode(filterID, newID, calcID) // calc is not filter's parent
	})
}

// TestUnlinkNode tests removing one node from the chain.
func TestUnlinkNode(t *testing.T) {
	p, _, filterID := buildScanFilterPlan(t)
	filter := p.Node(filterID)
	parent := filter.Parents()[0]
	dep := filter.Dependencies()[0]

	p.UnlinkNode(filterID)

	assert.Nil(t, p.Node(filterID))
	assert.Contains(t, p.Node(parent).Dependencies(), dep)
	assert.Contains(t, p.Node(dep).Parents(), parent)
}

// TestUnlinkNodesBatchConnectivity tests that batch unlink preserves
// connectivity: every former parent of a removed node ends up a parent of
// that node's former sole dependency.
func TestUnlinkNodesBatchConnectivity(t *testing.T) {
	p, calcID, filterID := buildScanFilterPlan(t)
	enumID := p.Node(calcID).Dependencies()[0]
	returnID := p.Node(filterID).Parents()[0]

	p.UnlinkNodes(map[plan.NodeID]struct{}{
		calcID:   {},
		filterID: {},
	})

	// The chain contracted to return <- enumerate-collection <- singleton.
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, []plan.NodeID{enumID}, p.Node(returnID).Dependencies())
	assert.Contains(t, p.Node(enumID).Parents(), returnID)
}

// TestUnlinkNodePanicsOnMultiDependency tests the single-dependency
// precondition.
func TestUnlinkNodePanicsOnMultiDependency(t *testing.T) {
	p := plan.New()
	a := p.RegisterNode(plan.NewSingletonNode())
	c := p.RegisterNode(plan.NewSingletonNode())
	top := p.RegisterNode(plan.NewNoResultsNode())
	p.AddDependency(top, a)
	p.AddDependency(top, c)
	p.SetRoot(top)

	assert.Panics(t, func() { p.UnlinkNode(top) })
}

// TestClone tests that a clone preserves topology and ids but is
// independently mutable.
func TestClone(t *testing.T) {
	p, calcID, filterID := buildScanFilterPlan(t)
	clone := p.Clone()

	assert.Equal(t, p.Size(), clone.Size())
	assert.Equal(t, p.Root().ID(), clone.Root().ID())
	assert.Equal(t, p.Explain(), clone.Explain())

	// Nodes are fresh copies, not shared.
	require.NotNil(t, clone.Node(filterID))
	assert.NotSame(t, p.Node(filterID), clone.Node(filterID))

	// Mutating the clone leaves the original untouched.
	clone.UnlinkNodes(map[plan.NodeID]struct{}{filterID: {}, calcID: {}})
	assert.Nil(t, clone.Node(filterID))
	assert.NotNil(t, p.Node(filterID))
	assert.NotNil(t, p.VarSetBy(2))

	// Ids allocated after cloning do not collide.
	id := clone.RegisterNode(plan.NewNoResultsNode())
	assert.Nil(t, p.Node(id))
}

// TestWalkDependencies tests the dependency-chain walk and its stopping
// rule.
func TestWalkDependencies(t *testing.T) {
	p, _, filterID := buildScanFilterPlan(t)

	var visited []plan.NodeType
	p.WalkDependencies(filterID, func(n plan.Node) {
		visited = append(visited, n.Type())
	})

	assert.Equal(t, []plan.NodeType{
		plan.TypeFilter,
		plan.TypeCalculation,
		plan.TypeEnumerateCollection,
		plan.TypeSingleton,
	}, visited)
}

// TestExplain tests the deterministic plan rendering.
func TestExplain(t *testing.T) {
	p, _, _ := buildScanFilterPlan(t)

	expected := "return[5] return x\n" +
		"  filter[4] filter c\n" +
		"    calculation[3] c = (x.a == 5)\n" +
		"      enumerate-collection[2] for x in users\n" +
		"        singleton[1]\n"
	assert.Equal(t, expected, p.Explain())
}
