package plan

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Plan owns a node graph. Nodes never outlive their plan; cloned plans own
// independent copies of every node.
type Plan struct {
	nodes  map[NodeID]Node
	root   NodeID
	nextID NodeID

	// Derived state, rebuilt lazily after structural edits.
	varSetBy   map[int64]NodeID
	usedAfter  map[NodeID]map[int64]struct{}
	usageValid bool
}

// New creates an empty plan.
func New() *Plan {
	return &Plan{nodes: make(map[NodeID]Node)}
}

// NextID returns the next plan-unique node id.
func (p *Plan) NextID() NodeID {
	p.nextID++
	return p.nextID
}

// RegisterNode takes ownership of a node, assigning it a plan-unique id.
// Returns the assigned id. Registration alone adds no edges; the node joins
// the graph when it is spliced in (AddDependency, ReplaceNode).
func (p *Plan) RegisterNode(n Node) NodeID {
	b := n.base()
	if b.id == 0 {
		b.id = p.NextID()
	} else if b.id > p.nextID {
		p.nextID = b.id
	}
	if _, exists := p.nodes[b.id]; exists {
		panic(errors.AssertionFailedf("node id %d registered twice", b.id))
	}
	p.nodes[b.id] = n
	p.InvalidateUsage()
	return b.id
}

// Node resolves an id to its node, or nil if the id is not in this plan.
func (p *Plan) Node(id NodeID) Node {
	return p.nodes[id]
}

// Root returns the plan's root node (the final operator).
func (p *Plan) Root() Node {
	return p.nodes[p.root]
}

// SetRoot marks the root node.
func (p *Plan) SetRoot(id NodeID) {
	if _, ok := p.nodes[id]; !ok {
		panic(errors.AssertionFailedf("root id %d not registered", id))
	}
	p.root = id
}

// Size returns the number of nodes in the plan.
func (p *Plan) Size() int {
	return len(p.nodes)
}

// AddDependency makes dep an input of node: dep is appended to node's
// dependency list and node becomes a parent of dep.
func (p *Plan) AddDependency(node, dep NodeID) {
	n, d := p.nodes[node], p.nodes[dep]
	if n == nil || d == nil {
		panic(errors.AssertionFailedf("AddDependency(%d, %d): unknown node", node, dep))
	}
	n.base().deps = append(n.base().deps, dep)
	d.base().addParent(node)
	p.InvalidateUsage()
}

// FindNodesOfType returns all nodes of the given type, in a fixed traversal
// order: depth-first from the root following dependency edges in order,
// pre-order (root to leaf). The recursive flag requests descent into nested
// sub-plans; the plan shapes this optimizer handles have none, so both values
// currently traverse the whole plan.
func (p *Plan) FindNodesOfType(t NodeType, recursive bool) []Node {
	_ = recursive
	var out []Node
	seen := make(map[NodeID]bool)
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := p.nodes[id]
		if n == nil {
			return
		}
		if n.Type() == t {
			out = append(out, n)
		}
		for _, dep := range n.base().deps {
			walk(dep)
		}
	}
	walk(p.root)
	return out
}

// VarSetBy returns the node that defines the given variable, or nil if no
// node in this plan does. Reflects the current structure, not a stale
// snapshot: the producer index is rebuilt after structural edits.
func (p *Plan) VarSetBy(varID int64) Node {
	p.ensureUsage()
	id, ok := p.varSetBy[varID]
	if !ok {
		return nil
	}
	return p.nodes[id]
}

// VarsUsedAfter returns the ids of all variables consumed by nodes strictly
// downstream of the given node (its parents, transitively). Used to decide
// whether a definition is dead.
func (p *Plan) VarsUsedAfter(id NodeID) map[int64]struct{} {
	p.ensureUsage()
	return p.usedAfter[id]
}

// InvalidateUsage marks the derived indexes stale. Callers that edit node
// edges outside the plan's own operations must call this before further
// queries.
func (p *Plan) InvalidateUsage() {
	p.usageValid = false
}

func (p *Plan) ensureUsage() {
	if p.usageValid {
		return
	}
	p.varSetBy = make(map[int64]NodeID)
	for id, n := range p.nodes {
		for _, v := range n.VariablesDefined() {
			p.varSetBy[v.ID] = id
		}
	}

	// usedAfter(n) = union over parents pr of usedAfter(pr) + varsUsed(pr).
	p.usedAfter = make(map[NodeID]map[int64]struct{}, len(p.nodes))
	var compute func(id NodeID) map[int64]struct{}
	compute = func(id NodeID) map[int64]struct{} {
		if s, ok := p.usedAfter[id]; ok {
			return s
		}
		s := make(map[int64]struct{})
		p.usedAfter[id] = s
		for _, prID := range p.nodes[id].base().parents {
			pr := p.nodes[prID]
			if pr == nil {
				continue
			}
			for _, v := range pr.VariablesUsed() {
				s[v.ID] = struct{}{}
			}
			for varID := range compute(prID) {
				s[varID] = struct{}{}
			}
		}
		return s
	}
	for id := range p.nodes {
		compute(id)
	}
	p.usageValid = true
}

// ReplaceNode splices repl into old's position: repl inherits old's
// dependencies, and old's single parent now depends on repl. Old is removed
// from the plan.
//
// Precondition: old has exactly one parent, which must be the given parent.
// Violations are contract failures, not recoverable errors.
func (p *Plan) ReplaceNode(old, repl, parent NodeID) {
	oldNode := p.nodes[old]
	replNode := p.nodes[repl]
	parentNode := p.nodes[parent]
	if oldNode == nil || replNode == nil || parentNode == nil {
		panic(errors.AssertionFailedf("ReplaceNode(%d, %d, %d): unknown node", old, repl, parent))
	}
	ob := oldNode.base()
	if len(ob.parents) != 1 || ob.parents[0] != parent {
		panic(errors.AssertionFailedf(
			"ReplaceNode: node %d must have exactly the one parent %d, has %v", old, parent, ob.parents))
	}

	rb := replNode.base()
	rb.deps = append([]NodeID(nil), ob.deps...)
	for _, depID := range ob.deps {
		dep := p.nodes[depID]
		dep.base().removeParent(old)
		dep.base().addParent(repl)
	}

	if !parentNode.base().replaceDependency(old, repl) {
		panic(errors.AssertionFailedf("ReplaceNode: parent %d does not depend on %d", parent, old))
	}
	rb.parents = []NodeID{parent}

	delete(p.nodes, old)
	p.InvalidateUsage()
}

// UnlinkNode removes a node from the graph, splicing its parents to its sole
// dependency.
//
// Precondition: the node has exactly one dependency (the normal shape for
// Filter and Calculation nodes). A node with no parents is the root; its
// dependency becomes the new root.
func (p *Plan) UnlinkNode(id NodeID) {
	n := p.nodes[id]
	if n == nil {
		panic(errors.AssertionFailedf("UnlinkNode(%d): unknown node", id))
	}
	b := n.base()
	if len(b.deps) != 1 {
		panic(errors.AssertionFailedf(
			"UnlinkNode: node %d must have exactly one dependency, has %d", id, len(b.deps)))
	}
	depID := b.deps[0]
	dep := p.nodes[depID]
	dep.base().removeParent(id)

	for _, prID := range b.parents {
		pr := p.nodes[prID]
		pr.base().replaceDependency(id, depID)
		dep.base().addParent(prID)
	}
	if len(b.parents) == 0 {
		p.root = depID
	}

	delete(p.nodes, id)
	p.InvalidateUsage()
}

// UnlinkNodes removes each node in the set, in ascending id order.
// Equivalent to repeated single unlinks; each unlink fully rewires before the
// next runs, so edges of other batch members are never corrupted.
func (p *Plan) UnlinkNodes(ids map[NodeID]struct{}) {
	ordered := make([]NodeID, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, id := range ordered {
		p.UnlinkNode(id)
	}
}

// Clone deep-copies the plan: same topology, same node ids, independent
// ownership. Edits to the clone never affect the original. Expression trees
// and range bound endpoints are shared read-only; everything else is copied.
func (p *Plan) Clone() *Plan {
	out := &Plan{
		nodes:  make(map[NodeID]Node, len(p.nodes)),
		root:   p.root,
		nextID: p.nextID,
	}
	for id, n := range p.nodes {
		out.nodes[id] = n.cloneNode()
	}
	return out
}

// WalkDependencies visits start and then each node along its dependency
// chain in order, stopping after a node with zero or more than one
// dependency (which covers the start-of-plan singleton).
func (p *Plan) WalkDependencies(start NodeID, visit func(Node)) {
	cur := start
	for {
		n := p.nodes[cur]
		if n == nil {
			return
		}
		visit(n)
		deps := n.base().deps
		if len(deps) != 1 {
			return
		}
		cur = deps[0]
	}
}
