package optimizer

import (
	"github.com/cockroachdb/errors"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/catalog"
	"github.com/tern-db/tern/internal/plan"
	"github.com/tern-db/tern/internal/ranges"
)

// calculationFinder walks a filter's dependency chain, correlating the
// calculation that defines the filter's variable with the collection scan it
// constrains.
//
// On the way down it decomposes the calculation's expression into the shared
// range map; when it reaches an EnumerateCollection whose variable carries
// accumulated ranges, it emits one index-substituted plan clone per usable
// index.
type calculationFinder struct {
	p        *plan.Plan
	variable *plan.Variable
	out      *CandidateSet
	cat      catalog.Catalog
	ranges   *ranges.Info

	// prev is the node visited just before the current one: along the
	// chain it is the current node's parent, which the substitution splice
	// needs (looked up by id inside the clone).
	prev plan.Node

	err error
}

func newCalculationFinder(p *plan.Plan, variable *plan.Variable, out *CandidateSet, cat catalog.Catalog) *calculationFinder {
	return &calculationFinder{
		p:        p,
		variable: variable,
		out:      out,
		cat:      cat,
		ranges:   ranges.NewInfo(),
	}
}

// before handles one node of the dependency-chain walk.
func (f *calculationFinder) before(n plan.Node) {
	if f.err != nil {
		return
	}

	switch node := n.(type) {
	case *plan.CalculationNode:
		defined := node.VariablesDefined()
		if len(defined) != 1 {
			panic(errors.AssertionFailedf("calculation %d defines %d variables", node.ID(), len(defined)))
		}
		if defined[0].ID == f.variable.ID {
			var enumCollVar, attr string
			f.buildRangeInfo(node.Expression(), &enumCollVar, &attr)
		}

	case *plan.EnumerateCollectionNode:
		outVar := node.OutVariable()
		attrs := f.ranges.Attributes(outVar.Name)
		if len(attrs) == 0 {
			break
		}
		rangeMap := f.ranges.Find(outVar.Name)

		for _, idx := range f.cat.UsableIndexes(node.Collection, attrs) {
			if f.prev == nil {
				// A collection scan at the top of a filter chain has no
				// parent to splice under; upstream handed us a malformed
				// plan.
				panic(errors.AssertionFailedf("enumerate-collection %d walked first from a filter", node.ID()))
			}

			// Clone first; nothing is registered anywhere until the clone
			// exists, so a failure here leaks no half-built plan.
			newPlan := f.p.Clone()

			attrRanges := make([]plan.AttributeRange, 0, len(attrs))
			for _, a := range attrs {
				attrRanges = append(attrRanges, plan.AttributeRange{Attribute: a, Range: rangeMap[a]})
			}
			idxNode := plan.NewIndexRangeNode(node.Collection, outVar, idx, attrRanges)
			newID := newPlan.RegisterNode(idxNode)

			// Splice under the same parent as in the original, resolved by
			// id inside the clone.
			newPlan.ReplaceNode(node.ID(), newID, f.prev.ID())
			f.out.Add(newPlan)
		}
	}

	f.prev = n
}

// buildRangeInfo recursively decomposes an expression into range constraints.
//
// enumCollVar carries the "active collection variable" once a reference to a
// collection scan's variable has been seen; attr accumulates the dotted
// attribute path under it. Only conjunctions of direct attribute comparisons
// against constants are recognized; every other shape contributes nothing.
func (f *calculationFinder) buildRangeInfo(node *ast.Node, enumCollVar, attr *string) {
	switch node.Kind {
	case ast.KindReference:
		setter := f.p.VarSetBy(node.RefID)
		if setter != nil && setter.Type() == plan.TypeEnumerateCollection {
			*enumCollVar = node.RefName
		}

	case ast.KindAttributeAccess:
		// Base first: it decides whether a collection variable is active.
		f.buildRangeInfo(node.Operands[0], enumCollVar, attr)
		if *enumCollVar != "" {
			if *attr != "" {
				*attr += "."
			}
			*attr += node.Attr
		}

	case ast.KindEq:
		access, val := splitComparison(node)
		if access == nil {
			return
		}
		f.buildRangeInfo(access, enumCollVar, attr)
		if *enumCollVar != "" {
			// A point constraint: both sides inclusive at the value.
			f.ranges.Insert(*enumCollVar, *attr,
				ranges.NewBound(val, true),
				ranges.NewBound(val, true))
		}

	case ast.KindLt, ast.KindGt, ast.KindLe, ast.KindGe:
		access, val := splitComparison(node)
		if access == nil {
			return
		}
		include := node.Kind == ast.KindLe || node.Kind == ast.KindGe

		// Orient the bound: low if the attribute sits on the greater side,
		// high if on the lesser side.
		greaterSide := node.Kind == ast.KindGt || node.Kind == ast.KindGe
		if access == node.Operands[1] {
			// Value on the left flips the orientation.
			greaterSide = !greaterSide
		}

		var low, high *ranges.Bound
		if greaterSide {
			low = ranges.NewBound(val, include)
		} else {
			high = ranges.NewBound(val, include)
		}

		f.buildRangeInfo(access, enumCollVar, attr)
		if *enumCollVar != "" {
			f.ranges.Insert(*enumCollVar, *attr, low, high)
		}

	case ast.KindAnd:
		// Siblings must not leak path state into each other.
		*attr = ""
		f.buildRangeInfo(node.Operands[0], enumCollVar, attr)
		*attr = ""
		f.buildRangeInfo(node.Operands[1], enumCollVar, attr)
	}
}

// splitComparison returns the attribute-access side and the constant side of
// a binary comparison, in either order, or nils when the node is not a
// direct attribute-versus-constant comparison.
func splitComparison(node *ast.Node) (access, val *ast.Node) {
	lhs, rhs := node.Operands[0], node.Operands[1]
	switch {
	case lhs.Kind == ast.KindAttributeAccess && rhs.Kind == ast.KindValue:
		return lhs, rhs
	case rhs.Kind == ast.KindAttributeAccess && lhs.Kind == ast.KindValue:
		return rhs, lhs
	default:
		return nil, nil
	}
}
