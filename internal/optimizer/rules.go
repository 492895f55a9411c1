package optimizer

import (
	"github.com/cockroachdb/errors"

	"github.com/tern-db/tern/internal/catalog"
	"github.com/tern-db/tern/internal/plan"
)

// RemoveUnnecessaryFilters removes filters whose source expression is
// compile-time constant.
//
// A constant-true filter passes every row and is unlinked; all such removals
// are applied as one batch after the scan, avoiding repeated graph edits
// mid-traversal. A constant-false filter never passes a row and is replaced
// in place by a NoResults node, which encodes "zero rows forever" without
// threading an empty-input signal through every other operator.
//
// Filters whose source is not a calculation, or whose expression is not
// constant, are left alone: evaluating them here could require runtime
// context or raise an error.
func RemoveUnnecessaryFilters(p *plan.Plan, out *CandidateSet) (bool, error) {
	toUnlink := make(map[plan.NodeID]struct{})

	for _, n := range p.FindNodesOfType(plan.TypeFilter, true) {
		// Filter nodes always consume exactly one variable.
		used := n.VariablesUsed()
		if len(used) != 1 {
			panic(errors.AssertionFailedf("filter %d consumes %d variables", n.ID(), len(used)))
		}

		setter := p.VarSetBy(used[0].ID)
		if setter == nil {
			continue
		}
		calc, ok := setter.(*plan.CalculationNode)
		if !ok {
			// The filter variable was not introduced by a calculation.
			continue
		}

		expr := calc.Expression()
		if !expr.IsConstant() {
			// Only evaluable at runtime.
			continue
		}
		if expr.CanThrow() {
			// Constant but evaluation could raise (e.g. a zero divisor).
			// Leave it for the runtime to report.
			continue
		}

		truthy, err := expr.ToBool()
		if err != nil {
			return true, errors.Wrapf(err, "folding filter %d source", n.ID())
		}

		if truthy {
			toUnlink[n.ID()] = struct{}{}
			continue
		}

		// Always false: splice a NoResults node into the filter's position.
		parents := n.Parents()
		if len(parents) != 1 {
			panic(errors.AssertionFailedf("filter %d has %d parents", n.ID(), len(parents)))
		}
		noResults := plan.NewNoResultsNode()
		newID := p.RegisterNode(noResults)
		p.ReplaceNode(n.ID(), newID, parents[0])
	}

	if len(toUnlink) > 0 {
		p.UnlinkNodes(toUnlink)
	}
	return true, nil
}

// RemoveUnnecessaryCalculations removes calculations whose output variable
// no downstream node consumes.
//
// A calculation whose expression can throw is never removed, regardless of
// usage: dropping it would change user-observable failure behavior.
func RemoveUnnecessaryCalculations(p *plan.Plan, out *CandidateSet) (bool, error) {
	toUnlink := make(map[plan.NodeID]struct{})

	for _, n := range p.FindNodesOfType(plan.TypeCalculation, true) {
		calc := n.(*plan.CalculationNode)
		if calc.Expression().CanThrow() {
			continue
		}

		defined := n.VariablesDefined()
		if len(defined) != 1 {
			panic(errors.AssertionFailedf("calculation %d defines %d variables", n.ID(), len(defined)))
		}

		if _, live := p.VarsUsedAfter(n.ID())[defined[0].ID]; !live {
			toUnlink[n.ID()] = struct{}{}
		}
	}

	if len(toUnlink) > 0 {
		p.UnlinkNodes(toUnlink)
	}
	return true, nil
}

// UseIndexRange builds the index-substitution rule over the given catalog.
//
// For every filter, the rule walks the dependency chain below it,
// decomposing the filter's source calculation into per-attribute range
// constraints; when it reaches the collection scan that defines a
// constrained variable, it emits one cloned plan per usable index with the
// scan replaced by an IndexRange node. The original full-scan plan is always
// kept as a fallback candidate.
func UseIndexRange(cat catalog.Catalog) RuleFunc {
	return func(p *plan.Plan, out *CandidateSet) (bool, error) {
		for _, n := range p.FindNodesOfType(plan.TypeFilter, true) {
			used := n.VariablesUsed()
			if len(used) != 1 {
				panic(errors.AssertionFailedf("filter %d consumes %d variables", n.ID(), len(used)))
			}

			finder := newCalculationFinder(p, used[0], out, cat)
			p.WalkDependencies(n.ID(), finder.before)
			if finder.err != nil {
				return true, finder.err
			}
		}
		return true, nil
	}
}

// DefaultRules returns the standard rule set in its required order: dead
// filters first (their removal exposes dead calculations), then dead
// calculations, then index substitution.
func DefaultRules(cat catalog.Catalog) []Rule {
	return []Rule{
		{Name: "remove-unnecessary-filters", Apply: RemoveUnnecessaryFilters},
		{Name: "remove-unnecessary-calculations", Apply: RemoveUnnecessaryCalculations},
		{Name: "use-index-range", Apply: UseIndexRange(cat)},
	}
}
