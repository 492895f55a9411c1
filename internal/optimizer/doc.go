// Package optimizer rewrites logical execution plans into equivalent,
// cheaper ones.
//
// ARCHITECTURE:
//
// A rule is a function over (plan, candidate set) that may mutate the plan in
// place, may append cloned alternative plans to the candidate set, and
// reports whether the (possibly mutated) input plan remains a valid
// candidate. The Optimizer drives registered rules in order over one plan;
// candidates accumulate for later cost-based selection, which is the
// caller's concern, not this package's.
//
// The three rules:
//
//   - RemoveUnnecessaryFilters: a filter over a constant-true expression is
//     a no-op and is unlinked; a constant-false filter is replaced by a
//     NoResults node. Non-constant filter sources are never touched - the
//     optimizer must never evaluate an expression that could fail or that
//     needs runtime context.
//   - RemoveUnnecessaryCalculations: a calculation whose output no later
//     node consumes is dead and is unlinked - unless its expression can
//     throw, because removing it would change observable failure behavior.
//   - UseIndexRange: decomposes a filter's source expression into
//     per-attribute interval constraints and, for every usable index over
//     the constrained collection, emits a cloned plan with the collection
//     scan replaced by an index range scan. The full-scan original always
//     survives as a fallback candidate.
//
// Rule ordering matters in one direction: removing dead filters exposes
// calculations the dead-calculation rule can then remove. The default rule
// set is ordered accordingly.
//
// ERROR MODEL:
//
// Rules must leave the plan structurally valid on every exit path; there is
// no rollback. Contract violations in the plan shape panic as assertion
// failures (see package plan); operational failures surface as a RuleError
// and stop the run.
//
// Single-threaded by design: one rule runs to completion on one plan before
// anything else happens, and cloning is the only mechanism for exploring
// divergent rewrites.
package optimizer
