// Package plan models a logical execution plan: a graph of relational-style
// operators over documents, owned by a single ExecutionPlan arena.
//
// STRUCTURE:
//
// Nodes are addressed by stable integer ids. Every cross-reference - a node's
// dependencies (its inputs, toward the producers), its parents (its
// consumers, toward the root), the producer of a variable - is an id resolved
// through the owning plan, never a direct pointer. Replace, unlink, and clone
// therefore cannot leave dangling links.
//
// The plan shapes this optimizer sees are chains:
//
//	Return -> Filter -> Calculation -> EnumerateCollection -> Singleton
//
// with dependencies pointing right (toward producers) and parents pointing
// left (toward the root).
//
// DERIVED STATE:
//
// The variable-producer index and the live-variables-after-node sets are
// caches recomputed after any structural edit. All mutation goes through the
// plan's own edit operations; editing node edges directly without calling
// InvalidateUsage afterwards breaks the caches.
//
// INVARIANTS:
//
// Contract violations (a Filter consuming more than one variable, ReplaceNode
// on a multi-parent node, unlinking a node with two dependencies) are plan
// malformations from upstream, not recoverable conditions. They panic with an
// assertion failure.
package plan
