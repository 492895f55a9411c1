// Package ranges accumulates per-attribute interval constraints while the
// optimizer decomposes a filter expression.
//
// The map is keyed twice: by the collection iteration variable's name, then by
// the dotted attribute path. Each entry holds one [low, high] interval whose
// endpoints reference constant expression nodes from the original AST.
//
// The one invariant that matters: Insert intersects. Recording a second bound
// for a (variable, attribute) side tightens the interval, it never silently
// overwrites what an earlier conjunct established.
package ranges

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/value"
)

// Bound is one side of an interval: a constant expression endpoint plus an
// inclusivity flag.
type Bound struct {
	// Expr is the endpoint. Always a constant literal node; decomposition
	// never records a bound from a non-constant side. The node is shared
	// read-only with the originating AST.
	Expr *ast.Node

	// Inclusive is true for <= and >= bounds and for equality.
	Inclusive bool
}

// NewBound builds a bound over a constant expression node.
// Panics if the node is not a literal - recording a runtime-dependent bound
// is a decomposition bug, not an input condition.
func NewBound(expr *ast.Node, inclusive bool) *Bound {
	if expr == nil || expr.Kind != ast.KindValue {
		panic(errors.AssertionFailedf("range bound endpoint must be a constant literal, got %v", expr))
	}
	return &Bound{Expr: expr, Inclusive: inclusive}
}

// Value returns the endpoint's constant value.
func (b *Bound) Value() value.Value {
	return b.Expr.Constant
}

// Range is an interval over one attribute. A nil side is unbounded.
type Range struct {
	Low  *Bound
	High *Bound
}

// Info maps (collection variable name, dotted attribute path) to the
// accumulated interval for that attribute.
type Info struct {
	vars map[string]map[string]*Range
}

// NewInfo creates an empty range map.
func NewInfo() *Info {
	return &Info{vars: make(map[string]map[string]*Range)}
}

// Insert records bounds for an attribute of a collection variable.
// Either side may be nil (single-sided constraint). Existing bounds on the
// same side are intersected: the tighter bound wins, and on equal endpoint
// values an exclusive bound beats an inclusive one. Inserting the same bound
// twice is a no-op.
func (i *Info) Insert(varName, attr string, low, high *Bound) {
	attrs, ok := i.vars[varName]
	if !ok {
		attrs = make(map[string]*Range)
		i.vars[varName] = attrs
	}
	r, ok := attrs[attr]
	if !ok {
		r = &Range{}
		attrs[attr] = r
	}

	if low != nil {
		r.Low = tighterLow(r.Low, low)
	}
	if high != nil {
		r.High = tighterHigh(r.High, high)
	}
}

// Find returns the attribute ranges recorded for a collection variable, or
// nil if none were.
func (i *Info) Find(varName string) map[string]*Range {
	return i.vars[varName]
}

// Attributes returns the attribute paths recorded for a collection variable
// in ascending order.
func (i *Info) Attributes(varName string) []string {
	attrs := i.vars[varName]
	if len(attrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(attrs))
	for a := range attrs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// tighterLow returns the tighter of two low bounds: the greater endpoint, or
// on equal endpoints the exclusive one.
func tighterLow(existing, candidate *Bound) *Bound {
	if existing == nil {
		return candidate
	}
	switch c := value.Compare(candidate.Value(), existing.Value()); {
	case c > 0:
		return candidate
	case c < 0:
		return existing
	default:
		if !candidate.Inclusive {
			return candidate
		}
		return existing
	}
}

// tighterHigh returns the tighter of two high bounds: the lesser endpoint, or
// on equal endpoints the exclusive one.
func tighterHigh(existing, candidate *Bound) *Bound {
	if existing == nil {
		return candidate
	}
	switch c := value.Compare(candidate.Value(), existing.Value()); {
	case c < 0:
		return candidate
	case c > 0:
		return existing
	default:
		if !candidate.Inclusive {
			return candidate
		}
		return existing
	}
}

// String renders one range in interval notation, e.g. "(1, 10]".
// Unbounded sides render as -inf / +inf.
func (r *Range) String() string {
	var sb strings.Builder
	if r.Low != nil {
		if r.Low.Inclusive {
			sb.WriteByte('[')
		} else {
			sb.WriteByte('(')
		}
		sb.WriteString(r.Low.Expr.String())
	} else {
		sb.WriteString("(-inf")
	}
	sb.WriteString(", ")
	if r.High != nil {
		sb.WriteString(r.High.Expr.String())
		if r.High.Inclusive {
			sb.WriteByte(']')
		} else {
			sb.WriteByte(')')
		}
	} else {
		sb.WriteString("+inf)")
	}
	return sb.String()
}

// String renders the whole map deterministically, one line per attribute.
func (i *Info) String() string {
	var vars []string
	for v := range i.vars {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	var sb strings.Builder
	for _, v := range vars {
		for _, attr := range i.Attributes(v) {
			fmt.Fprintf(&sb, "%s.%s in %s\n", v, attr, i.vars[v][attr])
		}
	}
	return sb.String()
}
