package plan

import (
	"sort"

	"github.com/tern-db/tern/internal/ast"
)

// Variable is the identity and name of a value produced exactly once in a
// plan (single assignment). Variables are immutable and may be shared
// between a plan and its clones.
type Variable struct {
	ID   int64
	Name string
}

// NewVariable creates a variable.
func NewVariable(id int64, name string) *Variable {
	return &Variable{ID: id, Name: name}
}

// collectRefVars gathers the variables an expression reads, deduplicated and
// ordered by id.
func collectRefVars(expr *ast.Node) []*Variable {
	seen := make(map[int64]*Variable)
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindReference {
			if _, ok := seen[n.RefID]; !ok {
				seen[n.RefID] = NewVariable(n.RefID, n.RefName)
			}
		}
		for _, op := range n.Operands {
			walk(op)
		}
	}
	walk(expr)

	out := make([]*Variable, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
