package plan

import (
	"fmt"
	"strings"
)

// Explain renders the plan as an indented tree, root first, each node's
// dependencies below it. The rendering is deterministic (dependencies in
// order, stable node summaries), which is what the golden tests rely on.
func (p *Plan) Explain() string {
	var sb strings.Builder
	seen := make(map[NodeID]bool)
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := p.nodes[id]
		if n == nil {
			return
		}
		sb.WriteString(strings.Repeat("  ", depth))
		line := fmt.Sprintf("%s[%d]", n.Type(), n.ID())
		if s := n.summary(); s != "" {
			line += " " + s
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		if seen[id] {
			return
		}
		seen[id] = true
		for _, dep := range n.base().deps {
			walk(dep, depth+1)
		}
	}
	walk(p.root, 0)
	return sb.String()
}
