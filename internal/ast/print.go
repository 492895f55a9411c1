package ast

import (
	"fmt"
	"strings"

	"github.com/tern-db/tern/internal/value"
)

var kindSymbols = map[Kind]string{
	KindEq:  "==",
	KindNe:  "!=",
	KindLt:  "<",
	KindGt:  ">",
	KindLe:  "<=",
	KindGe:  ">=",
	KindAnd: "&&",
	KindOr:  "||",
	KindAdd: "+",
	KindSub: "-",
	KindMul: "*",
	KindDiv: "/",
	KindMod: "%",
}

// String renders the expression in a compact infix form, e.g.
// "(x.a == 5) && (x.b > 1)". Used by plan explain output, so the rendering
// must be deterministic.
func (n *Node) String() string {
	switch n.Kind {
	case KindValue:
		out, err := value.MarshalCanonical(n.Constant)
		if err != nil {
			return "<invalid>"
		}
		return string(out)
	case KindReference:
		return n.RefName
	case KindAttributeAccess:
		return n.Operands[0].String() + "." + n.Attr
	case KindNot:
		return "!(" + n.Operands[0].String() + ")"
	case KindCall:
		args := make([]string, len(n.Operands))
		for i, op := range n.Operands {
			args[i] = op.String()
		}
		return n.Func + "(" + strings.Join(args, ", ") + ")"
	default:
		sym, ok := kindSymbols[n.Kind]
		if !ok || len(n.Operands) != 2 {
			return fmt.Sprintf("<%s>", n.Kind)
		}
		return "(" + n.Operands[0].String() + " " + sym + " " + n.Operands[1].String() + ")"
	}
}
