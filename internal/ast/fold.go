package ast

import (
	"github.com/cockroachdb/errors"

	"github.com/tern-db/tern/internal/value"
)

// IsConstant reports whether the tree can be evaluated without runtime
// context. References, attribute accesses, and function calls are never
// constant; operators are constant when all operands are.
func (n *Node) IsConstant() bool {
	switch n.Kind {
	case KindValue:
		return true
	case KindReference, KindAttributeAccess, KindCall:
		return false
	default:
		for _, op := range n.Operands {
			if !op.IsConstant() {
				return false
			}
		}
		return true
	}
}

// CanThrow reports whether evaluating the tree could raise a runtime error.
// Division and modulo can throw (zero divisor), function calls can always
// throw; other operators throw only if an operand can.
func (n *Node) CanThrow() bool {
	switch n.Kind {
	case KindDiv, KindMod, KindCall:
		return true
	default:
		for _, op := range n.Operands {
			if op.CanThrow() {
				return true
			}
		}
		return false
	}
}

// Fold evaluates a constant tree to a value.
//
// Callers must check IsConstant first; folding a non-constant tree is an
// error. Division or modulo by zero are errors as well, which is why CanThrow
// trees are never folded by the rules.
func (n *Node) Fold() (value.Value, error) {
	switch n.Kind {
	case KindValue:
		return n.Constant, nil

	case KindReference, KindAttributeAccess, KindCall:
		return nil, errors.Newf("cannot fold non-constant %s node", n.Kind)

	case KindEq, KindNe, KindLt, KindGt, KindLe, KindGe:
		lhs, err := n.Operands[0].Fold()
		if err != nil {
			return nil, err
		}
		rhs, err := n.Operands[1].Fold()
		if err != nil {
			return nil, err
		}
		c := value.Compare(lhs, rhs)
		switch n.Kind {
		case KindEq:
			return value.Bool(c == 0), nil
		case KindNe:
			return value.Bool(c != 0), nil
		case KindLt:
			return value.Bool(c < 0), nil
		case KindGt:
			return value.Bool(c > 0), nil
		case KindLe:
			return value.Bool(c <= 0), nil
		default:
			return value.Bool(c >= 0), nil
		}

	case KindAnd:
		// Document semantics: a falsy left operand short-circuits.
		lhs, err := n.Operands[0].Fold()
		if err != nil {
			return nil, err
		}
		if !value.IsTrue(lhs) {
			return lhs, nil
		}
		return n.Operands[1].Fold()

	case KindOr:
		lhs, err := n.Operands[0].Fold()
		if err != nil {
			return nil, err
		}
		if value.IsTrue(lhs) {
			return lhs, nil
		}
		return n.Operands[1].Fold()

	case KindNot:
		op, err := n.Operands[0].Fold()
		if err != nil {
			return nil, err
		}
		return value.Bool(!value.IsTrue(op)), nil

	case KindAdd, KindSub, KindMul, KindDiv, KindMod:
		lhs, err := n.foldInt(0)
		if err != nil {
			return nil, err
		}
		rhs, err := n.foldInt(1)
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case KindAdd:
			return value.Int(lhs + rhs), nil
		case KindSub:
			return value.Int(lhs - rhs), nil
		case KindMul:
			return value.Int(lhs * rhs), nil
		case KindDiv:
			if rhs == 0 {
				return nil, errors.New("division by zero")
			}
			return value.Int(lhs / rhs), nil
		default:
			if rhs == 0 {
				return nil, errors.New("modulo by zero")
			}
			return value.Int(lhs % rhs), nil
		}

	default:
		return nil, errors.Newf("cannot fold %s node", n.Kind)
	}
}

// foldInt folds operand i and requires an integer result.
func (n *Node) foldInt(i int) (int64, error) {
	v, err := n.Operands[i].Fold()
	if err != nil {
		return 0, err
	}
	iv, ok := v.(value.Int)
	if !ok {
		return 0, errors.Newf("%s operand is not an integer", n.Kind)
	}
	return int64(iv), nil
}

// ToBool folds a constant tree and reports its truthiness.
func (n *Node) ToBool() (bool, error) {
	v, err := n.Fold()
	if err != nil {
		return false, err
	}
	return value.IsTrue(v), nil
}
