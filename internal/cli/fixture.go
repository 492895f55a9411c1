package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/plan"
	"github.com/tern-db/tern/internal/value"
)

// PlanFixture is the YAML description of a linear query plan: a scan over one
// collection, a stack of filter conditions, and a return of the scan variable.
type PlanFixture struct {
	Collection string        `yaml:"collection"`
	Variable   string        `yaml:"variable"`
	Filters    []ExprFixture `yaml:"filters"`
}

// ExprFixture is one expression tree node in a plan fixture. Exactly one of
// the following shapes must be present:
//
//	{value: <literal>}            constant
//	{ref: <var>}                  variable reference
//	{attr: <path>, of: <var>}     attribute access, dotted paths allowed
//	{func: <name>, args: [...]}   function call
//	{op: <name>, args: [...]}     operator (eq ne lt gt le ge and or not
//	                              add sub mul div mod)
type ExprFixture struct {
	Op   string        `yaml:"op,omitempty"`
	Func string        `yaml:"func,omitempty"`
	Args []ExprFixture `yaml:"args,omitempty"`
	Ref  string        `yaml:"ref,omitempty"`
	Attr string        `yaml:"attr,omitempty"`
	Of   string        `yaml:"of,omitempty"`

	// Value is kept as a raw YAML node so that an explicit null literal can
	// be told apart from an absent key.
	Value *yaml.Node `yaml:"value,omitempty"`
}

// ValidationError describes one structural problem with a plan fixture.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var opKinds = map[string]ast.Kind{
	"eq":  ast.KindEq,
	"ne":  ast.KindNe,
	"lt":  ast.KindLt,
	"gt":  ast.KindGt,
	"le":  ast.KindLe,
	"ge":  ast.KindGe,
	"and": ast.KindAnd,
	"or":  ast.KindOr,
	"not": ast.KindNot,
	"add": ast.KindAdd,
	"sub": ast.KindSub,
	"mul": ast.KindMul,
	"div": ast.KindDiv,
	"mod": ast.KindMod,
}

// LoadPlanFixture reads and parses a plan fixture file. Unknown YAML keys are
// rejected.
func LoadPlanFixture(path string) (*PlanFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading plan fixture: %v", err)}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f PlanFixture
	if err := dec.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing plan fixture: %v", err)}
	}
	return &f, nil
}

// Validate checks the fixture structurally without building a plan.
func (f *PlanFixture) Validate() []ValidationError {
	var errs []ValidationError

	if f.Collection == "" {
		errs = append(errs, ValidationError{
			Field:   "collection",
			Message: "collection name is required",
			Code:    ErrCodeFixtureCollection,
		})
	}
	if f.Variable == "" {
		errs = append(errs, ValidationError{
			Field:   "variable",
			Message: "collection variable is required",
			Code:    ErrCodeFixtureVariable,
		})
	}

	for i, expr := range f.Filters {
		errs = append(errs, validateExpr(expr, fmt.Sprintf("filters[%d]", i), f.Variable)...)
	}

	return errs
}

// validateExpr checks one expression tree node and its children.
func validateExpr(f ExprFixture, field, collVar string) []ValidationError {
	bad := func(msg string) []ValidationError {
		return []ValidationError{{Field: field, Message: msg, Code: ErrCodeFixtureExpr}}
	}

	switch {
	case f.Value != nil:
		if f.Op != "" || f.Func != "" || f.Ref != "" || f.Attr != "" || len(f.Args) > 0 {
			return bad("value node must not combine with op, func, ref, attr, or args")
		}
		if _, err := valueFromYAML(f.Value); err != nil {
			return bad(err.Error())
		}
		return nil

	case f.Ref != "":
		if f.Ref != collVar {
			return bad(fmt.Sprintf("unknown variable %q", f.Ref))
		}
		return nil

	case f.Attr != "":
		of := f.Of
		if of == "" {
			of = collVar
		}
		if of != collVar {
			return bad(fmt.Sprintf("unknown variable %q", of))
		}
		return nil

	case f.Func != "":
		var errs []ValidationError
		for i, arg := range f.Args {
			errs = append(errs, validateExpr(arg, fmt.Sprintf("%s.args[%d]", field, i), collVar)...)
		}
		return errs

	case f.Op != "":
		kind, ok := opKinds[f.Op]
		if !ok {
			return bad(fmt.Sprintf("unknown operator %q", f.Op))
		}
		want := 2
		if kind == ast.KindNot {
			want = 1
		}
		if len(f.Args) != want {
			return bad(fmt.Sprintf("operator %q needs %d operand(s), got %d", f.Op, want, len(f.Args)))
		}
		var errs []ValidationError
		for i, arg := range f.Args {
			errs = append(errs, validateExpr(arg, fmt.Sprintf("%s.args[%d]", field, i), collVar)...)
		}
		return errs

	default:
		return bad("expression node needs one of: value, ref, attr, func, op")
	}
}

// Build assembles the fixture into an executable-shaped plan: singleton, a
// collection scan, one calculation and filter per condition, and a return of
// the scan variable.
func (f *PlanFixture) Build() (*plan.Plan, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, &LoadError{Code: errs[0].Code, Message: fmt.Sprintf("%s: %s", errs[0].Field, errs[0].Message)}
	}

	p := plan.New()
	last := p.RegisterNode(plan.NewSingletonNode())
	p.SetRoot(last)
	link := func(n plan.Node) {
		id := p.RegisterNode(n)
		p.AddDependency(id, last)
		p.SetRoot(id)
		last = id
	}

	collVar := plan.NewVariable(1, f.Variable)
	nextVarID := int64(2)
	link(plan.NewEnumerateCollectionNode(f.Collection, collVar))

	for i, cond := range f.Filters {
		expr, err := buildExpr(cond, collVar)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeFixtureExpr, Message: fmt.Sprintf("filters[%d]: %v", i, err)}
		}
		condVar := plan.NewVariable(nextVarID, fmt.Sprintf("c%d", i+1))
		nextVarID++
		link(plan.NewCalculationNode(expr, condVar))
		link(plan.NewFilterNode(condVar))
	}

	link(plan.NewReturnNode(collVar))
	return p, nil
}

// buildExpr converts one fixture node into an expression tree.
func buildExpr(f ExprFixture, collVar *plan.Variable) (*ast.Node, error) {
	switch {
	case f.Value != nil:
		v, err := valueFromYAML(f.Value)
		if err != nil {
			return nil, err
		}
		return ast.NewValue(v), nil

	case f.Ref != "":
		if f.Ref != collVar.Name {
			return nil, fmt.Errorf("unknown variable %q", f.Ref)
		}
		return ast.NewReference(collVar.ID, collVar.Name), nil

	case f.Attr != "":
		of := f.Of
		if of == "" {
			of = collVar.Name
		}
		if of != collVar.Name {
			return nil, fmt.Errorf("unknown variable %q", of)
		}
		node := ast.NewReference(collVar.ID, collVar.Name)
		for _, part := range splitAttrPath(f.Attr) {
			node = ast.NewAttributeAccess(node, part)
		}
		return node, nil

	case f.Func != "":
		args := make([]*ast.Node, 0, len(f.Args))
		for _, arg := range f.Args {
			built, err := buildExpr(arg, collVar)
			if err != nil {
				return nil, err
			}
			args = append(args, built)
		}
		return ast.NewCall(f.Func, args...), nil

	case f.Op != "":
		kind, ok := opKinds[f.Op]
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", f.Op)
		}
		if kind == ast.KindNot {
			if len(f.Args) != 1 {
				return nil, fmt.Errorf("operator %q needs 1 operand, got %d", f.Op, len(f.Args))
			}
			op, err := buildExpr(f.Args[0], collVar)
			if err != nil {
				return nil, err
			}
			return ast.NewNot(op), nil
		}
		if len(f.Args) != 2 {
			return nil, fmt.Errorf("operator %q needs 2 operands, got %d", f.Op, len(f.Args))
		}
		lhs, err := buildExpr(f.Args[0], collVar)
		if err != nil {
			return nil, err
		}
		rhs, err := buildExpr(f.Args[1], collVar)
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(kind, lhs, rhs), nil

	default:
		return nil, fmt.Errorf("expression node needs one of: value, ref, attr, func, op")
	}
}

// splitAttrPath splits a dotted attribute path into its segments.
func splitAttrPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}

// valueFromYAML converts a YAML scalar, sequence, or mapping into a runtime
// value. Floats are rejected: the value model is integer-only.
func valueFromYAML(n *yaml.Node) (value.Value, error) {
	var raw interface{}
	if err := n.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding literal: %w", err)
	}
	return toValue(raw)
}

func toValue(raw interface{}) (value.Value, error) {
	switch x := raw.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(x), nil
	case int:
		return value.Int(x), nil
	case int64:
		return value.Int(x), nil
	case string:
		return value.String(x), nil
	case []interface{}:
		arr := make(value.Array, 0, len(x))
		for _, el := range x {
			v, err := toValue(el)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case map[string]interface{}:
		obj := make(value.Object, len(x))
		for k, el := range x {
			v, err := toValue(el)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", raw)
	}
}
