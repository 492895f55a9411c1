package optimizer_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/tern-db/tern/internal/ast"
	"github.com/tern-db/tern/internal/catalog"
	"github.com/tern-db/tern/internal/optimizer"
	"github.com/tern-db/tern/internal/plan"
	"github.com/tern-db/tern/internal/testutil"
	"github.com/tern-db/tern/internal/value"
)

// explainSnapshot renders every result plan, in order, for golden
// comparison. Plan ids are stable across clones, so the rendering is
// deterministic.
func explainSnapshot(plans []*plan.Plan) []byte {
	var sb strings.Builder
	for i, p := range plans {
		fmt.Fprintf(&sb, "-- plan %d --\n", i)
		sb.WriteString(p.Explain())
	}
	return []byte(sb.String())
}

// TestGoldenExplainPointFilter pins the explain output for the reference
// query FOR x IN users FILTER x.a == 5 RETURN x with an index on a.
//
// To regenerate golden files, run:
//
//	go test ./internal/optimizer -update
func TestGoldenExplainPointFilter(t *testing.T) {
	cat := catalog.NewMemoryCatalog()
	cat.AddIndex(catalog.Index{Name: "idx_a", Collection: "users", Fields: []string{"a"}})

	opt := optimizer.New(optimizer.DefaultRules(cat))
	plans, err := opt.Optimize(pointFilterPlan())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_point_filter", explainSnapshot(plans))
}

// TestGoldenExplainDeadFilter pins the explain output after a tautological
// filter and its calculation are eliminated.
func TestGoldenExplainDeadFilter(t *testing.T) {
	b := testutil.NewPlanBuilder()
	x := b.Var("x")
	c := b.Var("c")
	b.EnumerateCollection("users", x)
	b.Calculation(ast.NewValue(value.Bool(true)), c)
	b.Filter(c)
	b.Return(x)

	opt := optimizer.New(optimizer.DefaultRules(catalog.NewMemoryCatalog()))
	plans, err := opt.Optimize(b.Plan())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_dead_filter", explainSnapshot(plans))
}
