package optimizer

import (
	"github.com/tern-db/tern/internal/plan"
)

// RuleFunc is the contract every rule implements.
//
// A rule may mutate p in place and may append cloned, independently-owned
// alternative plans to out. It returns keep=true if the (possibly mutated)
// input plan remains a valid candidate, keep=false if the plan is fully
// superseded by clones in out. On error the plan is left in whatever valid
// state the rule reached; rules guarantee structural validity at every
// return point.
type RuleFunc func(p *plan.Plan, out *CandidateSet) (keep bool, err error)

// Rule pairs a rule function with a stable name for logs and errors.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// CandidateSet collects the alternative plans rules propose. It is threaded
// through every rule call as an explicit output parameter, never ambient
// state.
type CandidateSet struct {
	plans []*plan.Plan
}

// Add appends a candidate. The set takes no copies: the caller hands over an
// exclusively-owned clone.
func (c *CandidateSet) Add(p *plan.Plan) {
	c.plans = append(c.plans, p)
}

// Len returns the number of collected candidates.
func (c *CandidateSet) Len() int {
	return len(c.plans)
}

// Plans returns the collected candidates in insertion order.
func (c *CandidateSet) Plans() []*plan.Plan {
	return c.plans
}
