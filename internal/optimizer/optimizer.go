package optimizer

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tern-db/tern/internal/plan"
)

// Optimizer applies a fixed, ordered rule set to candidate plans.
type Optimizer struct {
	rules  []Rule
	logger zerolog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger rule tracing writes to. Defaults to a
// disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// New creates an optimizer over the given rules, applied in slice order.
func New(rules []Rule, opts ...Option) *Optimizer {
	o := &Optimizer{
		rules:  rules,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize runs every rule once, in order, against the input plan.
//
// The returned slice holds the surviving original first (when no rule
// dropped it) followed by all candidate clones in discovery order. Choosing
// among them is the caller's concern. On a rule failure the error wraps the
// rule's name and no plans are returned; the input plan is left in the valid
// state the failing rule reached.
func (o *Optimizer) Optimize(p *plan.Plan) ([]*plan.Plan, error) {
	runToken := uuid.NewString()
	log := o.logger.With().Str("run", runToken).Logger()

	out := &CandidateSet{}
	keepOriginal := true

	for _, rule := range o.rules {
		before := out.Len()
		keep, err := rule.Apply(p, out)
		if err != nil {
			log.Error().Str("rule", rule.Name).Err(err).Msg("rule failed")
			return nil, &RuleError{Rule: rule.Name, Err: err}
		}
		log.Debug().
			Str("rule", rule.Name).
			Bool("keep_original", keep).
			Int("new_candidates", out.Len()-before).
			Int("plan_nodes", p.Size()).
			Msg("applied rule")
		if !keep {
			keepOriginal = false
		}
	}

	results := make([]*plan.Plan, 0, out.Len()+1)
	if keepOriginal {
		results = append(results, p)
	}
	results = append(results, out.Plans()...)

	log.Debug().Int("plans", len(results)).Msg("optimization pass complete")
	return results, nil
}
