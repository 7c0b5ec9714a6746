// internal/rules/rule.go
package rules

import (
	"fmt"

	"github.com/solatis/subordinate/internal/types"
)

/*
 * Rule execution.
 *
 * A Rule evaluates its condition once per execution and applies either the
 * true or the false action list, in insertion order. Later actions may
 * override earlier ones on overlapping targets, so order is preserved from
 * the builder through to Apply.
 *
 * A Control holds the rules registered for one component tree and applies
 * them in registration order on every request.
 */

// Rule pairs a condition with the actions applied for each outcome.
type Rule struct {
	Name      string
	Condition Condition
	OnTrue    []Action
	OnFalse   []Action
}

// NewRule validates and returns a rule.
// A rule needs a condition and at least one action.
func NewRule(name string, cond Condition, onTrue, onFalse []Action) (*Rule, error) {
	if cond == nil {
		return nil, fmt.Errorf("%w: condition required", types.ErrInvalidArgument)
	}
	if len(onTrue) == 0 && len(onFalse) == 0 {
		return nil, fmt.Errorf("%w: rule has no actions", types.ErrInvalidArgument)
	}
	return &Rule{Name: name, Condition: cond, OnTrue: onTrue, OnFalse: onFalse}, nil
}

// Outcome records one rule execution.
type Outcome struct {
	Rule           *Rule
	Result         bool // condition value
	ActionsApplied int
}

// Execute evaluates the condition and applies the matching actions.
func (r *Rule) Execute() Outcome {
	result := r.Condition.IsTrue()
	actions := r.OnFalse
	if result {
		actions = r.OnTrue
	}
	for _, a := range actions {
		a.Apply()
	}
	return Outcome{Rule: r, Result: result, ActionsApplied: len(actions)}
}

func (r *Rule) String() string {
	return fmt.Sprintf("if %s then %v else %v", r.Condition, r.OnTrue, r.OnFalse)
}

// Control is a container of rules applied together.
type Control struct {
	rules []*Rule
}

// NewControl returns a control holding rules in order.
func NewControl(rules ...*Rule) *Control {
	c := &Control{}
	for _, r := range rules {
		c.AddRule(r)
	}
	return c
}

// AddRule registers a rule. Nil rules are ignored.
func (c *Control) AddRule(r *Rule) {
	if r == nil {
		return
	}
	c.rules = append(c.rules, r)
}

// Rules returns the registered rules in order.
func (c *Control) Rules() []*Rule {
	return c.rules
}

// ApplyTheControls executes every rule in registration order.
func (c *Control) ApplyTheControls() []Outcome {
	outcomes := make([]Outcome, 0, len(c.rules))
	for _, r := range c.rules {
		outcomes = append(outcomes, r.Execute())
	}
	return outcomes
}
