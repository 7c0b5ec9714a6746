// internal/rules/condition.go
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solatis/subordinate/internal/types"
)

// Condition is an evaluable boolean expression over trigger values.
type Condition interface {
	// IsTrue evaluates the condition against the current trigger values.
	IsTrue() bool
	String() string
}

// Compare compares a trigger's current value against a literal.
type Compare struct {
	Operator Operator
	Trigger  Trigger
	Value    any

	pattern *regexp.Regexp // compiled Value for OpMatch
}

// NewCompare validates and returns a comparison condition.
// Match requires a string value holding a valid regular expression.
func NewCompare(op Operator, trigger Trigger, value any) (*Compare, error) {
	if op <= OpUnspecified || op > OpMatch {
		return nil, fmt.Errorf("%w: unsupported operator %d", types.ErrInvalidArgument, op)
	}
	if trigger == nil {
		return nil, fmt.Errorf("%w: trigger required", types.ErrInvalidArgument)
	}

	c := &Compare{Operator: op, Trigger: trigger, Value: value}
	if op == OpMatch {
		p, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: match value must be text, got %T", types.ErrInvalidArgument, value)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern: %v", types.ErrInvalidArgument, err)
		}
		c.pattern = re
	}
	return c, nil
}

// IsTrue implements Condition.
func (c *Compare) IsTrue() bool {
	if c.Operator == OpMatch {
		return CompareValues(OpMatch, c.Trigger.Value(), c.pattern)
	}
	return CompareValues(c.Operator, c.Trigger.Value(), c.Value)
}

func (c *Compare) String() string {
	return RenderCompare(c.Trigger, c.Operator, c.Value)
}

// And is true when every condition is true. Evaluation stops at the first
// false condition.
type And struct {
	Conditions []Condition
}

// NewAnd returns the conjunction of at least two conditions.
func NewAnd(first, second Condition, rest ...Condition) *And {
	return &And{Conditions: append([]Condition{first, second}, rest...)}
}

// IsTrue implements Condition.
func (a *And) IsTrue() bool {
	for _, c := range a.Conditions {
		if !c.IsTrue() {
			return false
		}
	}
	return true
}

func (a *And) String() string {
	return joinConditions(a.Conditions, " and ")
}

// Or is true when any condition is true. Evaluation stops at the first true
// condition.
type Or struct {
	Conditions []Condition
}

// NewOr returns the disjunction of at least two conditions.
func NewOr(first, second Condition, rest ...Condition) *Or {
	return &Or{Conditions: append([]Condition{first, second}, rest...)}
}

// IsTrue implements Condition.
func (o *Or) IsTrue() bool {
	for _, c := range o.Conditions {
		if c.IsTrue() {
			return true
		}
	}
	return false
}

func (o *Or) String() string {
	return joinConditions(o.Conditions, " or ")
}

// Not negates a condition.
type Not struct {
	Condition Condition
}

// NewNot returns the negation of c.
func NewNot(c Condition) *Not {
	return &Not{Condition: c}
}

// IsTrue implements Condition.
func (n *Not) IsTrue() bool {
	return !n.Condition.IsTrue()
}

func (n *Not) String() string {
	return "NOT (" + n.Condition.String() + ")"
}

func joinConditions(conds []Condition, sep string) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// RenderCompare renders a comparison as <label or ID><op>"<value>".
func RenderCompare(trigger Trigger, op Operator, value any) string {
	return displayName(trigger) + op.Symbol() + `"` + FormatValue(value) + `"`
}
