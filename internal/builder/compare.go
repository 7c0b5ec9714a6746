package builder

import (
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

// CompareType selects the comparison a CompareExpression performs.
type CompareType int

const (
	CompareUnspecified CompareType = iota
	Equal
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Match
)

func (t CompareType) operator() rules.Operator {
	switch t {
	case Equal:
		return rules.OpEq
	case NotEqual:
		return rules.OpNeq
	case LessThan:
		return rules.OpLt
	case LessThanOrEqual:
		return rules.OpLte
	case GreaterThan:
		return rules.OpGt
	case GreaterThanOrEqual:
		return rules.OpGte
	case Match:
		return rules.OpMatch
	default:
		return rules.OpUnspecified
	}
}

func (t CompareType) String() string {
	switch t {
	case Equal:
		return "equals"
	case NotEqual:
		return "notEquals"
	case LessThan:
		return "lessThan"
	case LessThanOrEqual:
		return "lessThanOrEquals"
	case GreaterThan:
		return "greaterThan"
	case GreaterThanOrEqual:
		return "greaterThanOrEquals"
	case Match:
		return "matches"
	default:
		return "unspecified"
	}
}

// CompareExpression compares a trigger's value against a literal.
type CompareExpression struct {
	typ     CompareType
	trigger rules.Trigger
	value   any
}

// NewCompareExpression returns a comparison leaf.
// Match requires value to be a string.
func NewCompareExpression(typ CompareType, trigger rules.Trigger, value any) (*CompareExpression, error) {
	if typ <= CompareUnspecified || typ > Match {
		return nil, fmt.Errorf("%w: compare type required", types.ErrInvalidArgument)
	}
	if trigger == nil {
		return nil, fmt.Errorf("%w: trigger required", types.ErrInvalidArgument)
	}
	if _, ok := value.(string); typ == Match && !ok {
		return nil, fmt.Errorf("%w: matches needs a text pattern, got %T", types.ErrInvalidArgument, value)
	}
	return &CompareExpression{typ: typ, trigger: trigger, value: value}, nil
}

func (c *CompareExpression) Type() CompareType      { return c.typ }
func (c *CompareExpression) Trigger() rules.Trigger { return c.trigger }
func (c *CompareExpression) Value() any             { return c.value }

// Evaluate implements BooleanExpression.
func (c *CompareExpression) Evaluate() (bool, error) {
	return evaluate(c)
}

// Build implements BooleanExpression.
func (c *CompareExpression) Build() (rules.Condition, error) {
	return c.compile()
}

func (c *CompareExpression) String() string {
	return render(c, nil)
}

func (c *CompareExpression) compile() (rules.Condition, error) {
	return rules.NewCompare(c.typ.operator(), c.trigger, c.value)
}
