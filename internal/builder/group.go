package builder

import (
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

// GroupType selects the connective of a GroupExpression.
type GroupType int

const (
	GroupUnspecified GroupType = iota
	And
	Or
	Not
)

func (t GroupType) String() string {
	switch t {
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	default:
		return "unspecified"
	}
}

// GroupExpression combines operands with AND, OR or NOT.
// AND and OR need at least two operands, NOT exactly one; the arity is
// checked when the group is evaluated or built, not while it is assembled.
type GroupExpression struct {
	typ      GroupType
	operands []BooleanExpression
}

// NewGroupExpression returns an empty group.
func NewGroupExpression(typ GroupType) (*GroupExpression, error) {
	if typ <= GroupUnspecified || typ > Not {
		return nil, fmt.Errorf("%w: group type required", types.ErrInvalidArgument)
	}
	return &GroupExpression{typ: typ}, nil
}

func newGroup(typ GroupType, operands ...BooleanExpression) *GroupExpression {
	return &GroupExpression{typ: typ, operands: operands}
}

// Type returns the connective.
func (g *GroupExpression) Type() GroupType {
	return g.typ
}

// Add appends an operand. Duplicates are kept. A nil operand, typed or
// not, is kept as nil and fails Evaluate and Build.
func (g *GroupExpression) Add(x BooleanExpression) {
	g.operands = append(g.operands, operand(x))
}

// Remove deletes the first operand identical to x and reports whether one
// was found.
func (g *GroupExpression) Remove(x BooleanExpression) bool {
	x = operand(x)
	for i, op := range g.operands {
		if op == x {
			g.operands = append(g.operands[:i], g.operands[i+1:]...)
			return true
		}
	}
	return false
}

// Operands returns a copy of the operands in order.
func (g *GroupExpression) Operands() []BooleanExpression {
	return append([]BooleanExpression(nil), g.operands...)
}

// Evaluate implements BooleanExpression.
func (g *GroupExpression) Evaluate() (bool, error) {
	if err := checkNesting(g, nil); err != nil {
		return false, err
	}
	return evaluate(g)
}

// Build implements BooleanExpression.
func (g *GroupExpression) Build() (rules.Condition, error) {
	if err := checkNesting(g, nil); err != nil {
		return nil, err
	}
	return compile(g)
}

func (g *GroupExpression) String() string {
	return render(g, nil)
}

func (g *GroupExpression) checkArity() error {
	n := len(g.operands)
	switch g.typ {
	case And, Or:
		if n < 2 {
			return fmt.Errorf("%w: %s needs at least 2 operands, has %d", types.ErrInvalidArgument, g.typ, n)
		}
	case Not:
		if n != 1 {
			return fmt.Errorf("%w: not needs exactly 1 operand, has %d", types.ErrInvalidArgument, n)
		}
	default:
		return fmt.Errorf("%w: group type required", types.ErrInvalidArgument)
	}
	return nil
}

// replace swaps the first operand identical to old for x.
func (g *GroupExpression) replace(old, x BooleanExpression) bool {
	for i, op := range g.operands {
		if op == old {
			g.operands[i] = x
			return true
		}
	}
	return false
}
