// Package builder assembles subordinate rules through a fluent API.
//
// An ExpressionBuilder turns a sequence of comparison, and, or and not calls
// into a precedence-correct expression tree; a SubordinateBuilder pairs that
// condition with the actions to apply when it is true or false and compiles
// both into the rules runtime.
//
// Builders are not safe for concurrent use. The conditions, actions and rules
// they build are immutable.
package builder

import (
	"fmt"
	"strings"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

/*
 * Expression tree operations.
 *
 * The tree has three node variants: *CompareExpression leaves,
 * *GroupExpression (AND/OR/NOT) and *ExpressionBuilder, which stands for its
 * own root so that one builder can be an operand of another. Evaluation,
 * compilation and rendering are type switches over the variants.
 *
 * Builders are mutable, so a tree can reach itself. checkNesting rejects any
 * node that appears twice on a root-to-node path before evaluate or compile
 * recurse. render stops at such a node instead of failing.
 */

// BooleanExpression is a node of an expression tree.
type BooleanExpression interface {
	// Evaluate compiles the expression and evaluates it against the current
	// trigger values.
	Evaluate() (bool, error)
	// Build compiles the expression into a rules.Condition.
	Build() (rules.Condition, error)
	String() string

	expression()
}

func (*CompareExpression) expression() {}
func (*GroupExpression) expression()   {}
func (*ExpressionBuilder) expression() {}

// operand turns a typed nil pointer into a nil interface.
func operand(x BooleanExpression) BooleanExpression {
	switch n := x.(type) {
	case *CompareExpression:
		if n == nil {
			return nil
		}
	case *GroupExpression:
		if n == nil {
			return nil
		}
	case *ExpressionBuilder:
		if n == nil {
			return nil
		}
	}
	return x
}

// children returns the direct operands of x.
func children(x BooleanExpression) []BooleanExpression {
	switch n := x.(type) {
	case *GroupExpression:
		return n.operands
	case *ExpressionBuilder:
		if n.root != nil {
			return []BooleanExpression{n.root}
		}
	}
	return nil
}

// checkNesting fails if any node appears twice on one root-to-node path.
func checkNesting(x BooleanExpression, path []BooleanExpression) error {
	if x == nil {
		return nil
	}
	for _, p := range path {
		if p == x {
			return fmt.Errorf("%w: %T", types.ErrNestedExpression, x)
		}
	}
	path = append(path, x)
	for _, c := range children(x) {
		if err := checkNesting(c, path); err != nil {
			return err
		}
	}
	return nil
}

// evaluate assumes checkNesting passed.
func evaluate(x BooleanExpression) (bool, error) {
	switch n := x.(type) {
	case *CompareExpression:
		c, err := n.compile()
		if err != nil {
			return false, err
		}
		return c.IsTrue(), nil

	case *GroupExpression:
		if err := n.checkArity(); err != nil {
			return false, err
		}
		switch n.typ {
		case And:
			for _, op := range n.operands {
				v, err := evaluate(op)
				if err != nil || !v {
					return false, err
				}
			}
			return true, nil
		case Or:
			for _, op := range n.operands {
				v, err := evaluate(op)
				if err != nil || v {
					return v, err
				}
			}
			return false, nil
		default:
			v, err := evaluate(n.operands[0])
			return !v && err == nil, err
		}

	case *ExpressionBuilder:
		if err := n.ready(); err != nil {
			return false, err
		}
		return evaluate(n.root)

	default:
		return false, fmt.Errorf("%w: nil operand", types.ErrInvalidArgument)
	}
}

// compile assumes checkNesting passed.
func compile(x BooleanExpression) (rules.Condition, error) {
	switch n := x.(type) {
	case *CompareExpression:
		return n.compile()

	case *GroupExpression:
		if err := n.checkArity(); err != nil {
			return nil, err
		}
		conds := make([]rules.Condition, len(n.operands))
		for i, op := range n.operands {
			c, err := compile(op)
			if err != nil {
				return nil, err
			}
			conds[i] = c
		}
		switch n.typ {
		case And:
			return rules.NewAnd(conds[0], conds[1], conds[2:]...), nil
		case Or:
			return rules.NewOr(conds[0], conds[1], conds[2:]...), nil
		default:
			return rules.NewNot(conds[0]), nil
		}

	case *ExpressionBuilder:
		if err := n.ready(); err != nil {
			return nil, err
		}
		return compile(n.root)

	default:
		return nil, fmt.Errorf("%w: nil operand", types.ErrInvalidArgument)
	}
}

// render is total: it never fails, whatever the arity or nesting.
func render(x BooleanExpression, path []BooleanExpression) string {
	if x == nil {
		return "<nil>"
	}
	for _, p := range path {
		if p == x {
			return "..."
		}
	}
	path = append(path, x)

	switch n := x.(type) {
	case *CompareExpression:
		return rules.RenderCompare(n.trigger, n.typ.operator(), n.value)

	case *GroupExpression:
		parts := make([]string, len(n.operands))
		for i, op := range n.operands {
			parts[i] = render(op, path)
		}
		switch n.typ {
		case And:
			return "(" + strings.Join(parts, " and ") + ")"
		case Or:
			return "(" + strings.Join(parts, " or ") + ")"
		default:
			return "NOT (" + strings.Join(parts, " ") + ")"
		}

	case *ExpressionBuilder:
		if n.root == nil {
			return ""
		}
		return render(n.root, path)
	}
	return ""
}
