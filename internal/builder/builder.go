// internal/builder/builder.go
package builder

import (
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

/*
 * Incremental expression builder.
 *
 * Calls arrive one token at a time with no lookahead, so the builder is a
 * shift-reduce parser with two precedence levels (AND over OR) and an
 * explicit stack of open groups:
 *
 *   lhs    the last appended operand, waiting for an operator
 *   stack  open AND/OR groups, innermost last
 *   root   the whole expression
 *
 * and() with an open OR moves the OR's last operand into a new AND appended
 * to the OR:        a or b and c   ->  (a or (b and c))
 * or() with an open AND closes the AND and wraps it in a new OR that takes
 * its place in the parent (or becomes the root):
 *                   a and b or c   ->  ((a and b) or c)
 *
 * NOT and explicitly grouped sub-builders are leaves and never take part in
 * the folding. The first misuse is recorded and every later call is a no-op,
 * so a chain can be written without checking each step.
 */

// ExpressionBuilder builds a condition from fluent calls.
type ExpressionBuilder struct {
	root  BooleanExpression
	lhs   BooleanExpression
	stack []*GroupExpression
	err   error
}

// NewExpressionBuilder returns an empty builder.
func NewExpressionBuilder() *ExpressionBuilder {
	return &ExpressionBuilder{}
}

// Equals appends trigger = value.
func (b *ExpressionBuilder) Equals(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(Equal, trigger, value)
}

// NotEquals appends trigger != value.
func (b *ExpressionBuilder) NotEquals(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(NotEqual, trigger, value)
}

// LessThan appends trigger < value.
func (b *ExpressionBuilder) LessThan(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(LessThan, trigger, value)
}

// LessThanOrEquals appends trigger <= value.
func (b *ExpressionBuilder) LessThanOrEquals(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(LessThanOrEqual, trigger, value)
}

// GreaterThan appends trigger > value.
func (b *ExpressionBuilder) GreaterThan(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(GreaterThan, trigger, value)
}

// GreaterThanOrEquals appends trigger >= value.
func (b *ExpressionBuilder) GreaterThanOrEquals(trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(GreaterThanOrEqual, trigger, value)
}

// Matches appends a regular expression match on the trigger value.
func (b *ExpressionBuilder) Matches(trigger rules.Trigger, pattern string) *ExpressionBuilder {
	return b.compare(Match, trigger, pattern)
}

// Compare appends a comparison of the given type.
func (b *ExpressionBuilder) Compare(typ CompareType, trigger rules.Trigger, value any) *ExpressionBuilder {
	return b.compare(typ, trigger, value)
}

func (b *ExpressionBuilder) compare(typ CompareType, trigger rules.Trigger, value any) *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	c, err := NewCompareExpression(typ, trigger, value)
	if err != nil {
		b.err = err
		return b
	}
	b.appendExpression(c)
	return b
}

// And joins the previous operand with the next one.
func (b *ExpressionBuilder) And() *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	if b.lhs == nil {
		b.err = fmt.Errorf("%w: and without a left operand", types.ErrSyntax)
		return b
	}

	top := b.top()
	switch {
	case top == nil:
		and := newGroup(And, b.lhs)
		b.root = and
		b.push(and)
	case top.typ == And:
		// continue the open AND
	default:
		// AND binds tighter: take the OR's last operand into a new AND.
		top.operands = top.operands[:len(top.operands)-1]
		and := newGroup(And, b.lhs)
		top.Add(and)
		b.push(and)
	}
	b.lhs = nil
	return b
}

// Or joins the previous operand with the next one.
func (b *ExpressionBuilder) Or() *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	if b.lhs == nil {
		b.err = fmt.Errorf("%w: or without a left operand", types.ErrSyntax)
		return b
	}

	top := b.top()
	switch {
	case top == nil:
		or := newGroup(Or, b.lhs)
		b.root = or
		b.push(or)
	case top.typ == Or:
		// continue the open OR
	default:
		// Close the AND and put an OR in its place.
		b.pop()
		or := newGroup(Or, top)
		if parent := b.top(); parent != nil {
			parent.replace(top, or)
		} else {
			b.root = or
		}
		b.push(or)
	}
	b.lhs = nil
	return b
}

// AndGroup appends other as one operand after an implicit And.
func (b *ExpressionBuilder) AndGroup(other *ExpressionBuilder) *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	if other == nil {
		b.err = fmt.Errorf("%w: and group needs an expression", types.ErrInvalidArgument)
		return b
	}
	b.And()
	if b.err == nil {
		b.appendExpression(other)
	}
	return b
}

// OrGroup appends other as one operand after an implicit Or.
func (b *ExpressionBuilder) OrGroup(other *ExpressionBuilder) *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	if other == nil {
		b.err = fmt.Errorf("%w: or group needs an expression", types.ErrInvalidArgument)
		return b
	}
	b.Or()
	if b.err == nil {
		b.appendExpression(other)
	}
	return b
}

// Not appends the negation of other.
func (b *ExpressionBuilder) Not(other *ExpressionBuilder) *ExpressionBuilder {
	if b.err != nil {
		return b
	}
	if other == nil {
		b.err = fmt.Errorf("%w: not needs an expression", types.ErrInvalidArgument)
		return b
	}
	b.appendExpression(newGroup(Not, other))
	return b
}

// appendExpression places x as the pending left operand.
func (b *ExpressionBuilder) appendExpression(x BooleanExpression) {
	if b.lhs != nil {
		b.err = fmt.Errorf("%w: %s follows %s without and/or", types.ErrSyntax, render(x, nil), render(b.lhs, nil))
		return
	}
	b.lhs = x
	if top := b.top(); top != nil {
		top.Add(x)
	} else {
		b.root = x
	}
}

func (b *ExpressionBuilder) top() *GroupExpression {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *ExpressionBuilder) push(g *GroupExpression) {
	b.stack = append(b.stack, g)
}

func (b *ExpressionBuilder) pop() {
	b.stack = b.stack[:len(b.stack)-1]
}

// Err returns the first error recorded while building, if any.
func (b *ExpressionBuilder) Err() error {
	return b.err
}

// Root returns the expression built so far, or nil.
func (b *ExpressionBuilder) Root() BooleanExpression {
	return b.root
}

// ready reports the recorded error or an empty expression.
func (b *ExpressionBuilder) ready() error {
	if b.err != nil {
		return b.err
	}
	if b.root == nil {
		return fmt.Errorf("%w: empty expression", types.ErrSyntax)
	}
	return nil
}

// Validate checks that the expression is complete, does not contain itself
// and evaluates without error.
func (b *ExpressionBuilder) Validate() error {
	if err := b.ready(); err != nil {
		return err
	}
	if err := checkNesting(b, nil); err != nil {
		return err
	}
	_, err := evaluate(b)
	return err
}

// Evaluate implements BooleanExpression.
func (b *ExpressionBuilder) Evaluate() (bool, error) {
	if err := b.ready(); err != nil {
		return false, err
	}
	if err := checkNesting(b, nil); err != nil {
		return false, err
	}
	return evaluate(b)
}

// Build validates the expression and compiles it.
// Errors wrap types.ErrBuild and the cause.
func (b *ExpressionBuilder) Build() (rules.Condition, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrBuild, err)
	}
	c, err := compile(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrBuild, err)
	}
	return c, nil
}

func (b *ExpressionBuilder) String() string {
	return render(b, nil)
}
