package builder

import (
	"errors"
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

// SubordinateBuilder pairs a condition with the actions applied when it is
// true and when it is false.
//
// Build may be called again after further changes; each call returns new
// rule objects built from the state at that time.
type SubordinateBuilder struct {
	name      string
	condition *ExpressionBuilder
	onTrue    []*Action
	onFalse   []*Action
	errs      []error
}

// NewSubordinateBuilder returns an empty builder.
func NewSubordinateBuilder() *SubordinateBuilder {
	return &SubordinateBuilder{condition: NewExpressionBuilder()}
}

// Named sets the rule name used in outcomes and logs.
func (s *SubordinateBuilder) Named(name string) *SubordinateBuilder {
	s.name = name
	return s
}

// Condition returns the builder for the rule condition.
func (s *SubordinateBuilder) Condition() *ExpressionBuilder {
	return s.condition
}

// WhenTrue returns the builder for actions applied when the condition holds.
func (s *SubordinateBuilder) WhenTrue() *ActionBuilder {
	return &ActionBuilder{owner: s, actions: &s.onTrue}
}

// WhenFalse returns the builder for actions applied otherwise.
func (s *SubordinateBuilder) WhenFalse() *ActionBuilder {
	return &ActionBuilder{owner: s, actions: &s.onFalse}
}

func (s *SubordinateBuilder) fail(err error) {
	s.errs = append(s.errs, err)
}

// BuildRule validates the builder and returns the rule.
// Errors wrap types.ErrBuild.
func (s *SubordinateBuilder) BuildRule() (*rules.Rule, error) {
	if len(s.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", types.ErrBuild, errors.Join(s.errs...))
	}

	cond, err := s.condition.Build()
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	if len(s.onTrue) == 0 && len(s.onFalse) == 0 {
		return nil, fmt.Errorf("%w: no actions for either outcome", types.ErrBuild)
	}

	onTrue, err := buildActions(s.onTrue)
	if err != nil {
		return nil, err
	}
	onFalse, err := buildActions(s.onFalse)
	if err != nil {
		return nil, err
	}

	r, err := rules.NewRule(s.name, cond, onTrue, onFalse)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrBuild, err)
	}
	return r, nil
}

// Build returns a control holding the single built rule.
func (s *SubordinateBuilder) Build() (*rules.Control, error) {
	r, err := s.BuildRule()
	if err != nil {
		return nil, err
	}
	return rules.NewControl(r), nil
}

func buildActions(descs []*Action) ([]rules.Action, error) {
	out := make([]rules.Action, 0, len(descs))
	for _, d := range descs {
		a, err := d.Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrBuild, d, err)
		}
		out = append(out, a)
	}
	return out, nil
}
