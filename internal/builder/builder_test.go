package builder

import (
	"errors"
	"testing"

	"github.com/solatis/subordinate/internal/components"
	"github.com/solatis/subordinate/internal/types"
)

func field(id string, value any) *components.Component {
	c := components.New(id, "")
	c.SetValue(value)
	return c
}

func TestExpressionBuilder_Precedence(t *testing.T) {
	a, b, c, d := field("a", "1"), field("b", "2"), field("c", "3"), field("d", "4")

	tests := []struct {
		name  string
		build func() *ExpressionBuilder
		want  string
	}{
		{
			name:  "single leaf",
			build: func() *ExpressionBuilder { return NewExpressionBuilder().Equals(a, "1") },
			want:  `a="1"`,
		},
		{
			name: "and then or",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().Equals(a, "1").And().Equals(b, "2").Or().Equals(c, "3")
			},
			want: `((a="1" and b="2") or c="3")`,
		},
		{
			name: "or then and",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().Equals(a, "1").Or().Equals(b, "2").And().Equals(c, "3")
			},
			want: `(a="1" or (b="2" and c="3"))`,
		},
		{
			name: "and or and",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().
					Equals(a, "1").And().Equals(b, "2").
					Or().
					Equals(c, "3").And().Equals(d, "4")
			},
			want: `((a="1" and b="2") or (c="3" and d="4"))`,
		},
		{
			name: "chained and",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().Equals(a, "1").And().Equals(b, "2").And().Equals(c, "3")
			},
			want: `(a="1" and b="2" and c="3")`,
		},
		{
			name: "chained or",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().Equals(a, "1").Or().Equals(b, "2").Or().Equals(c, "3")
			},
			want: `(a="1" or b="2" or c="3")`,
		},
		{
			name: "explicit group",
			build: func() *ExpressionBuilder {
				inner := NewExpressionBuilder().Equals(b, "2").Or().Equals(c, "3")
				return NewExpressionBuilder().Equals(a, "1").AndGroup(inner)
			},
			want: `(a="1" and (b="2" or c="3"))`,
		},
		{
			name: "not is a leaf",
			build: func() *ExpressionBuilder {
				inner := NewExpressionBuilder().Equals(b, "2").Or().Equals(c, "3")
				return NewExpressionBuilder().Not(inner).And().Equals(a, "1")
			},
			want: `(NOT ((b="2" or c="3")) and a="1")`,
		},
		{
			name: "all operators",
			build: func() *ExpressionBuilder {
				return NewExpressionBuilder().
					NotEquals(a, "x").And().LessThan(b, 3).And().LessThanOrEquals(b, 2).
					And().GreaterThan(c, 2).And().GreaterThanOrEquals(c, 3).And().Matches(d, `^\d$`)
			},
			want: `(a!="x" and b<"3" and b<="2" and c>"2" and c>="3" and d matches "^\d$")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eb := tt.build()
			if err := eb.Err(); err != nil {
				t.Fatalf("builder error = %v", err)
			}
			if got := eb.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
			cond, err := eb.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := cond.String(); got != tt.want {
				t.Errorf("Build().String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpressionBuilder_EvaluateMatchesBuild(t *testing.T) {
	a, b, c := field("a", "1"), field("b", "0"), field("c", "1")

	// a and b or c with b false: (true and false) or true
	eb := NewExpressionBuilder().Equals(a, "1").And().Equals(b, "1").Or().Equals(c, "1")
	got, err := eb.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Errorf("Evaluate() = false, want true")
	}

	c.SetValue("0")
	got, _ = eb.Evaluate()
	cond, _ := eb.Build()
	if got || cond.IsTrue() {
		t.Errorf("Evaluate() = %v, IsTrue() = %v, want false", got, cond.IsTrue())
	}
}

func TestExpressionBuilder_SyntaxErrors(t *testing.T) {
	a, b := field("a", "1"), field("b", "2")

	tests := []struct {
		name  string
		build func() *ExpressionBuilder
		want  error
	}{
		{"and without lhs", func() *ExpressionBuilder { return NewExpressionBuilder().And() }, types.ErrSyntax},
		{"or without lhs", func() *ExpressionBuilder { return NewExpressionBuilder().Or() }, types.ErrSyntax},
		{"double operator", func() *ExpressionBuilder { return NewExpressionBuilder().Equals(a, "1").And().Or() }, types.ErrSyntax},
		{"chained leaves", func() *ExpressionBuilder { return NewExpressionBuilder().Equals(a, "1").Equals(b, "2") }, types.ErrSyntax},
		{"leaf then not", func() *ExpressionBuilder {
			return NewExpressionBuilder().Equals(a, "1").Not(NewExpressionBuilder().Equals(b, "2"))
		}, types.ErrSyntax},
		{"nil trigger", func() *ExpressionBuilder { return NewExpressionBuilder().Equals(nil, "1") }, types.ErrInvalidArgument},
		{"nil not operand", func() *ExpressionBuilder { return NewExpressionBuilder().Not(nil) }, types.ErrInvalidArgument},
		{"nil and group", func() *ExpressionBuilder { return NewExpressionBuilder().Equals(a, "1").AndGroup(nil) }, types.ErrInvalidArgument},
		{"nil or group", func() *ExpressionBuilder { return NewExpressionBuilder().Equals(a, "1").OrGroup(nil) }, types.ErrInvalidArgument},
		{"match with number", func() *ExpressionBuilder { return NewExpressionBuilder().Compare(Match, a, 5) }, types.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eb := tt.build()
			if !errors.Is(eb.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", eb.Err(), tt.want)
			}
			if !errors.Is(eb.Validate(), tt.want) {
				t.Errorf("Validate() = %v, want %v", eb.Validate(), tt.want)
			}
			if _, err := eb.Evaluate(); !errors.Is(err, tt.want) {
				t.Errorf("Evaluate() error = %v, want %v", err, tt.want)
			}
			cond, err := eb.Build()
			if cond != nil || !errors.Is(err, types.ErrBuild) || !errors.Is(err, tt.want) {
				t.Errorf("Build() = %v, %v; want ErrBuild wrapping %v", cond, err, tt.want)
			}
		})
	}
}

func TestExpressionBuilder_FirstErrorSticks(t *testing.T) {
	a := field("a", "1")
	eb := NewExpressionBuilder().And()
	first := eb.Err()

	eb.Equals(a, "1").Equals(nil, "x")
	if eb.Err() != first {
		t.Errorf("Err() changed from %v to %v", first, eb.Err())
	}
	if eb.String() != "" {
		t.Errorf("String() = %q, want empty after ignored calls", eb.String())
	}
}

func TestExpressionBuilder_Incomplete(t *testing.T) {
	a := field("a", "1")

	if err := NewExpressionBuilder().Validate(); !errors.Is(err, types.ErrSyntax) {
		t.Errorf("empty Validate() = %v, want ErrSyntax", err)
	}

	trailing := NewExpressionBuilder().Equals(a, "1").And()
	if err := trailing.Validate(); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("trailing and Validate() = %v, want ErrInvalidArgument", err)
	}
	if got := trailing.String(); got != `(a="1")` {
		t.Errorf("trailing and String() = %s", got)
	}
}

func TestExpressionBuilder_SelfNesting(t *testing.T) {
	a, b := field("a", "1"), field("b", "2")

	direct := NewExpressionBuilder().Equals(a, "1")
	direct.AndGroup(direct)
	if err := direct.Validate(); !errors.Is(err, types.ErrNestedExpression) {
		t.Errorf("direct Validate() = %v, want ErrNestedExpression", err)
	}
	if _, err := direct.Build(); !errors.Is(err, types.ErrNestedExpression) {
		t.Errorf("direct Build() = %v, want ErrNestedExpression", err)
	}

	outer := NewExpressionBuilder().Equals(a, "1")
	inner := NewExpressionBuilder().Equals(b, "2").OrGroup(outer)
	outer.AndGroup(inner)
	if err := outer.Validate(); !errors.Is(err, types.ErrNestedExpression) {
		t.Errorf("transitive Validate() = %v, want ErrNestedExpression", err)
	}
	if _, err := inner.Evaluate(); !errors.Is(err, types.ErrNestedExpression) {
		t.Errorf("transitive Evaluate() = %v, want ErrNestedExpression", err)
	}
	// Rendering stays total.
	if got := outer.String(); got != `(a="1" and (b="2" or ...))` {
		t.Errorf("String() = %s", got)
	}

	self := NewExpressionBuilder()
	self.Not(self)
	if err := self.Validate(); !errors.Is(err, types.ErrNestedExpression) {
		t.Errorf("not self Validate() = %v, want ErrNestedExpression", err)
	}
}

func TestExpressionBuilder_SharedOperandIsNotNesting(t *testing.T) {
	a := field("a", "1")
	shared := NewExpressionBuilder().Equals(a, "1")

	eb := NewExpressionBuilder().Not(shared).Or().Not(shared).OrGroup(shared)
	if err := eb.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	got, _ := eb.Evaluate()
	if !got {
		t.Errorf("Evaluate() = false, want true")
	}
}

func TestExpressionBuilder_DoubleBuild(t *testing.T) {
	a, b := field("a", "1"), field("b", "2")
	eb := NewExpressionBuilder().Equals(a, "1")

	first, err := eb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	eb.Or().Equals(b, "x")
	second, err := eb.Build()
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	if first.String() != `a="1"` {
		t.Errorf("first condition changed: %s", first)
	}
	if second.String() != `(a="1" or b="x")` {
		t.Errorf("second condition = %s", second)
	}
}
