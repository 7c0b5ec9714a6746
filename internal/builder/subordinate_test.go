package builder

import (
	"errors"
	"testing"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

func TestSubordinateBuilder_DisableWhenTrue(t *testing.T) {
	trigger := field("t", "false")
	x := field("x", nil)

	sb := NewSubordinateBuilder()
	sb.Condition().Equals(trigger, "false")
	sb.WhenTrue().Disable(x)

	control, err := sb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	control.ApplyTheControls()
	if !x.IsDisabled() {
		t.Errorf("x.IsDisabled() = false with t=false, want true")
	}

	// No false branch: the prior state is kept.
	for _, prior := range []bool{false, true} {
		x.SetDisabled(prior)
		trigger.SetValue("true")
		control.ApplyTheControls()
		if x.IsDisabled() != prior {
			t.Errorf("x.IsDisabled() = %v with t=true, want unchanged %v", x.IsDisabled(), prior)
		}
	}
}

func TestSubordinateBuilder_ShowInGroup(t *testing.T) {
	trigger := field("t", "on")

	for _, prior := range []bool{false, true} {
		x1, x2, x3 := field("x1", nil), field("x2", nil), field("x3", nil)
		x1.SetHidden(!prior)
		x2.SetHidden(prior)
		x3.SetHidden(!prior)
		g := rules.NewGroup("G", x1, x2, x3)

		sb := NewSubordinateBuilder()
		sb.Condition().Equals(trigger, "on")
		sb.WhenTrue().ShowInGroup(x2, g)

		control, err := sb.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		control.ApplyTheControls()

		if x2.IsHidden() || !x1.IsHidden() || !x3.IsHidden() {
			t.Errorf("prior=%v: hidden x1=%v x2=%v x3=%v, want only x2 visible",
				prior, x1.IsHidden(), x2.IsHidden(), x3.IsHidden())
		}
	}
}

func TestSubordinateBuilder_ActionVariants(t *testing.T) {
	trigger := field("t", "1")
	a, b, c := field("a", nil), field("b", nil), field("c", nil)
	a.SetHidden(true)

	sb := NewSubordinateBuilder().Named("variants")
	sb.Condition().Equals(trigger, "1")
	sb.WhenTrue().
		Show(a).
		SetMandatory(a, b).
		EnableIn(b, a, b, c)
	sb.WhenFalse().
		Hide(a).
		SetOptional(a, b)

	r, err := sb.BuildRule()
	if err != nil {
		t.Fatalf("BuildRule() error = %v", err)
	}
	if r.Name != "variants" || len(r.OnTrue) != 4 || len(r.OnFalse) != 3 {
		t.Fatalf("rule = %+v", r)
	}

	out := r.Execute()
	if !out.Result || out.ActionsApplied != 4 {
		t.Errorf("Execute() = %+v", out)
	}
	if a.IsHidden() || !a.IsMandatory() || !b.IsMandatory() {
		t.Errorf("true branch not applied: a=%+v b=%+v", a.State(), b.State())
	}
	if b.IsDisabled() || !a.IsDisabled() || !c.IsDisabled() {
		t.Errorf("enableIn not applied: a=%v b=%v c=%v", a.IsDisabled(), b.IsDisabled(), c.IsDisabled())
	}

	trigger.SetValue("2")
	r.Execute()
	if !a.IsHidden() || a.IsMandatory() || b.IsMandatory() {
		t.Errorf("false branch not applied: a=%+v b=%+v", a.State(), b.State())
	}
}

func TestSubordinateBuilder_ActionOrder(t *testing.T) {
	trigger := field("t", "1")
	x := field("x", nil)

	sb := NewSubordinateBuilder()
	sb.Condition().Equals(trigger, "1")
	sb.WhenTrue().Disable(x).Enable(x).Disable(x)

	control, err := sb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	control.ApplyTheControls()
	if !x.IsDisabled() {
		t.Errorf("last action did not win")
	}
}

func TestSubordinateBuilder_Errors(t *testing.T) {
	trigger := field("t", "1")
	x := field("x", nil)

	tests := []struct {
		name  string
		setup func(sb *SubordinateBuilder)
		want  error
	}{
		{
			name:  "no actions",
			setup: func(sb *SubordinateBuilder) { sb.Condition().Equals(trigger, "1") },
			want:  types.ErrBuild,
		},
		{
			name: "empty condition",
			setup: func(sb *SubordinateBuilder) {
				sb.WhenTrue().Disable(x)
			},
			want: types.ErrSyntax,
		},
		{
			name: "invalid condition with actions",
			setup: func(sb *SubordinateBuilder) {
				sb.Condition().Equals(trigger, "1").Equals(trigger, "2")
				sb.WhenTrue().Disable(x)
				sb.WhenFalse().Enable(x)
			},
			want: types.ErrSyntax,
		},
		{
			name: "nil target",
			setup: func(sb *SubordinateBuilder) {
				sb.Condition().Equals(trigger, "1")
				sb.WhenTrue().Disable(nil)
			},
			want: types.ErrInvalidArgument,
		},
		{
			name: "no targets",
			setup: func(sb *SubordinateBuilder) {
				sb.Condition().Equals(trigger, "1")
				sb.WhenTrue().Hide()
			},
			want: types.ErrInvalidArgument,
		},
		{
			name: "nil group",
			setup: func(sb *SubordinateBuilder) {
				sb.Condition().Equals(trigger, "1")
				sb.WhenTrue().ShowInGroup(x, nil)
			},
			want: types.ErrInvalidArgument,
		},
		{
			name: "self nested condition",
			setup: func(sb *SubordinateBuilder) {
				cond := sb.Condition().Equals(trigger, "1")
				cond.OrGroup(cond)
				sb.WhenTrue().Disable(x)
			},
			want: types.ErrNestedExpression,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewSubordinateBuilder()
			tt.setup(sb)
			control, err := sb.Build()
			if control != nil {
				t.Errorf("Build() returned a control")
			}
			if !errors.Is(err, types.ErrBuild) || !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want ErrBuild wrapping %v", err, tt.want)
			}
		})
	}
}

func TestSubordinateBuilder_RepeatedBuild(t *testing.T) {
	trigger := field("t", "1")
	x, y := field("x", nil), field("y", nil)

	sb := NewSubordinateBuilder()
	sb.Condition().Equals(trigger, "1")
	sb.WhenTrue().Disable(x)

	first, err := sb.BuildRule()
	if err != nil {
		t.Fatalf("BuildRule() error = %v", err)
	}
	sb.WhenTrue().Disable(y)
	second, err := sb.BuildRule()
	if err != nil {
		t.Fatalf("second BuildRule() error = %v", err)
	}

	if first == second || len(first.OnTrue) != 1 || len(second.OnTrue) != 2 {
		t.Errorf("first=%d actions, second=%d actions", len(first.OnTrue), len(second.OnTrue))
	}
}

func TestAction_Construction(t *testing.T) {
	x := field("x", nil)
	g := rules.NewGroup("g", x)

	tests := []struct {
		name  string
		build func() (*Action, error)
		ok    bool
	}{
		{"plain", func() (*Action, error) { return NewAction(rules.ActionHide, x) }, true},
		{"group", func() (*Action, error) { return NewGroupAction(rules.ActionHideIn, x, g) }, true},
		{"unspecified", func() (*Action, error) { return NewAction(rules.ActionUnspecified, x) }, false},
		{"plain nil target", func() (*Action, error) { return NewAction(rules.ActionHide, nil) }, false},
		{"plain with group type", func() (*Action, error) { return NewAction(rules.ActionShowIn, x) }, false},
		{"group nil group", func() (*Action, error) { return NewGroupAction(rules.ActionShowIn, x, nil) }, false},
		{"group nil target", func() (*Action, error) { return NewGroupAction(rules.ActionShowIn, nil, g) }, false},
		{"group with plain type", func() (*Action, error) { return NewGroupAction(rules.ActionShow, x, g) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.build()
			if tt.ok {
				if err != nil {
					t.Fatalf("error = %v", err)
				}
				if _, err := a.Build(); err != nil {
					t.Errorf("Build() error = %v", err)
				}
				return
			}
			if !errors.Is(err, types.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
