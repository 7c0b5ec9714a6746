package rules

import (
	"errors"
	"testing"

	"github.com/solatis/subordinate/internal/types"
)

func TestNewTargetAction_Validation(t *testing.T) {
	x := &field{id: "x"}
	if _, err := NewTargetAction(ActionDisable, x); err != nil {
		t.Fatalf("NewTargetAction() error = %v, want nil", err)
	}
	if _, err := NewTargetAction(ActionDisable, nil); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("nil target error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewTargetAction(ActionUnspecified, x); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("unspecified type error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewTargetAction(ActionShowIn, x); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("group type error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewGroupAction_Validation(t *testing.T) {
	x := &field{id: "x"}
	g := NewGroup("g", x)
	if _, err := NewGroupAction(ActionShowIn, x, g); err != nil {
		t.Fatalf("NewGroupAction() error = %v, want nil", err)
	}
	if _, err := NewGroupAction(ActionShowIn, x, nil); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("nil group error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewGroupAction(ActionShowIn, nil, g); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("nil target error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewGroupAction(ActionShow, x, g); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("plain type error = %v, want ErrInvalidArgument", err)
	}
}

func TestTargetAction_Apply(t *testing.T) {
	tests := []struct {
		typ   ActionType
		start field
		check func(*field) bool
	}{
		{ActionDisable, field{}, func(f *field) bool { return f.disabled }},
		{ActionEnable, field{disabled: true}, func(f *field) bool { return !f.disabled }},
		{ActionHide, field{}, func(f *field) bool { return f.hidden }},
		{ActionShow, field{hidden: true}, func(f *field) bool { return !f.hidden }},
		{ActionMandatory, field{}, func(f *field) bool { return f.mandatory }},
		{ActionOptional, field{mandatory: true}, func(f *field) bool { return !f.mandatory }},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			target := tt.start
			target.id = "x"
			a, err := NewTargetAction(tt.typ, &target)
			if err != nil {
				t.Fatalf("NewTargetAction() error = %v", err)
			}
			a.Apply()
			if !tt.check(&target) {
				t.Errorf("%s did not apply, state = %+v", tt.typ, target)
			}
		})
	}
}

func TestGroupAction_Apply(t *testing.T) {
	tests := []struct {
		typ  ActionType
		want func(selected, other *field) bool
	}{
		{ActionShowIn, func(s, o *field) bool { return !s.hidden && o.hidden }},
		{ActionHideIn, func(s, o *field) bool { return s.hidden && !o.hidden }},
		{ActionEnableIn, func(s, o *field) bool { return !s.disabled && o.disabled }},
		{ActionDisableIn, func(s, o *field) bool { return s.disabled && !o.disabled }},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			for _, prior := range []bool{false, true} {
				x1 := &field{id: "x1", hidden: prior, disabled: prior}
				x2 := &field{id: "x2", hidden: !prior, disabled: !prior}
				x3 := &field{id: "x3", hidden: prior, disabled: prior}
				a, err := NewGroupAction(tt.typ, x2, NewGroup("g", x1, x2, x3))
				if err != nil {
					t.Fatalf("NewGroupAction() error = %v", err)
				}
				a.Apply()
				if !tt.want(x2, x1) || !tt.want(x2, x3) {
					t.Errorf("prior=%v: x1=%+v x2=%+v x3=%+v", prior, *x1, *x2, *x3)
				}
			}
		})
	}
}

func TestGroup_Contains(t *testing.T) {
	x1 := &field{id: "x1"}
	g := NewGroup("g", x1)
	if !g.Contains(&field{id: "x1"}) {
		t.Errorf("Contains() by ID = false, want true")
	}
	if g.Contains(&field{id: "x2"}) {
		t.Errorf("Contains(x2) = true, want false")
	}
	g.Add(&field{id: "x2"})
	if len(g.Targets()) != 2 {
		t.Errorf("len(Targets()) = %d, want 2", len(g.Targets()))
	}
}

func TestNewRule_Validation(t *testing.T) {
	trigger := &field{id: "t"}
	cond := mustCompare(OpEq, trigger, "x")
	disable, _ := NewTargetAction(ActionDisable, &field{id: "x"})

	if _, err := NewRule("r", nil, []Action{disable}, nil); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("nil condition error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewRule("r", cond, nil, nil); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("no actions error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewRule("r", cond, nil, []Action{disable}); err != nil {
		t.Errorf("false-only rule error = %v, want nil", err)
	}
}

func TestControl_ApplyTheControls(t *testing.T) {
	trigger := &field{id: "t", value: "false"}
	x := &field{id: "x"}
	disable, _ := NewTargetAction(ActionDisable, x)
	enable, _ := NewTargetAction(ActionEnable, x)

	r, err := NewRule("toggle", mustCompare(OpEq, trigger, "false"), []Action{disable}, []Action{enable})
	if err != nil {
		t.Fatalf("NewRule() error = %v", err)
	}
	control := NewControl(r)

	outcomes := control.ApplyTheControls()
	if len(outcomes) != 1 || !outcomes[0].Result || outcomes[0].ActionsApplied != 1 {
		t.Fatalf("outcomes = %+v", outcomes)
	}
	if !x.disabled {
		t.Errorf("x.disabled = false, want true")
	}

	trigger.value = "true"
	control.ApplyTheControls()
	if x.disabled {
		t.Errorf("x.disabled after false branch = true, want false")
	}
}

func TestControl_ActionOrderPreserved(t *testing.T) {
	trigger := &field{id: "t", value: "y"}
	x := &field{id: "x"}
	hide, _ := NewTargetAction(ActionHide, x)
	show, _ := NewTargetAction(ActionShow, x)

	r, _ := NewRule("", mustCompare(OpEq, trigger, "y"), []Action{hide, show}, nil)
	NewControl(r, nil).ApplyTheControls()
	if x.hidden {
		t.Errorf("later show did not override earlier hide")
	}
}
