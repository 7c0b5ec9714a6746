package builder

import (
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

// Action describes one state change recorded by an ActionBuilder.
// Group is set exactly when Type is one of the "...In" variants.
type Action struct {
	Type   rules.ActionType
	Target rules.Target
	Group  *rules.Group
}

// NewAction returns a plain action descriptor.
func NewAction(typ rules.ActionType, target rules.Target) (*Action, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: action type required", types.ErrInvalidArgument)
	}
	if typ.InGroup() {
		return nil, fmt.Errorf("%w: %s needs a group", types.ErrInvalidArgument, typ)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s needs a target", types.ErrInvalidArgument, typ)
	}
	return &Action{Type: typ, Target: target}, nil
}

// NewGroupAction returns a group action descriptor.
func NewGroupAction(typ rules.ActionType, target rules.Target, group *rules.Group) (*Action, error) {
	if !typ.InGroup() {
		return nil, fmt.Errorf("%w: %s is not a group action", types.ErrInvalidArgument, typ)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s needs a target", types.ErrInvalidArgument, typ)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %s needs a group", types.ErrInvalidArgument, typ)
	}
	return &Action{Type: typ, Target: target, Group: group}, nil
}

// Build returns the runtime action.
func (a *Action) Build() (rules.Action, error) {
	if a.Type.InGroup() {
		return rules.NewGroupAction(a.Type, a.Target, a.Group)
	}
	return rules.NewTargetAction(a.Type, a.Target)
}

func (a *Action) String() string {
	id := "<nil>"
	if a.Target != nil {
		id = a.Target.ID()
	}
	if a.Group != nil {
		return fmt.Sprintf("%s %s in %s", a.Type, id, a.Group.ID())
	}
	return fmt.Sprintf("%s %s", a.Type, id)
}

// ActionBuilder records actions for one branch of a SubordinateBuilder.
// Construction errors are kept by the owning builder and reported by Build.
type ActionBuilder struct {
	owner   *SubordinateBuilder
	actions *[]*Action
}

func (ab *ActionBuilder) each(typ rules.ActionType, targets []rules.Target) *ActionBuilder {
	if len(targets) == 0 {
		ab.owner.fail(fmt.Errorf("%w: %s needs a target", types.ErrInvalidArgument, typ))
		return ab
	}
	for _, t := range targets {
		a, err := NewAction(typ, t)
		if err != nil {
			ab.owner.fail(err)
			continue
		}
		*ab.actions = append(*ab.actions, a)
	}
	return ab
}

func (ab *ActionBuilder) inGroup(typ rules.ActionType, target rules.Target, group *rules.Group) *ActionBuilder {
	a, err := NewGroupAction(typ, target, group)
	if err != nil {
		ab.owner.fail(err)
		return ab
	}
	*ab.actions = append(*ab.actions, a)
	return ab
}

// SetMandatory records one mandatory action per target.
func (ab *ActionBuilder) SetMandatory(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionMandatory, targets)
}

// SetOptional records one optional action per target.
func (ab *ActionBuilder) SetOptional(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionOptional, targets)
}

// Hide records one hide action per target.
func (ab *ActionBuilder) Hide(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionHide, targets)
}

// Show records one show action per target.
func (ab *ActionBuilder) Show(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionShow, targets)
}

// Disable records one disable action per target.
func (ab *ActionBuilder) Disable(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionDisable, targets)
}

// Enable records one enable action per target.
func (ab *ActionBuilder) Enable(targets ...rules.Target) *ActionBuilder {
	return ab.each(rules.ActionEnable, targets)
}

// ShowIn shows target and hides the other members.
func (ab *ActionBuilder) ShowIn(target rules.Target, members ...rules.Target) *ActionBuilder {
	return ab.inGroup(rules.ActionShowIn, target, rules.NewGroup("", members...))
}

// HideIn hides target and shows the other members.
func (ab *ActionBuilder) HideIn(target rules.Target, members ...rules.Target) *ActionBuilder {
	return ab.inGroup(rules.ActionHideIn, target, rules.NewGroup("", members...))
}

// EnableIn enables target and disables the other members.
func (ab *ActionBuilder) EnableIn(target rules.Target, members ...rules.Target) *ActionBuilder {
	return ab.inGroup(rules.ActionEnableIn, target, rules.NewGroup("", members...))
}

// DisableIn disables target and enables the other members.
func (ab *ActionBuilder) DisableIn(target rules.Target, members ...rules.Target) *ActionBuilder {
	return ab.inGroup(rules.ActionDisableIn, target, rules.NewGroup("", members...))
}

func (ab *ActionBuilder) ShowInGroup(target rules.Target, group *rules.Group) *ActionBuilder {
	return ab.inGroup(rules.ActionShowIn, target, group)
}

func (ab *ActionBuilder) HideInGroup(target rules.Target, group *rules.Group) *ActionBuilder {
	return ab.inGroup(rules.ActionHideIn, target, group)
}

func (ab *ActionBuilder) EnableInGroup(target rules.Target, group *rules.Group) *ActionBuilder {
	return ab.inGroup(rules.ActionEnableIn, target, group)
}

func (ab *ActionBuilder) DisableInGroup(target rules.Target, group *rules.Group) *ActionBuilder {
	return ab.inGroup(rules.ActionDisableIn, target, group)
}

// Record appends a prebuilt descriptor.
func (ab *ActionBuilder) Record(a *Action) *ActionBuilder {
	if a == nil {
		ab.owner.fail(fmt.Errorf("%w: nil action", types.ErrInvalidArgument))
		return ab
	}
	*ab.actions = append(*ab.actions, a)
	return ab
}

// Actions returns the recorded descriptors in order.
func (ab *ActionBuilder) Actions() []*Action {
	return append([]*Action(nil), *ab.actions...)
}
