// internal/rules/action.go
package rules

import (
	"fmt"

	"github.com/solatis/subordinate/internal/types"
)

/*
 * Actions change target state when a rule fires.
 *
 * Plain actions set one state slot on one target. Group actions set the slot
 * on one target and the inverse on every other member of the group, so
 * showIn(x2, {x1, x2, x3}) leaves exactly x2 visible whatever the prior state.
 */

// ActionType identifies the state change an action performs.
type ActionType int

const (
	ActionUnspecified ActionType = iota
	ActionDisable
	ActionEnable
	ActionHide
	ActionShow
	ActionMandatory
	ActionOptional
	ActionShowIn
	ActionHideIn
	ActionEnableIn
	ActionDisableIn
)

// InGroup reports whether the type is one of the four group variants.
func (t ActionType) InGroup() bool {
	switch t {
	case ActionShowIn, ActionHideIn, ActionEnableIn, ActionDisableIn:
		return true
	default:
		return false
	}
}

// Valid reports whether t names an action.
func (t ActionType) Valid() bool {
	return t > ActionUnspecified && t <= ActionDisableIn
}

func (t ActionType) String() string {
	switch t {
	case ActionDisable:
		return "disable"
	case ActionEnable:
		return "enable"
	case ActionHide:
		return "hide"
	case ActionShow:
		return "show"
	case ActionMandatory:
		return "mandatory"
	case ActionOptional:
		return "optional"
	case ActionShowIn:
		return "showIn"
	case ActionHideIn:
		return "hideIn"
	case ActionEnableIn:
		return "enableIn"
	case ActionDisableIn:
		return "disableIn"
	default:
		return "unspecified"
	}
}

// Action is a state change executed on one or more targets.
type Action interface {
	Apply()
	String() string
}

// TargetAction applies a plain action to a single target.
type TargetAction struct {
	Type   ActionType
	Target Target
}

// NewTargetAction validates and returns a plain action.
func NewTargetAction(t ActionType, target Target) (*TargetAction, error) {
	if !t.Valid() || t.InGroup() {
		return nil, fmt.Errorf("%w: %s is not a target action", types.ErrInvalidArgument, t)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: target required", types.ErrInvalidArgument)
	}
	return &TargetAction{Type: t, Target: target}, nil
}

// Apply implements Action.
func (a *TargetAction) Apply() {
	switch a.Type {
	case ActionDisable:
		a.Target.SetDisabled(true)
	case ActionEnable:
		a.Target.SetDisabled(false)
	case ActionHide:
		a.Target.SetHidden(true)
	case ActionShow:
		a.Target.SetHidden(false)
	case ActionMandatory:
		a.Target.SetMandatory(true)
	case ActionOptional:
		a.Target.SetMandatory(false)
	}
}

func (a *TargetAction) String() string {
	return fmt.Sprintf("%s %s", a.Type, a.Target.ID())
}

// GroupAction applies an action to one target and its inverse to the rest
// of the group.
type GroupAction struct {
	Type   ActionType
	Target Target
	Group  *Group
}

// NewGroupAction validates and returns a group action.
func NewGroupAction(t ActionType, target Target, group *Group) (*GroupAction, error) {
	if !t.InGroup() {
		return nil, fmt.Errorf("%w: %s is not a group action", types.ErrInvalidArgument, t)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: target required", types.ErrInvalidArgument)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group required for %s", types.ErrInvalidArgument, t)
	}
	return &GroupAction{Type: t, Target: target, Group: group}, nil
}

// Apply implements Action.
// The target is updated even when it is not a member of the group.
func (a *GroupAction) Apply() {
	for _, m := range a.Group.Targets() {
		if m == nil || m.ID() == a.Target.ID() {
			continue
		}
		a.applyTo(m, false)
	}
	a.applyTo(a.Target, true)
}

func (a *GroupAction) applyTo(t Target, selected bool) {
	switch a.Type {
	case ActionShowIn:
		t.SetHidden(!selected)
	case ActionHideIn:
		t.SetHidden(selected)
	case ActionEnableIn:
		t.SetDisabled(!selected)
	case ActionDisableIn:
		t.SetDisabled(selected)
	}
}

func (a *GroupAction) String() string {
	return fmt.Sprintf("%s %s in %s", a.Type, a.Target.ID(), a.Group.ID())
}
