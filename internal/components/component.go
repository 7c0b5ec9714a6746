// Package components holds the UI components that rules read and change.
//
// A Registry is built per request from component states, optionally bound to
// a JSON bean, and handed to the rule compiler, which resolves trigger and
// target IDs against it. After the rules ran, Snapshot returns the new state.
package components

import (
	"github.com/solatis/subordinate/internal/types"
)

// Component is one form component. It is both a rules.Trigger and a
// rules.Target.
type Component struct {
	id        string
	label     string
	value     any
	disabled  bool
	hidden    bool
	mandatory bool

	bind []types.PathSegment
}

// New returns an enabled, visible, optional component with no value.
func New(id, label string) *Component {
	return &Component{id: id, label: label}
}

// FromState returns a component initialized from state.
func FromState(state types.ComponentState) (*Component, error) {
	c := &Component{
		id:        state.ID,
		label:     state.Label,
		value:     state.Value,
		disabled:  state.Disabled,
		hidden:    state.Hidden,
		mandatory: state.Mandatory,
	}
	if state.Bind != "" {
		if err := c.Bind(state.Bind); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Component) ID() string    { return c.id }
func (c *Component) Label() string { return c.label }
func (c *Component) Value() any    { return c.value }

// SetValue replaces the trigger value.
func (c *Component) SetValue(v any) { c.value = v }

func (c *Component) IsDisabled() bool          { return c.disabled }
func (c *Component) SetDisabled(disabled bool) { c.disabled = disabled }

func (c *Component) IsHidden() bool        { return c.hidden }
func (c *Component) SetHidden(hidden bool) { c.hidden = hidden }

func (c *Component) IsMandatory() bool           { return c.mandatory }
func (c *Component) SetMandatory(mandatory bool) { c.mandatory = mandatory }

// Bind ties the component value to a bean property path.
func (c *Component) Bind(expr string) error {
	path, err := ParsePath(expr)
	if err != nil {
		return err
	}
	c.bind = path
	return nil
}

// Binding returns the bound path, or nil.
func (c *Component) Binding() []types.PathSegment {
	return c.bind
}

// State returns the externally visible state.
func (c *Component) State() types.ComponentState {
	s := types.ComponentState{
		ID:        c.id,
		Label:     c.label,
		Value:     c.value,
		Disabled:  c.disabled,
		Hidden:    c.hidden,
		Mandatory: c.mandatory,
	}
	if c.bind != nil {
		s.Bind = FormatPath(c.bind)
	}
	return s
}
