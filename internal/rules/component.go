// Package rules is the subordinate rule runtime.
//
// A Control holds rules; each Rule pairs a Condition with the actions applied
// when it is true and when it is false. Conditions read live values from
// Triggers, actions change the state of Targets. Triggers, targets and groups
// are owned by the component tree that hosts the rules and are only
// referenced here.
//
// Built conditions, actions and rules are not modified after construction and
// can be shared between goroutines. Applying a control mutates its targets and
// is not synchronized.
package rules

// Trigger is a component whose current value participates in a condition.
type Trigger interface {
	// ID identifies the component within its registry.
	ID() string
	// Label is the optional display label. May be empty.
	Label() string
	// Value is the current value.
	Value() any
}

// Target is a component whose state actions change.
type Target interface {
	ID() string
	IsDisabled() bool
	SetDisabled(disabled bool)
	IsHidden() bool
	SetHidden(hidden bool)
	IsMandatory() bool
	SetMandatory(mandatory bool)
}

// Group is an ordered collection of targets sharing one group action.
type Group struct {
	id      string
	targets []Target
}

// NewGroup returns a group holding targets in order.
func NewGroup(id string, targets ...Target) *Group {
	return &Group{id: id, targets: append([]Target(nil), targets...)}
}

// ID returns the group identifier. May be empty for inline groups.
func (g *Group) ID() string {
	return g.id
}

// Add appends a target to the group.
func (g *Group) Add(t Target) {
	g.targets = append(g.targets, t)
}

// Targets returns the members in insertion order.
func (g *Group) Targets() []Target {
	return g.targets
}

// Contains reports whether a member has the same ID as t.
func (g *Group) Contains(t Target) bool {
	if t == nil {
		return false
	}
	for _, m := range g.targets {
		if m != nil && m.ID() == t.ID() {
			return true
		}
	}
	return false
}

// displayName is the name of a trigger in rendered conditions:
// its label, or its ID when it has none.
func displayName(t Trigger) string {
	if t == nil {
		return "<nil>"
	}
	if l := t.Label(); l != "" {
		return l
	}
	return t.ID()
}
