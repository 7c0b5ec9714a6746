// internal/components/registry.go
package components

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

// Registry is an ordered set of components keyed by ID.
// Not safe for concurrent use; build one per request.
type Registry struct {
	order []*Component
	byID  map[string]*Component
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Component)}
}

// NewRegistryFromStates builds a registry from component states in order.
func NewRegistryFromStates(states []types.ComponentState) (*Registry, error) {
	if len(states) > types.MaxComponentsPerRequest {
		return nil, fmt.Errorf("%w: %d components exceeds limit of %d",
			types.ErrInvalidArgument, len(states), types.MaxComponentsPerRequest)
	}
	r := NewRegistry()
	for _, s := range states {
		c, err := FromState(s)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", s.ID, err)
		}
		if err := r.Add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers c. IDs must be non-empty and unique.
func (r *Registry) Add(c *Component) error {
	if c == nil || c.ID() == "" {
		return fmt.Errorf("%w: component ID required", types.ErrInvalidArgument)
	}
	if _, dup := r.byID[c.ID()]; dup {
		return fmt.Errorf("%w: duplicate component %q", types.ErrInvalidArgument, c.ID())
	}
	r.order = append(r.order, c)
	r.byID[c.ID()] = c
	return nil
}

// Get returns the component with the given ID.
func (r *Registry) Get(id string) (*Component, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Trigger resolves id as a rules.Trigger.
func (r *Registry) Trigger(id string) (rules.Trigger, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownComponent, id)
	}
	return c, nil
}

// Target resolves id as a rules.Target.
func (r *Registry) Target(id string) (rules.Target, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownComponent, id)
	}
	return c, nil
}

// Components returns the components in registration order.
func (r *Registry) Components() []*Component {
	return r.order
}

// Len returns the number of components.
func (r *Registry) Len() int {
	return len(r.order)
}

// Snapshot returns the state of every component in registration order.
func (r *Registry) Snapshot() []types.ComponentState {
	out := make([]types.ComponentState, len(r.order))
	for i, c := range r.order {
		out[i] = c.State()
	}
	return out
}

// BindBean sets the value of every bound component from bean.
// Paths missing from the bean leave the value nil.
// Returns the number of components whose path resolved.
func (r *Registry) BindBean(bean json.RawMessage) (int, error) {
	decoded, err := decodeBean(bean)
	if err != nil {
		return 0, err
	}

	bound := 0
	for _, c := range r.order {
		if c.bind == nil {
			continue
		}
		res, err := resolve(c.bind, decoded, nil)
		switch {
		case errors.Is(err, types.ErrFieldNotFound):
			c.SetValue(nil)
		case err != nil:
			return bound, fmt.Errorf("component %q: %w", c.ID(), err)
		default:
			c.SetValue(res.Value)
			bound++
		}
	}
	return bound, nil
}
