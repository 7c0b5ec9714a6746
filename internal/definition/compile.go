// internal/definition/compile.go
package definition

import (
	"fmt"
	"sort"

	"github.com/solatis/subordinate/internal/builder"
	"github.com/solatis/subordinate/internal/components"
	"github.com/solatis/subordinate/internal/rules"
	"github.com/solatis/subordinate/internal/types"
)

/*
 * Rule set compilation.
 *
 * Each rule's condition tokens are replayed as builder calls in order, so a
 * rule file obeys exactly the precedence and syntax rules of the fluent API.
 * Grouped tokens ({and: [...]}, {or: [...]}, {not: [...]}) compile their
 * tokens into a sub-builder first.
 *
 * Component IDs resolve against a Resolver when the rule is compiled; named
 * groups resolve against the rule set's groups and are shared by all actions
 * of one compilation.
 */

// Resolver looks up the components rules refer to.
// *components.Registry implements it.
type Resolver interface {
	Trigger(id string) (rules.Trigger, error)
	Target(id string) (rules.Target, error)
}

var compareTypes = map[string]builder.CompareType{
	types.CompareEquals:              builder.Equal,
	types.CompareNotEquals:           builder.NotEqual,
	types.CompareLessThan:            builder.LessThan,
	types.CompareLessThanOrEquals:    builder.LessThanOrEqual,
	types.CompareGreaterThan:         builder.GreaterThan,
	types.CompareGreaterThanOrEquals: builder.GreaterThanOrEqual,
	types.CompareMatches:             builder.Match,
}

var plainActions = map[string]func(*builder.ActionBuilder, ...rules.Target) *builder.ActionBuilder{
	types.ActionKeyDisable:   (*builder.ActionBuilder).Disable,
	types.ActionKeyEnable:    (*builder.ActionBuilder).Enable,
	types.ActionKeyHide:      (*builder.ActionBuilder).Hide,
	types.ActionKeyShow:      (*builder.ActionBuilder).Show,
	types.ActionKeyMandatory: (*builder.ActionBuilder).SetMandatory,
	types.ActionKeyOptional:  (*builder.ActionBuilder).SetOptional,
}

var groupActions = map[string]func(*builder.ActionBuilder, rules.Target, *rules.Group) *builder.ActionBuilder{
	types.ActionKeyShowIn:    (*builder.ActionBuilder).ShowInGroup,
	types.ActionKeyHideIn:    (*builder.ActionBuilder).HideInGroup,
	types.ActionKeyEnableIn:  (*builder.ActionBuilder).EnableInGroup,
	types.ActionKeyDisableIn: (*builder.ActionBuilder).DisableInGroup,
}

// compiler holds per-compilation state.
type compiler struct {
	set    *types.RuleSet
	reg    Resolver
	groups map[string]*rules.Group
}

// Compile builds every rule of set into one control, in order.
func Compile(set *types.RuleSet, reg Resolver) (*rules.Control, error) {
	if set == nil || reg == nil {
		return nil, fmt.Errorf("%w: rule set and registry required", types.ErrInvalidArgument)
	}
	if len(set.Rules) > types.MaxRulesPerSet {
		return nil, fmt.Errorf("%w: %d rules, limit %d", types.ErrTooManyRules, len(set.Rules), types.MaxRulesPerSet)
	}

	c := &compiler{set: set, reg: reg, groups: make(map[string]*rules.Group)}
	control := rules.NewControl()
	for i, def := range set.Rules {
		r, err := c.rule(def)
		if err != nil {
			return nil, fmt.Errorf("rule %d %q: %w", i, def.Name, err)
		}
		control.AddRule(r)
	}
	return control, nil
}

func (c *compiler) rule(def types.RuleDefinition) (*rules.Rule, error) {
	sb := builder.NewSubordinateBuilder().Named(def.Name)
	if err := c.condition(sb.Condition(), def.Condition); err != nil {
		return nil, err
	}
	if err := c.actions(sb.WhenTrue(), def.WhenTrue); err != nil {
		return nil, err
	}
	if err := c.actions(sb.WhenFalse(), def.WhenFalse); err != nil {
		return nil, err
	}
	return sb.BuildRule()
}

// condition replays tokens on eb. Syntax errors stay on the builder and
// surface from Build; lookup failures return immediately.
func (c *compiler) condition(eb *builder.ExpressionBuilder, tokens []types.Token) error {
	for _, tok := range tokens {
		switch tok.Kind {
		case types.TokenCompare:
			typ, ok := compareTypes[tok.Compare]
			if !ok {
				return fmt.Errorf("%w: %q", types.ErrUnknownToken, tok.Compare)
			}
			trigger, err := c.reg.Trigger(tok.Trigger)
			if err != nil {
				return err
			}
			eb.Compare(typ, trigger, tok.Value)

		case types.TokenAnd, types.TokenOr:
			if tok.Group == nil {
				if tok.Kind == types.TokenAnd {
					eb.And()
				} else {
					eb.Or()
				}
				continue
			}
			sub, err := c.subExpression(tok.Group)
			if err != nil {
				return err
			}
			if tok.Kind == types.TokenAnd {
				eb.AndGroup(sub)
			} else {
				eb.OrGroup(sub)
			}

		case types.TokenNot:
			sub, err := c.subExpression(tok.Group)
			if err != nil {
				return err
			}
			eb.Not(sub)

		default:
			return fmt.Errorf("%w: kind %d", types.ErrUnknownToken, tok.Kind)
		}
	}
	return nil
}

func (c *compiler) subExpression(tokens []types.Token) (*builder.ExpressionBuilder, error) {
	sub := builder.NewExpressionBuilder()
	if err := c.condition(sub, tokens); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *compiler) actions(ab *builder.ActionBuilder, defs []types.ActionDef) error {
	for _, def := range defs {
		if apply, ok := plainActions[def.Type]; ok {
			targets := make([]rules.Target, 0, len(def.Targets))
			for _, id := range def.Targets {
				t, err := c.reg.Target(id)
				if err != nil {
					return err
				}
				targets = append(targets, t)
			}
			apply(ab, targets...)
			continue
		}

		apply, ok := groupActions[def.Type]
		if !ok {
			return fmt.Errorf("%w: %q", types.ErrUnknownAction, def.Type)
		}
		target, err := c.reg.Target(def.Target)
		if err != nil {
			return err
		}
		group, err := c.group(def)
		if err != nil {
			return err
		}
		apply(ab, target, group)
	}
	return nil
}

// group resolves the named or inline group of a group action.
// Returns nil when the action names neither; the builder rejects that.
func (c *compiler) group(def types.ActionDef) (*rules.Group, error) {
	if def.Group != "" {
		if g, ok := c.groups[def.Group]; ok {
			return g, nil
		}
		members, ok := c.set.Groups[def.Group]
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownGroup, def.Group)
		}
		g, err := c.newGroup(def.Group, members)
		if err != nil {
			return nil, err
		}
		c.groups[def.Group] = g
		return g, nil
	}
	if len(def.Members) > 0 {
		return c.newGroup("", def.Members)
	}
	return nil, nil
}

func (c *compiler) newGroup(name string, ids []string) (*rules.Group, error) {
	g := rules.NewGroup(name)
	for _, id := range ids {
		t, err := c.reg.Target(id)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		g.Add(t)
	}
	return g, nil
}

// References returns every component ID the rule set mentions, sorted.
func References(set *types.RuleSet) []string {
	seen := make(map[string]struct{})
	add := func(id string) {
		if id != "" {
			seen[id] = struct{}{}
		}
	}

	var walk func([]types.Token)
	walk = func(tokens []types.Token) {
		for _, tok := range tokens {
			add(tok.Trigger)
			walk(tok.Group)
		}
	}

	for _, members := range set.Groups {
		for _, id := range members {
			add(id)
		}
	}
	for _, r := range set.Rules {
		walk(r.Condition)
		for _, defs := range [][]types.ActionDef{r.WhenTrue, r.WhenFalse} {
			for _, d := range defs {
				for _, id := range d.Targets {
					add(id)
				}
				add(d.Target)
				for _, id := range d.Members {
					add(id)
				}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StubRegistry returns a registry holding an empty component for every ID
// the rule set references.
func StubRegistry(set *types.RuleSet) *components.Registry {
	reg := components.NewRegistry()
	for _, id := range References(set) {
		_ = reg.Add(components.New(id, ""))
	}
	return reg
}

// Check compiles set against a stub registry. It reports syntax, arity and
// action errors without needing the real components.
func Check(set *types.RuleSet) error {
	_, err := Compile(set, StubRegistry(set))
	return err
}
