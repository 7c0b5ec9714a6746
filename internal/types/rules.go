// internal/types/rules.go
package types

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

/*
 * Declarative rule set types.
 *
 * A rule set is a list of subordinate rules authored as YAML. Each rule is a
 * condition (a token stream replaying the fluent builder calls in order) and
 * two ordered action lists. internal/definition compiles rule sets against a
 * component registry by driving internal/builder one token at a time.
 *
 * Token forms:
 *   - "and" / "or"                       operator
 *   - {equals: {trigger: id, value: v}}  compare leaf (any compare key)
 *   - {not: [tokens]}                    negated sub-expression (leaf)
 *   - {and: [tokens]} / {or: [tokens]}   operator followed by a grouped
 *                                        sub-expression
 *
 * Action forms:
 *   - {disable: [id, ...]} or {disable: id}           one action per target
 *   - {show_in: {target: id, group: name}}            named group
 *   - {show_in: {target: id, members: [id, ...]}}     inline group
 */

// Compare token keys, in builder method order.
const (
	CompareEquals              = "equals"
	CompareNotEquals           = "notEquals"
	CompareLessThan            = "lessThan"
	CompareLessThanOrEquals    = "lessThanOrEquals"
	CompareGreaterThan         = "greaterThan"
	CompareGreaterThanOrEquals = "greaterThanOrEquals"
	CompareMatches             = "matches"
)

// CompareKeys lists every compare token key.
var CompareKeys = []string{
	CompareEquals,
	CompareNotEquals,
	CompareLessThan,
	CompareLessThanOrEquals,
	CompareGreaterThan,
	CompareGreaterThanOrEquals,
	CompareMatches,
}

// Action keys.
const (
	ActionKeyDisable   = "disable"
	ActionKeyEnable    = "enable"
	ActionKeyHide      = "hide"
	ActionKeyShow      = "show"
	ActionKeyMandatory = "mandatory"
	ActionKeyOptional  = "optional"
	ActionKeyShowIn    = "show_in"
	ActionKeyHideIn    = "hide_in"
	ActionKeyEnableIn  = "enable_in"
	ActionKeyDisableIn = "disable_in"
)

// PlainActionKeys apply to each listed target.
var PlainActionKeys = []string{
	ActionKeyDisable, ActionKeyEnable, ActionKeyHide, ActionKeyShow, ActionKeyMandatory, ActionKeyOptional,
}

// GroupActionKeys apply to one target within a group.
var GroupActionKeys = []string{
	ActionKeyShowIn, ActionKeyHideIn, ActionKeyEnableIn, ActionKeyDisableIn,
}

// TokenKind identifies one fluent builder call.
type TokenKind int

const (
	TokenUnspecified TokenKind = iota
	TokenCompare
	TokenAnd
	TokenOr
	TokenNot
)

// Token is one step of a condition.
// Group holds the sub-expression of a not token or of a grouped and/or.
type Token struct {
	Kind    TokenKind
	Compare string // compare key (TokenCompare only)
	Trigger string // trigger component ID (TokenCompare only)
	Value   any    // literal compared against (TokenCompare only)
	Group   []Token
}

// ActionDef is one recorded action.
type ActionDef struct {
	Type    string   // one of PlainActionKeys or GroupActionKeys
	Targets []string // plain actions
	Target  string   // group actions
	Group   string   // named group declared on the rule set (group actions)
	Members []string // inline group members (group actions)
}

// RuleDefinition is a single subordinate rule.
type RuleDefinition struct {
	Name      string      `yaml:"name,omitempty"`
	Condition []Token     `yaml:"condition"`
	WhenTrue  []ActionDef `yaml:"when_true,omitempty"`
	WhenFalse []ActionDef `yaml:"when_false,omitempty"`
}

// RuleSet is an ordered collection of rules sharing named groups.
type RuleSet struct {
	ID     RuleSetID           `yaml:"id,omitempty"`
	Name   string              `yaml:"name,omitempty"`
	Groups map[string][]string `yaml:"groups,omitempty"`
	Rules  []RuleDefinition    `yaml:"rules"`
}

// RuleSetFile is the top-level YAML document.
type RuleSetFile struct {
	RuleSets []*RuleSet `yaml:"rule_sets"`
}

type compareBody struct {
	Trigger string `yaml:"trigger"`
	Value   any    `yaml:"value"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Token) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Value {
		case "and":
			*t = Token{Kind: TokenAnd}
		case "or":
			*t = Token{Kind: TokenOr}
		default:
			return fmt.Errorf("%w: %q at line %d", ErrUnknownToken, node.Value, node.Line)
		}
		return nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("%w: token at line %d must have exactly one key", ErrUnknownToken, node.Line)
		}
		key, body := node.Content[0].Value, node.Content[1]
		switch key {
		case "not", "and", "or":
			var group []Token
			if err := body.Decode(&group); err != nil {
				return err
			}
			kind := TokenNot
			if key == "and" {
				kind = TokenAnd
			} else if key == "or" {
				kind = TokenOr
			}
			*t = Token{Kind: kind, Group: group}
			return nil
		}
		if !slices.Contains(CompareKeys, key) {
			return fmt.Errorf("%w: %q at line %d", ErrUnknownToken, key, node.Line)
		}
		var c compareBody
		if err := body.Decode(&c); err != nil {
			return err
		}
		*t = Token{Kind: TokenCompare, Compare: key, Trigger: c.Trigger, Value: c.Value}
		return nil

	default:
		return fmt.Errorf("%w: unsupported node at line %d", ErrUnknownToken, node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (t Token) MarshalYAML() (interface{}, error) {
	switch t.Kind {
	case TokenCompare:
		return map[string]compareBody{t.Compare: {Trigger: t.Trigger, Value: t.Value}}, nil
	case TokenAnd, TokenOr:
		key := "and"
		if t.Kind == TokenOr {
			key = "or"
		}
		if t.Group == nil {
			return key, nil
		}
		return map[string][]Token{key: t.Group}, nil
	case TokenNot:
		return map[string][]Token{"not": t.Group}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownToken, t.Kind)
	}
}

type groupActionBody struct {
	Target  string   `yaml:"target"`
	Group   string   `yaml:"group,omitempty"`
	Members []string `yaml:"members,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *ActionDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: action at line %d must have exactly one key", ErrUnknownAction, node.Line)
	}
	key, body := node.Content[0].Value, node.Content[1]

	switch {
	case slices.Contains(PlainActionKeys, key):
		var targets []string
		if body.Kind == yaml.ScalarNode {
			targets = []string{body.Value}
		} else if err := body.Decode(&targets); err != nil {
			return err
		}
		*a = ActionDef{Type: key, Targets: targets}
		return nil

	case slices.Contains(GroupActionKeys, key):
		var g groupActionBody
		if err := body.Decode(&g); err != nil {
			return err
		}
		*a = ActionDef{Type: key, Target: g.Target, Group: g.Group, Members: g.Members}
		return nil

	default:
		return fmt.Errorf("%w: %q at line %d", ErrUnknownAction, key, node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (a ActionDef) MarshalYAML() (interface{}, error) {
	switch {
	case slices.Contains(PlainActionKeys, a.Type):
		return map[string][]string{a.Type: a.Targets}, nil
	case slices.Contains(GroupActionKeys, a.Type):
		return map[string]groupActionBody{a.Type: {Target: a.Target, Group: a.Group, Members: a.Members}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}
