package definition

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/solatis/subordinate/internal/components"
	"github.com/solatis/subordinate/internal/types"
)

// RuleOutcome reports one executed rule.
type RuleOutcome struct {
	Rule           string `json:"rule" yaml:"rule"`
	Condition      string `json:"condition" yaml:"condition"`
	Result         bool   `json:"result" yaml:"result"`
	ActionsApplied int    `json:"actions_applied" yaml:"actions_applied"`
}

// Result is the component state after applying a rule set.
type Result struct {
	Components     []types.ComponentState `json:"components" yaml:"components"`
	Outcomes       []RuleOutcome          `json:"outcomes" yaml:"outcomes"`
	ActionsApplied int                    `json:"actions_applied" yaml:"actions_applied"`
}

// Apply builds a registry from states, binds bean (if any) into it,
// compiles set against the registry and applies every rule once.
// states are not modified.
func Apply(set *types.RuleSet, states []types.ComponentState, bean json.RawMessage) (*Result, error) {
	reg, err := components.NewRegistryFromStates(states)
	if err != nil {
		return nil, err
	}
	if len(bean) > 0 {
		if _, err := reg.BindBean(bean); err != nil {
			return nil, fmt.Errorf("bind bean: %w", err)
		}
	}

	control, err := Compile(set, reg)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, out := range control.ApplyTheControls() {
		name := out.Rule.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		res.Outcomes = append(res.Outcomes, RuleOutcome{
			Rule:           name,
			Condition:      out.Rule.Condition.String(),
			Result:         out.Result,
			ActionsApplied: out.ActionsApplied,
		})
		res.ActionsApplied += out.ActionsApplied
	}
	res.Components = reg.Snapshot()
	return res, nil
}
