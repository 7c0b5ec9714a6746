// Package definition loads declarative rule sets and compiles them into the
// rules runtime by replaying their tokens through the fluent builder.
package definition

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solatis/subordinate/internal/types"
)

// Parse decodes a YAML document holding either a single rule set or a
// top-level rule_sets list.
func Parse(data []byte) ([]*types.RuleSet, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
	}

	if _, ok := probe["rule_sets"]; ok {
		var file types.RuleSetFile
		if err := decodeStrict(data, &file); err != nil {
			return nil, err
		}
		for i, s := range file.RuleSets {
			if s == nil {
				return nil, fmt.Errorf("%w: rule set %d is empty", types.ErrInvalidArgument, i)
			}
		}
		return file.RuleSets, nil
	}

	var set types.RuleSet
	if err := decodeStrict(data, &set); err != nil {
		return nil, err
	}
	return []*types.RuleSet{&set}, nil
}

// decodeStrict rejects unknown fields so typos in rule files surface early.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidArgument, err)
	}
	return nil
}

// Load reads and parses a rule file.
func Load(path string) ([]*types.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	sets, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sets, nil
}

// Marshal encodes a rule set in the form Parse accepts.
func Marshal(set *types.RuleSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Find returns the set with the given ID, or the only set when id is empty.
func Find(sets []*types.RuleSet, id string) (*types.RuleSet, error) {
	if id == "" {
		if len(sets) == 1 {
			return sets[0], nil
		}
		return nil, fmt.Errorf("%w: %d rule sets, choose one by ID", types.ErrInvalidArgument, len(sets))
	}
	for _, s := range sets {
		if string(s.ID) == id || s.Name == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", types.ErrRuleSetNotFound, id)
}
