// Package types provides domain models shared across subordinate components.
//
// Wire-format agnostic: the rule runtime, the builder and the storage layer
// exchange these structures; conversion to gRPC messages happens in the api
// package. YAML tags make rule sets and component states authorable as files.
package types

// RuleSetID represents a UUIDv7 rule set identifier.
// String alias enables type safety while keeping plain string serialization.
type RuleSetID string

// EvaluationID represents a UUIDv7 identifier of one ApplyControls call.
type EvaluationID string

// ComponentState is the externally visible state of one UI component.
// Value is the trigger value; the three flags are the target state slots.
// Bind optionally names a bean property path the value is read from.
type ComponentState struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	Value     any    `yaml:"value,omitempty" json:"value,omitempty"`
	Disabled  bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Hidden    bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Mandatory bool   `yaml:"mandatory,omitempty" json:"mandatory,omitempty"`
	Bind      string `yaml:"bind,omitempty" json:"bind,omitempty"`
}

// PathSegment represents one component of a bean property path.
// String for object keys, int for array indices, wildcard for array expansion.
type PathSegment struct {
	Key      string // object key (mutually exclusive with Index/Wildcard)
	Index    int    // array index (mutually exclusive with Key/Wildcard)
	IsIndex  bool   // disambiguates Index=0 from unset
	Wildcard bool   // true = wildcard segment
}

// Resource limits enforced when resolving bean paths and loading rule sets.
const (
	// MaxPathDepth prevents stack overflow during recursive path resolution.
	MaxPathDepth = 16

	// MaxNestedWildcards limits wildcard expansion in a single bean path.
	MaxNestedWildcards = 2

	// MaxRulesPerSet bounds the number of rules compiled per request.
	MaxRulesPerSet = 1024

	// MaxComponentsPerRequest bounds the registry size accepted by the API.
	MaxComponentsPerRequest = 4096
)
