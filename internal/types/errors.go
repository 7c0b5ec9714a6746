package types

import "errors"

// Sentinel errors for subordinate operations.
var (
	// ErrInvalidArgument indicates a missing type, trigger, target or group,
	// a non-text MATCH value, or a group expression with the wrong arity.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSyntax indicates builder misuse: an operator without a left operand,
	// two leaf expressions without an operator, or an empty expression.
	ErrSyntax = errors.New("syntax error")

	// ErrNestedExpression indicates an expression that contains itself.
	ErrNestedExpression = errors.New("expression contains itself")

	// ErrBuild indicates a rule could not be built.
	ErrBuild = errors.New("build failed")

	// ErrUnknownComponent indicates a rule references a component the
	// registry does not hold.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownGroup indicates an action references an undeclared group.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrUnknownToken indicates an unrecognized condition token in a rule set.
	ErrUnknownToken = errors.New("unknown condition token")

	// ErrUnknownAction indicates an unrecognized action in a rule set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrRuleSetNotFound indicates no rule set exists with the given ID.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrTooManyRules indicates a rule set exceeds MaxRulesPerSet.
	ErrTooManyRules = errors.New("rule set has too many rules")

	// ErrFieldNotFound indicates a bean path could not be resolved.
	ErrFieldNotFound = errors.New("field not found")

	// ErrPathTooDeep indicates a bean path exceeds MaxPathDepth.
	ErrPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrTooManyWildcards indicates a bean path exceeds MaxNestedWildcards.
	ErrTooManyWildcards = errors.New("field path has too many wildcards")

	// ErrInvalidPath indicates a malformed bean path expression.
	ErrInvalidPath = errors.New("invalid field path")
)
