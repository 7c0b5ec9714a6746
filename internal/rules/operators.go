// internal/rules/operators.go
package rules

import (
	"regexp"
	"strings"
)

/*
 * Operator comparison logic.
 *
 * Implements the 7 subordinate comparison operators. Trigger values come from
 * UI components and are mostly text, so both sides are normalized via
 * normalize() before comparison.
 *
 * Operators:
 *   - eq/neq: Equality; two empty values are equal
 *   - lt/lte/gt/gte: Ordering; false when either side is empty
 *   - match: Regular expression search on the text form of the value
 *
 * Ordering rules: numeric when both sides are numbers, chronological when
 * both sides are times, lexical otherwise.
 */

// Operator identifies the comparison a Compare condition performs.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpMatch
)

// Symbol returns the token used when rendering a comparison.
func (op Operator) Symbol() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpMatch:
		return " matches "
	default:
		return "?"
	}
}

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpMatch:
		return "match"
	default:
		return "unspecified"
	}
}

// CompareValues applies the operator to compare value against target.
// Match expects target to be a compiled *regexp.Regexp or a pattern string.
//
// Text that parses as a number compares numerically whatever the field
// holds, so "01", "1.0" and "1e0" all equal "1". Use Match for text that
// must compare exactly, such as postcodes with leading zeros.
func CompareValues(op Operator, value, target any) bool {
	switch op {
	case OpEq:
		return compareEqual(normalize(value), normalize(target))
	case OpNeq:
		return !compareEqual(normalize(value), normalize(target))
	case OpLt:
		c, ok := compareOrdered(normalize(value), normalize(target))
		return ok && c < 0
	case OpLte:
		c, ok := compareOrdered(normalize(value), normalize(target))
		return ok && c <= 0
	case OpGt:
		c, ok := compareOrdered(normalize(value), normalize(target))
		return ok && c > 0
	case OpGte:
		c, ok := compareOrdered(normalize(value), normalize(target))
		return ok && c >= 0
	case OpMatch:
		return compareMatch(normalize(value), target)
	default:
		return false
	}
}

// compareEqual performs equality comparison on normalized values.
func compareEqual(a, b normalized) bool {
	if a.empty || b.empty {
		return a.empty && b.empty
	}
	if a.numeric && b.numeric {
		return a.number == b.number
	}
	if a.timed && b.timed {
		return a.time.Equal(b.time)
	}
	return a.text == b.text
}

// compareOrdered performs three-way comparison (-1/0/1).
// Returns ok=false when either side is empty.
func compareOrdered(a, b normalized) (int, bool) {
	if a.empty || b.empty {
		return 0, false
	}
	switch {
	case a.numeric && b.numeric:
		switch {
		case a.number < b.number:
			return -1, true
		case a.number > b.number:
			return 1, true
		default:
			return 0, true
		}
	case a.timed && b.timed:
		return a.time.Compare(b.time), true
	default:
		return strings.Compare(a.text, b.text), true
	}
}

// compareMatch searches the text form of value for the pattern.
// An empty value is matched as the empty string.
func compareMatch(value normalized, pattern any) bool {
	var re *regexp.Regexp
	switch p := pattern.(type) {
	case *regexp.Regexp:
		re = p
	case string:
		compiled, err := regexp.Compile(p)
		if err != nil {
			return false
		}
		re = compiled
	default:
		return false
	}
	return re.MatchString(value.text)
}
