// internal/rules/coercion.go
package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

/*
 * Value normalization for rule evaluation.
 *
 * Trigger values arrive as whatever the component holds: text from input
 * fields, booleans from check boxes, numbers from numeric fields, times from
 * date fields, or values decoded from a JSON bean. Literals come from Go code
 * or YAML. normalize() classifies both sides so CompareValues() can pick numeric,
 * chronological or textual semantics.
 *
 * Key distinction: nil and "" are both empty. An empty trigger equals an empty
 * literal and never orders against anything.
 *
 * Numeric detection: numbers and numeric strings (after trimming) count as
 * numeric. NaN and infinities are treated as text so "NaN" stays a word.
 */

// normalized holds every view of a value CompareValues() may need.
type normalized struct {
	empty   bool
	numeric bool
	number  float64
	timed   bool
	time    time.Time
	text    string
}

// normalize classifies value for comparison.
func normalize(value any) normalized {
	if value == nil {
		return normalized{empty: true}
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return normalized{empty: true}
		}
		n := normalized{text: v}
		if f, ok := parseNumber(v); ok {
			n.numeric, n.number = true, f
		}
		return n
	case time.Time:
		if v.IsZero() {
			return normalized{empty: true}
		}
		return normalized{timed: true, time: v, text: v.Format(time.RFC3339)}
	case json.Number:
		return normalize(string(v))
	case bool:
		return normalized{text: strconv.FormatBool(v)}
	}

	if f, ok := toFloat64(value); ok {
		return normalized{numeric: true, number: f, text: FormatValue(value)}
	}
	return normalized{text: FormatValue(value)}
}

// parseNumber parses trimmed numeric text. Rejects NaN and infinities.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toFloat64 converts value to float64 if it's a numeric type.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// FormatValue renders a trigger value or literal as text.
// nil renders as the empty string.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
