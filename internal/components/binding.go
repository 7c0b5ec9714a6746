// internal/components/binding.go
package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/solatis/subordinate/internal/types"
)

/*
 * Bean property paths.
 *
 * A component may be bound to a property of the bean backing the form, e.g.
 * "address.lines[0]" or "orders[*].total". Before rules run, the bound value
 * is read from the JSON bean and becomes the trigger value.
 *
 * Grammar:
 *   path    = segment { "." segment }
 *   segment = ( key | "*" ) { "[" ( index | "*" ) "]" }
 *
 * Wildcards use ANY semantics: the first element (array order, or sorted key
 * order for objects) whose remaining path resolves wins. Limits are
 * MaxPathDepth segments and MaxNestedWildcards wildcards per path.
 */

// ParsePath parses a bean property path expression.
func ParsePath(expr string) ([]types.PathSegment, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty path", types.ErrInvalidPath)
	}

	var path []types.PathSegment
	for _, part := range strings.Split(expr, ".") {
		segs, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", types.ErrInvalidPath, expr, err)
		}
		path = append(path, segs...)
	}

	if err := checkLimits(path); err != nil {
		return nil, err
	}
	return path, nil
}

// parseSegment parses one dot-separated part into a key segment followed by
// zero or more bracket segments.
func parseSegment(part string) ([]types.PathSegment, error) {
	key := part
	rest := ""
	if i := strings.IndexByte(part, '['); i >= 0 {
		key, rest = part[:i], part[i:]
	}
	if key == "" {
		return nil, fmt.Errorf("missing key")
	}

	var segs []types.PathSegment
	if key == "*" {
		segs = append(segs, types.PathSegment{Wildcard: true})
	} else {
		segs = append(segs, types.PathSegment{Key: key})
	}

	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("unexpected %q", rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated index")
		}
		inner := rest[1:end]
		rest = rest[end+1:]

		if inner == "*" {
			segs = append(segs, types.PathSegment{Wildcard: true})
			continue
		}
		idx, err := strconv.Atoi(inner)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("bad index %q", inner)
		}
		segs = append(segs, types.PathSegment{Index: idx, IsIndex: true})
	}
	return segs, nil
}

func checkLimits(path []types.PathSegment) error {
	if len(path) > types.MaxPathDepth {
		return types.ErrPathTooDeep
	}
	wildcards := 0
	for _, seg := range path {
		if seg.Wildcard {
			wildcards++
		}
	}
	if wildcards > types.MaxNestedWildcards {
		return types.ErrTooManyWildcards
	}
	return nil
}

// FormatPath renders path in the syntax ParsePath accepts.
func FormatPath(path []types.PathSegment) string {
	var b strings.Builder
	for i, seg := range path {
		switch {
		case seg.IsIndex:
			b.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		case seg.Wildcard && i > 0:
			b.WriteString("[*]")
		case seg.Wildcard:
			b.WriteString("*")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

// Resolution is the outcome of resolving a path.
type Resolution struct {
	Value any                 // json.Number for numbers
	Taken []types.PathSegment // path with wildcards replaced by the matching key or index
}

// Resolve decodes bean and returns the value at path.
// Returns ErrFieldNotFound if the path does not exist in the bean.
func Resolve(path []types.PathSegment, bean json.RawMessage) (Resolution, error) {
	if err := checkLimits(path); err != nil {
		return Resolution{}, err
	}
	decoded, err := decodeBean(bean)
	if err != nil {
		return Resolution{}, err
	}
	return resolve(path, decoded, nil)
}

func decodeBean(bean json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(bean))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: bean is not valid JSON: %v", types.ErrInvalidArgument, err)
	}
	return decoded, nil
}

// resolve walks current along path, recording the concrete segments taken.
func resolve(path []types.PathSegment, current any, taken []types.PathSegment) (Resolution, error) {
	if len(path) == 0 {
		return Resolution{Value: current, Taken: taken}, nil
	}
	seg, remaining := path[0], path[1:]

	switch node := current.(type) {
	case map[string]any:
		if seg.Wildcard {
			keys := make([]string, 0, len(node))
			for k := range node {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				step := append(append([]types.PathSegment(nil), taken...), types.PathSegment{Key: k})
				if res, err := resolve(remaining, node[k], step); err == nil {
					return res, nil
				}
			}
			return Resolution{}, types.ErrFieldNotFound
		}
		if seg.IsIndex {
			return Resolution{}, types.ErrFieldNotFound
		}
		v, ok := node[seg.Key]
		if !ok {
			return Resolution{}, types.ErrFieldNotFound
		}
		return resolve(remaining, v, append(taken, seg))

	case []any:
		if seg.Wildcard {
			for i, elem := range node {
				step := append(append([]types.PathSegment(nil), taken...), types.PathSegment{Index: i, IsIndex: true})
				if res, err := resolve(remaining, elem, step); err == nil {
					return res, nil
				}
			}
			return Resolution{}, types.ErrFieldNotFound
		}
		if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
			return Resolution{}, types.ErrFieldNotFound
		}
		return resolve(remaining, node[seg.Index], append(taken, seg))

	default:
		// nil or scalar with path remaining
		return Resolution{}, types.ErrFieldNotFound
	}
}
