// FILE: lixenwraith/confz/helper.go
package confz

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Nest converts a flat map into a nested map by splitting keys on sep.
// A key starting with sep is kept as a literal key. Keys without sep are kept
// at the top level.
// It returns a *ContradictionError if a key is both a value and a prefix of
// another key, e.g. "a" and "a.b".
func Nest(flat map[string]any, sep string) (map[string]any, error) {
	nested := make(map[string]any, len(flat))

	// Sorted keys make the result, and the reported conflict, independent of map order
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		value := flat[key]

		if sep == "" || !strings.Contains(key, sep) || strings.HasPrefix(key, sep) {
			if err := setLeaf(nested, key, key, value); err != nil {
				return nil, err
			}
			continue
		}

		segments := strings.Split(key, sep)
		current := nested
		for i, segment := range segments[:len(segments)-1] {
			next, exists := current[segment]
			if !exists {
				m := make(map[string]any)
				current[segment] = m
				current = m
				continue
			}
			m, isMap := next.(map[string]any)
			if !isMap {
				return nil, &ContradictionError{Key: strings.Join(segments[:i+1], ".")}
			}
			current = m
		}

		if err := setLeaf(current, segments[len(segments)-1], key, value); err != nil {
			return nil, err
		}
	}

	return nested, nil
}

// setLeaf stores value under key, merging with an existing nested map when both are maps.
func setLeaf(m map[string]any, key, fullKey string, value any) error {
	existing, exists := m[key]
	if !exists {
		m[key] = cloneValue(value)
		return nil
	}

	existingMap, existingIsMap := existing.(map[string]any)
	valueMap, valueIsMap := value.(map[string]any)
	switch {
	case existingIsMap && valueIsMap:
		return mergeAt(existingMap, valueMap, fullKey)
	case existingIsMap || valueIsMap:
		return &ContradictionError{Key: fullKey}
	default:
		m[key] = value
		return nil
	}
}

// Flatten converts a nested map to a flat map with sep-joined paths.
// Empty nested maps are kept as leaf values so that Nest restores them.
func Flatten(nested map[string]any, sep string) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, nested, "", sep)
	return flat
}

func flattenInto(flat, nested map[string]any, prefix, sep string) {
	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + sep + key
		}

		if m, isMap := value.(map[string]any); isMap && len(m) > 0 {
			flattenInto(flat, m, path, sep)
		} else {
			flat[path] = value
		}
	}
}

// cloneValue creates a deep copy of maps and slices; other values are returned as is.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

// normalizeValue converts parser output into the accumulator's value model:
// map[string]any for mappings, []any for sequences, int64/float64 for JSON numbers.
func normalizeValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return val
	}
}

// navigateToPath traverses nested map to reach the specified dot-separated path
func navigateToPath(nested map[string]any, path string) (any, bool) {
	path = strings.Trim(path, ".")
	if path == "" {
		return nested, true
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}
