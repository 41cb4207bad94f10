// FILE: lixenwraith/confz/merge.go
package confz

import (
	"maps"
	"slices"
)

// MergeRecursive merges update into original in place.
// Nested maps are merged field by field; any other value in update replaces
// the value in original. Values taken from update are deep-copied, so later
// merges never write into update.
// It returns a *ContradictionError if a key holds a nested map on one side and
// a plain value on the other. original may be partially updated in that case.
func MergeRecursive(original, update map[string]any) error {
	return mergeAt(original, update, "")
}

func mergeAt(original, update map[string]any, prefix string) error {
	for _, key := range slices.Sorted(maps.Keys(update)) {
		value := update[key]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		existing, exists := original[key]
		if !exists {
			original[key] = cloneValue(value)
			continue
		}

		existingMap, existingIsMap := existing.(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		switch {
		case existingIsMap && valueIsMap:
			if err := mergeAt(existingMap, valueMap, path); err != nil {
				return err
			}
		case existingIsMap != valueIsMap:
			return &ContradictionError{Key: path}
		default:
			original[key] = cloneValue(value)
		}
	}

	return nil
}
