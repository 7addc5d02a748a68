// Package layering merges nested argument trees. Trees are map[string]any
// values whose nested maps are merged key by key, while every other value
// from the stronger tree replaces the weaker one.
package layering

import (
	"reflect"
	"strings"
)

// KeyFunc rewrites keys while merging.
type KeyFunc func(string) string

// UnderscoreSpaces replaces spaces in keys with underscores so keys remain
// addressable through dotted paths.
func UnderscoreSpaces(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}

// MergeLayers composes trees ordered from strongest to weakest, returning a
// new tree that keeps explicit settings from stronger layers while filling any
// missing data from weaker ones. Inputs are never mutated.
func MergeLayers(layers ...map[string]any) map[string]any {
	return MergeLayersWith(nil, layers...)
}

// MergeLayersWith behaves like MergeLayers and rewrites every key with keyFn.
func MergeLayersWith(keyFn KeyFunc, layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		merged = mergeTree(layers[i], merged, keyFn)
	}
	return merged
}

func mergeTree(strong, weak map[string]any, keyFn KeyFunc) map[string]any {
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = cloneValue(value, keyFn)
	}
	for key, value := range strong {
		if keyFn != nil {
			key = keyFn(key)
		}
		strongTree, strongIsTree := asTree(value)
		existing, exists := result[key]
		if exists && strongIsTree {
			if weakTree, ok := asTree(existing); ok {
				result[key] = mergeTree(strongTree, weakTree, keyFn)
				continue
			}
		}
		result[key] = cloneValue(value, keyFn)
	}
	return result
}

// Clone deep copies a tree, including nested maps and slices.
func Clone(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	return cloneValue(tree, nil).(map[string]any)
}

func cloneValue(value any, keyFn KeyFunc) any {
	if tree, ok := asTree(value); ok {
		out := make(map[string]any, len(tree))
		for key, nested := range tree {
			if keyFn != nil {
				key = keyFn(key)
			}
			out[key] = cloneValue(nested, keyFn)
		}
		return out
	}
	switch typed := value.(type) {
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = cloneValue(typed[i], keyFn)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// asTree accepts map[string]any as well as named map types with string keys
// and interface values, as produced by decoders.
func asTree(value any) (map[string]any, bool) {
	if tree, ok := value.(map[string]any); ok {
		return tree, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.Type().Elem().Kind() != reflect.Interface {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
