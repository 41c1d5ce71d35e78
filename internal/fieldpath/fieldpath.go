// Package fieldpath resolves dot-delimited paths against loosely-typed
// document data. Absence of a path segment is a normal outcome, not an
// error, so callers can treat "field not available" as a business condition.
package fieldpath

import "strings"

// Resolve walks root segment by segment and returns the value at the end of
// the path. The boolean result is false the moment any segment is missing or
// an intermediate value is nil or not a map.
func Resolve(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}

	var current any = root
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, exists := node[segment]
		if !exists || value == nil {
			return nil, false
		}
		current = value
	}

	return current, true
}
