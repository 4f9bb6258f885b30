package util

import (
	"fmt"
	"strings"
)

// SplitPath splits a dot-separated path into its segments. Empty segments
// are rejected by the path operations below, not here.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// GetPath resolves a dot-separated path inside nested string-keyed maps.
// The second return value reports whether the full path exists.
func GetPath(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segs := SplitPath(path)
	cur := any(m)
	for _, seg := range segs {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath writes value at a dot-separated path, creating intermediate maps
// as needed. It fails if an intermediate segment exists but is not a map.
func SetPath(m map[string]any, path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	segs := SplitPath(path)
	node := m
	for _, seg := range segs[:len(segs)-1] {
		if seg == "" {
			return fmt.Errorf("path %q contains an empty segment", path)
		}
		next, ok := node[seg]
		if !ok {
			child := map[string]any{}
			node[seg] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("path %q blocked at %q: %T is not a map", path, seg, next)
		}
		node = child
	}
	last := segs[len(segs)-1]
	if last == "" {
		return fmt.Errorf("path %q contains an empty segment", path)
	}
	node[last] = value
	return nil
}

// DeletePath removes the value at a dot-separated path. It reports whether
// a value was actually removed. Missing intermediate segments are a no-op.
func DeletePath(m map[string]any, path string) bool {
	if path == "" {
		return false
	}
	segs := SplitPath(path)
	node := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			return false
		}
		node = next
	}
	last := segs[len(segs)-1]
	if _, ok := node[last]; !ok {
		return false
	}
	delete(node, last)
	return true
}

// DeepCopyMap returns a recursive copy of a string-keyed map. Nested
// map[string]any values and []any slices are copied; other values are
// shared (they are treated as immutable by convention).
func DeepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepCopyMap(t)
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = deepCopyValue(e)
		}
		return cp
	default:
		return v
	}
}
