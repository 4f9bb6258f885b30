package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPath(t *testing.T) {
	m := map[string]any{
		"top": "value",
		"nested": map[string]any{
			"inner": map[string]any{"leaf": 42},
		},
	}

	v, ok := GetPath(m, "top")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	v, ok = GetPath(m, "nested.inner.leaf")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = GetPath(m, "nested.missing")
	assert.False(t, ok)

	_, ok = GetPath(m, "top.not_a_map")
	assert.False(t, ok)

	_, ok = GetPath(m, "")
	assert.False(t, ok)
}

func TestSetPath(t *testing.T) {
	m := map[string]any{}

	assert.NoError(t, SetPath(m, "a.b.c", 1))
	v, ok := GetPath(m, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Overwrite leaf.
	assert.NoError(t, SetPath(m, "a.b.c", 2))
	v, _ = GetPath(m, "a.b.c")
	assert.Equal(t, 2, v)

	// Blocked by a non-map intermediate.
	assert.NoError(t, SetPath(m, "scalar", "x"))
	assert.Error(t, SetPath(m, "scalar.child", 1))

	assert.Error(t, SetPath(m, "", 1))
	assert.Error(t, SetPath(m, "a..b", 1))
}

func TestDeletePath(t *testing.T) {
	m := map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
	}

	assert.True(t, DeletePath(m, "a.b"))
	_, ok := GetPath(m, "a.b")
	assert.False(t, ok)

	// Sibling untouched.
	v, ok := GetPath(m, "a.c")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.False(t, DeletePath(m, "a.b"))
	assert.False(t, DeletePath(m, "missing.deep"))
}

func TestDeepCopyMap(t *testing.T) {
	src := map[string]any{
		"nested": map[string]any{"x": 1},
		"list":   []any{map[string]any{"y": 2}},
	}

	cp := DeepCopyMap(src)
	assert.Equal(t, src, cp)

	cp["nested"].(map[string]any)["x"] = 99
	cp["list"].([]any)[0].(map[string]any)["y"] = 99
	assert.Equal(t, 1, src["nested"].(map[string]any)["x"])
	assert.Equal(t, 2, src["list"].([]any)[0].(map[string]any)["y"])

	assert.Nil(t, DeepCopyMap(nil))
}
