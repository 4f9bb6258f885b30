package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcell/core"
)

func TestInMemory_RegisterLookup(t *testing.T) {
	r := NewInMemory()

	require.NoError(t, r.Register(core.BehaviorInfo{Name: "worker", ActionNames: []string{"work"}}))

	info, ok := r.Lookup("worker")
	require.True(t, ok)
	assert.Equal(t, []string{"work"}, info.ActionNames)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestInMemory_RegisterReplaces(t *testing.T) {
	r := NewInMemory()

	require.NoError(t, r.Register(core.BehaviorInfo{Name: "worker", Description: "v1"}))
	require.NoError(t, r.Register(core.BehaviorInfo{Name: "worker", Description: "v2"}))

	info, _ := r.Lookup("worker")
	assert.Equal(t, "v2", info.Description)
}

func TestInMemory_EmptyNameRejected(t *testing.T) {
	r := NewInMemory()

	err := r.Register(core.BehaviorInfo{})
	require.Error(t, err)
	assert.Equal(t, core.KindConfig, core.KindOf(err))
}

func TestInMemory_Names(t *testing.T) {
	r := NewInMemory()
	r.Register(core.BehaviorInfo{Name: "beta"})
	r.Register(core.BehaviorInfo{Name: "alpha"})

	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	r.Deregister("alpha")
	assert.Equal(t, []string{"beta"}, r.Names())
}
