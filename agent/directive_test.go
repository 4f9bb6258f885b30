package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcell/core"
)

// MockSupervisor records Spawn/Kill forwarding.
type MockSupervisor struct {
	mock.Mock
}

func (m *MockSupervisor) Spawn(spec core.SpawnSpec) (string, error) {
	args := m.Called(spec)
	return args.String(0), args.Error(1)
}

func (m *MockSupervisor) Kill(ref string) error {
	args := m.Called(ref)
	return args.Error(0)
}

func TestApply_SetUpdateDeleteInOrder(t *testing.T) {
	s, _ := New(statusBehavior(), nil)
	s.ResetDirty()

	_, err := Apply(s, []core.Directive{
		core.SetState{Path: "counter", Value: 1},
		core.UpdateState{Path: "counter", Fn: func(cur any) any { return cur.(int) + 10 }},
		core.SetState{Path: "nested.flag", Value: true},
		core.DeleteState{Path: "nested.flag"},
	})
	require.Nil(t, err)

	v, _ := s.Value("counter")
	assert.Equal(t, 11, v)
	_, ok := s.Value("nested.flag")
	assert.False(t, ok)
	assert.True(t, s.Dirty())
}

func TestApply_UpdateSeesNilForMissingPath(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	_, err := Apply(s, []core.Directive{
		core.UpdateState{Path: "fresh", Fn: func(cur any) any {
			assert.Nil(t, cur)
			return "created"
		}},
	})
	require.Nil(t, err)

	v, _ := s.Value("fresh")
	assert.Equal(t, "created", v)
}

func TestApply_ResetRestoresSchemaDefault(t *testing.T) {
	s, _ := New(statusBehavior(), nil)
	s.Set(map[string]any{"status": "running", "scratch": 1})

	_, err := Apply(s, []core.Directive{
		core.ResetState{Path: "status"},
		core.ResetState{Path: "scratch"},
	})
	require.Nil(t, err)

	v, _ := s.Value("status")
	assert.Equal(t, "pending", v)
	_, ok := s.Value("scratch")
	assert.False(t, ok)
}

func TestApply_EnqueueNormalizesShorthand(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	_, err := Apply(s, []core.Directive{
		core.Enqueue{Instructions: []any{
			noopActionNamed(s, "work"),
			core.ActionParams{Action: noopActionNamed(s, "cleanup"), Params: map[string]any{"x": 1}},
		}},
	})
	require.Nil(t, err)

	pending := s.PendingInstructions()
	require.Len(t, pending, 2)
	assert.Equal(t, "work", pending[0].Action.Name())
	assert.Equal(t, "cleanup", pending[1].Action.Name())
}

func TestApply_RegisterDeregister(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	extra := noopAction("extra")
	_, err := Apply(s, []core.Directive{
		core.RegisterAction{Action: extra},
		core.DeregisterAction{Name: "cleanup"},
	})
	require.Nil(t, err)

	assert.Equal(t, "extra", s.ActionNames()[0])
	assert.NotContains(t, s.ActionNames(), "cleanup")
}

func TestApply_SpawnKillForwarded(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	sup := &MockSupervisor{}
	spec := core.SpawnSpec{Name: "child"}
	sup.On("Spawn", spec).Return("ref-1", nil)
	sup.On("Kill", "ref-1").Return(nil)

	_, err := Apply(s, []core.Directive{
		core.Spawn{Spec: spec},
		core.Kill{Ref: "ref-1"},
	}, func(o *ApplyOptions) { o.Supervisor = sup })
	require.Nil(t, err)

	sup.AssertExpectations(t)
}

func TestApply_SpawnWithoutSupervisorFails(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	_, err := Apply(s, []core.Directive{core.Spawn{}})

	require.NotNil(t, err)
	assert.Equal(t, core.KindDirective, err.Kind)
}

func TestApply_PartialFailureKeepsAppliedMutations(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	_, err := Apply(s, []core.Directive{
		core.SetState{Path: "first", Value: 1},
		core.SetState{Path: "scalar", Value: "x"},
		core.SetState{Path: "scalar.child", Value: 2}, // blocked by non-map
		core.SetState{Path: "never", Value: 3},
	})

	require.NotNil(t, err)
	assert.Equal(t, core.KindDirective, err.Kind)
	assert.Equal(t, 2, err.Context["directive_index"])

	// No rollback: earlier directives stay applied, later ones never ran.
	v, _ := s.Value("first")
	assert.Equal(t, 1, v)
	_, ok := s.Value("never")
	assert.False(t, ok)
}

func TestApply_UpdatePanicIsDirectiveError(t *testing.T) {
	s, _ := New(statusBehavior(), nil)

	_, err := Apply(s, []core.Directive{
		core.UpdateState{Path: "x", Fn: func(any) any { panic("boom") }},
	})

	require.NotNil(t, err)
	assert.Equal(t, core.KindDirective, err.Kind)
}
