package core

import "context"

// SpawnSpec describes a child worker handed to the supervision
// collaborator via a Spawn directive. The run function must respect its
// context; Kill cancels it.
type SpawnSpec struct {
	Name string
	Run  func(ctx context.Context)
}

// Supervisor is the external process-supervision collaborator consumed by
// the directive applier to fulfill Spawn/Kill directives. Everything else
// about spawned workers is opaque to agentcell.
type Supervisor interface {
	Spawn(spec SpawnSpec) (string, error)
	Kill(ref string) error
}
