package agent

import (
	"reflect"
	"sort"
	"strings"

	"github.com/hupe1980/agentcell/core"
)

// Normalize converts planning shorthand into canonical instructions. It
// accepts:
//
//   - a bare core.Action ("run this with no params")
//   - a core.ActionParams pair
//   - a canonical core.Instruction (passed through)
//   - a flat []any or []core.Instruction of any mix of the above
//
// A list containing a nested list is rejected with an execution_error.
// Each instruction merges the caller's shared context and options without
// overwriting instruction-local values already present.
//
// Normalize is pure and deterministic: it never generates IDs or mutates
// its input, so the same input always yields the same canonical output and
// normalizing an already-normal result is a content-preserving no-op.
func Normalize(input any, sharedCtx map[string]any, sharedOpts map[string]any) ([]core.Instruction, *core.Error) {
	switch v := input.(type) {
	case nil:
		return nil, core.NewError(core.KindExecution, "cannot normalize nil instruction input")
	case []core.Instruction:
		out := make([]core.Instruction, 0, len(v))
		for _, in := range v {
			n, err := normalizeOne(in, sharedCtx, sharedOpts)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []any:
		out := make([]core.Instruction, 0, len(v))
		for i, item := range v {
			if isList(item) {
				return nil, core.Errorf(core.KindExecution,
					"nested instruction list at index %d: lists must be flat", i)
			}
			n, err := normalizeOne(item, sharedCtx, sharedOpts)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := normalizeOne(v, sharedCtx, sharedOpts)
		if err != nil {
			return nil, err
		}
		return []core.Instruction{n}, nil
	}
}

func normalizeOne(item any, sharedCtx map[string]any, sharedOpts map[string]any) (core.Instruction, *core.Error) {
	var in core.Instruction

	switch v := item.(type) {
	case core.Instruction:
		in = v
	case *core.Instruction:
		if v == nil {
			return core.Instruction{}, core.NewError(core.KindExecution, "cannot normalize nil instruction")
		}
		in = *v
	case core.ActionParams:
		in = core.Instruction{Action: v.Action, Params: v.Params}
	case core.Action:
		in = core.Instruction{Action: v}
	default:
		return core.Instruction{}, core.Errorf(core.KindExecution,
			"cannot normalize instruction input of type %T", item)
	}

	if in.Action == nil {
		return core.Instruction{}, core.NewError(core.KindExecution, "instruction has no action")
	}

	in.Params = copyOrEmpty(in.Params)
	in.Context = mergeDefaults(in.Context, sharedCtx)
	in.Options = mergeDefaults(in.Options, sharedOpts)

	return in, nil
}

// mergeDefaults copies local and fills in shared keys that are not already
// present. Instruction-local values always win.
func mergeDefaults(local map[string]any, shared map[string]any) map[string]any {
	out := copyOrEmpty(local)
	for k, v := range shared {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

func copyOrEmpty(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func isList(item any) bool {
	if item == nil {
		return false
	}
	switch reflect.TypeOf(item).Kind() {
	case reflect.Slice, reflect.Array:
		_, isBytes := item.([]byte)
		return !isBytes
	default:
		return false
	}
}

// ValidateAllowedActions checks every instruction's action against the
// allowed set, returning a config_error that enumerates all disallowed
// actions. It succeeds only if every action is allowed.
func ValidateAllowedActions(instructions []core.Instruction, allowed []core.Action) *core.Error {
	allowedNames := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedNames[a.Name()] = struct{}{}
	}

	seen := map[string]struct{}{}
	var disallowed []string
	for _, in := range instructions {
		name := in.Action.Name()
		if _, ok := allowedNames[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		disallowed = append(disallowed, name)
	}

	if len(disallowed) == 0 {
		return nil
	}

	sort.Strings(disallowed)
	return core.Errorf(core.KindConfig,
		"actions not registered with this agent: %s", strings.Join(disallowed, ", ")).
		WithContext("disallowed", disallowed)
}
