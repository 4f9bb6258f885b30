package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// Type enumerates the value types a declared field may carry.
type Type string

const (
	// TypeString accepts string values.
	TypeString Type = "string"
	// TypeInteger accepts integer values (including whole float64 values,
	// which commonly arrive from decoded JSON/YAML).
	TypeInteger Type = "integer"
	// TypeNumber accepts any numeric value.
	TypeNumber Type = "number"
	// TypeBoolean accepts boolean values.
	TypeBoolean Type = "boolean"
	// TypeArray accepts slice values.
	TypeArray Type = "array"
	// TypeObject accepts string-keyed map values.
	TypeObject Type = "object"
	// TypeAny accepts any non-nil value.
	TypeAny Type = "any"
)

// Field declares a single schema entry: its expected type, whether it must
// be present, an optional default used when constructing initial state, and
// optional enum/range constraints.
type Field struct {
	Type        Type
	Required    bool
	Default     any
	Enum        []any
	Min         *float64
	Max         *float64
	Description string
}

// Schema maps field names to their declarations.
type Schema map[string]Field

// ValidationError reports a single failed field check.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Defaults builds a value map from all fields that declare a default.
func (s Schema) Defaults() map[string]any {
	out := map[string]any{}
	for name, f := range s {
		if f.Default != nil {
			out[name] = f.Default
		}
	}
	return out
}

// Validate checks the given values against the schema. Declared fields are
// checked for presence (Required), type, enum membership and numeric range.
// Unknown keys bypass checking unless strict is true, in which case any
// unknown key fails validation. Field order in error reporting is
// deterministic (lexicographic) so identical inputs yield identical errors.
func (s Schema) Validate(values map[string]any, strict bool) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := s[name]
		v, present := values[name]
		if !present {
			if f.Required {
				return &ValidationError{Field: name, Message: "required field is missing"}
			}
			continue
		}
		if err := f.check(name, v); err != nil {
			return err
		}
	}

	if strict {
		unknown := make([]string, 0)
		for key := range values {
			if _, declared := s[key]; !declared {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return &ValidationError{
				Field:   unknown[0],
				Message: fmt.Sprintf("unknown keys not allowed in strict mode: %v", unknown),
			}
		}
	}

	return nil
}

func (f Field) check(name string, v any) error {
	if !isValidType(v, f.Type) {
		return &ValidationError{
			Field:   name,
			Value:   v,
			Message: fmt.Sprintf("expected type %s, got %T", f.Type, v),
		}
	}

	if len(f.Enum) > 0 {
		found := false
		for _, allowed := range f.Enum {
			if reflect.DeepEqual(v, allowed) {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Field:   name,
				Value:   v,
				Message: fmt.Sprintf("value %v not in allowed set %v", v, f.Enum),
			}
		}
	}

	if f.Min != nil || f.Max != nil {
		n, ok := asFloat(v)
		if ok {
			if f.Min != nil && n < *f.Min {
				return &ValidationError{
					Field:   name,
					Value:   v,
					Message: fmt.Sprintf("value %v below minimum %v", v, *f.Min),
				}
			}
			if f.Max != nil && n > *f.Max {
				return &ValidationError{
					Field:   name,
					Value:   v,
					Message: fmt.Sprintf("value %v above maximum %v", v, *f.Max),
				}
			}
		}
	}

	return nil
}

func isValidType(v any, t Type) bool {
	if v == nil {
		return false
	}
	switch t {
	case TypeAny, "":
		return true
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeInteger:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return n == float64(int64(n))
		case float32:
			return n == float32(int32(n))
		default:
			return false
		}
	case TypeNumber:
		_, ok := asFloat(v)
		return ok
	case TypeArray:
		k := reflect.ValueOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeObject:
		return reflect.ValueOf(v).Kind() == reflect.Map
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// MinMax is a convenience for building range-constrained fields.
func MinMax(min, max float64) (*float64, *float64) { return &min, &max }
