package schema

import (
	"reflect"
	"strings"
)

// FromStruct derives a Schema from a Go struct using reflection. Field names
// come from `json` tags (falling back to the Go name), descriptions from
// `description` tags. Non-pointer fields without omitempty are required.
// This is a convenience for actions that declare their parameter contract
// as a plain struct.
func FromStruct(structType any) Schema {
	t := reflect.TypeOf(structType)
	if t == nil {
		return Schema{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}
	}

	out := Schema{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if jsonTag != "" {
			if head := strings.Split(jsonTag, ",")[0]; head != "" {
				name = head
			}
		}

		out[name] = Field{
			Type:        goType(field.Type),
			Required:    !hasOmitEmpty(jsonTag) && field.Type.Kind() != reflect.Ptr,
			Description: field.Tag.Get("description"),
		}
	}
	return out
}

func goType(t reflect.Type) Type {
	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Bool:
		return TypeBoolean
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeObject
	case reflect.Ptr:
		return goType(t.Elem())
	default:
		return TypeAny
	}
}

func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}
