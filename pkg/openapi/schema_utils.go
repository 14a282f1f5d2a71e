package openapi

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
	rawType  = reflect.TypeFor[json.RawMessage]()
)

// GenerateSchema reflects a request or response model into a schema.
// Struct fields follow their json tags; gin binding rules (required, oneof,
// min, max) become schema constraints.
func GenerateSchema(v any) *Schema {
	if v == nil {
		return nil
	}
	return schemaFor(reflect.TypeOf(v), map[reflect.Type]bool{})
}

func schemaFor(t reflect.Type, seen map[reflect.Type]bool) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case uuidType:
		return &Schema{Type: "string", Format: "uuid"}
	case rawType:
		return &Schema{Type: "object"}
	}

	switch t.Kind() {
	case reflect.Struct:
		if seen[t] {
			return &Schema{Type: "object"}
		}
		seen[t] = true
		defer delete(seen, t)

		s := &Schema{Type: "object", Properties: map[string]*Schema{}}
		addFields(s, t, seen)
		return s
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: schemaFor(t.Elem(), seen)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: schemaFor(t.Elem(), seen)}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Interface:
		return &Schema{}
	default:
		return &Schema{Type: "string"}
	}
}

func addFields(s *Schema, t reflect.Type, seen map[reflect.Type]bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		name, omit := jsonName(f)
		if omit {
			continue
		}

		// Untagged embedded structs are flattened the way encoding/json does.
		if f.Anonymous && name == "" {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				addFields(s, et, seen)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}

		prop := schemaFor(f.Type, seen)
		if applyBinding(prop, f.Tag.Get("binding")) {
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = prop
	}
}

func jsonName(f reflect.StructField) (name string, omit bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

// applyBinding copies validator rules onto prop and reports whether the
// field is required
func applyBinding(prop *Schema, tag string) (required bool) {
	if tag == "" {
		return false
	}
	for rule := range strings.SplitSeq(tag, ",") {
		key, arg, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			required = true
		case "oneof":
			prop.Enum = strings.Fields(arg)
		case "min", "max":
			n, err := strconv.Atoi(arg)
			if err != nil {
				continue
			}
			bound := &n
			switch {
			case prop.Type == "string" && key == "min":
				prop.MinLength = bound
			case prop.Type == "string":
				prop.MaxLength = bound
			case prop.Type == "array" && key == "min":
				prop.MinItems = bound
			case prop.Type == "array":
				prop.MaxItems = bound
			}
		}
	}
	return required
}
