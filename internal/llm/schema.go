package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// JSONSchema describes the type of v as a JSON Schema object.
// Struct fields follow their json tags; pointer and omitempty fields are optional,
// and `description` / `enum` tags are copied into the field schema.
// A struct that contains itself, such as a TOC section with subsections,
// is emitted once under "$defs" and referenced with "$ref".
func JSONSchema(v any) (map[string]any, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate schema from nil")
	}
	b := &schemaBuilder{
		defs:      make(map[string]any),
		visiting:  make(map[reflect.Type]bool),
		recursive: make(map[reflect.Type]bool),
	}
	schema := b.build(reflect.TypeOf(v))
	if len(b.defs) > 0 {
		schema["$defs"] = b.defs
	}
	return schema, nil
}

type schemaBuilder struct {
	defs      map[string]any
	visiting  map[reflect.Type]bool
	recursive map[reflect.Type]bool
}

func ref(t reflect.Type) map[string]any {
	return map[string]any{"$ref": "#/$defs/" + t.Name()}
}

func (b *schemaBuilder) build(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		if b.visiting[t] {
			b.recursive[t] = true
			return ref(t)
		}
		b.visiting[t] = true
		schema := b.object(t)
		delete(b.visiting, t)
		if b.recursive[t] {
			b.defs[t.Name()] = schema
			return ref(t)
		}
		return schema
	case reflect.Map:
		schema := map[string]any{"type": "object"}
		if t.Key().Kind() == reflect.String {
			schema["additionalProperties"] = b.build(t.Elem())
		}
		return schema
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": b.build(t.Elem())}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Interface:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

func (b *schemaBuilder) object(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if !field.IsExported() || tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}

		fs := b.build(field.Type)
		if _, isRef := fs["$ref"]; !isRef {
			if desc := field.Tag.Get("description"); desc != "" {
				fs["description"] = desc
			}
			if enum := field.Tag.Get("enum"); enum != "" {
				fs["enum"] = strings.Split(enum, ",")
			}
		}
		properties[name] = fs

		if field.Type.Kind() != reflect.Ptr && !strings.Contains(","+opts+",", ",omitempty,") {
			required = append(required, name)
		}
	}

	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// BuildSchemaPrompt renders the output-format instructions appended to a prompt
func BuildSchemaPrompt(schema *ResponseSchema) string {
	if schema == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n## Output Format\n")
	if schema.Description != "" {
		sb.WriteString(schema.Description + "\n\n")
	}
	sb.WriteString("Respond with JSON matching this schema:\n")
	if js, err := JSONSchema(schema.Schema); err == nil {
		if data, err := json.MarshalIndent(js, "", "  "); err == nil {
			sb.WriteString("```json\n" + string(data) + "\n```\n")
		}
	}
	if schema.Strict {
		sb.WriteString("\nIMPORTANT: Your response MUST be a single JSON value that strictly follows this schema, " +
			"with no text before or after it.\n")
	} else {
		sb.WriteString("\nMake sure the JSON in your response follows this schema.\n")
	}
	return sb.String()
}

// ExtractJSON returns the outermost JSON object or array in content,
// skipping markdown fences or prose around it
func ExtractJSON(content string) (string, error) {
	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		if end := strings.LastIndex(content, "}"); end > objStart {
			return content[objStart : end+1], nil
		}
	}
	if arrStart != -1 {
		if end := strings.LastIndex(content, "]"); end > arrStart {
			return content[arrStart : end+1], nil
		}
	}
	return "", fmt.Errorf("no valid JSON found in content")
}

// ParseResponseJSON extracts and decodes the JSON in content into target
func ParseResponseJSON(content string, target any) error {
	js, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(js), target)
}
