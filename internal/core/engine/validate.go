package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/custodia-labs/hub/internal/core/domain"
)

const argsSchemaURL = "urn:hub:args"

var printer = message.NewPrinter(language.English)

// ValidateArgs checks args against schema. Top-level arguments beyond the
// schema are tolerated; nested structs are closed unless declared open.
// Null members count as absent.
func ValidateArgs(schema domain.Schema, args map[string]any) error {
	compiled, err := CompileSchema(schema)
	if err != nil {
		return err
	}

	instance, err := toJSONValue(pruneNulls(args))
	if err != nil {
		return &domain.ValidationError{Reason: err.Error()}
	}
	if instance == nil {
		instance = map[string]any{}
	}

	err = compiled.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &domain.ValidationError{Reason: err.Error()}
	}
	return toValidationError(verr)
}

// CompileSchema converts a domain schema into a compiled JSON Schema.
func CompileSchema(schema domain.Schema) (*jsonschema.Schema, error) {
	doc, err := toJSONValue(SchemaDocument(schema, true))
	if err != nil {
		return nil, fmt.Errorf("encode args schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(argsSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("load args schema: %w", err)
	}
	compiled, err := c.Compile(argsSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile args schema: %w", err)
	}
	return compiled, nil
}

// SchemaDocument renders a domain schema as a JSON Schema object document.
func SchemaDocument(schema domain.Schema, open bool) map[string]any {
	props := make(map[string]any, len(schema))
	required := []any{}
	for _, name := range schema.Names() {
		field := schema[name]
		props[name] = typeDocument(field.Type)
		if field.Required {
			required = append(required, name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	if !open {
		doc["additionalProperties"] = false
	}
	return doc
}

func typeDocument(t domain.TypeSpec) map[string]any {
	switch t.Kind {
	case domain.TypeString:
		return map[string]any{"type": "string"}
	case domain.TypeInteger:
		return map[string]any{"type": "integer"}
	case domain.TypeEnum:
		values := make([]any, len(t.Members))
		for i, m := range t.Members {
			values[i] = m.Value
		}
		return map[string]any{"enum": values}
	case domain.TypeArray:
		doc := map[string]any{"type": "array"}
		if t.ItemType != nil {
			doc["items"] = typeDocument(*t.ItemType)
		}
		return doc
	case domain.TypeStruct:
		return SchemaDocument(t.Fields, t.Open)
	default:
		return map[string]any{}
	}
}

// toJSONValue normalises v into the value space jsonschema validates
// (map[string]any, []any, json.Number, string, bool, nil).
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

func pruneNulls(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			v = pruneNulls(nested)
		}
		out[k] = v
	}
	return out
}

// toValidationError reports the first leaf cause, which names the most
// specific failing location.
func toValidationError(verr *jsonschema.ValidationError) *domain.ValidationError {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	location := append([]string{}, leaf.InstanceLocation...)
	if req, ok := leaf.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
		location = append(location, req.Missing[0])
	}

	return &domain.ValidationError{
		Field:  strings.Join(location, "."),
		Reason: leaf.ErrorKind.LocalizedString(printer),
	}
}
