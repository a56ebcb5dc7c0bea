package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
)

// fieldMapping is one field of an index mapping.
type fieldMapping struct {
	Type       string                  `json:"type"`
	Properties map[string]fieldMapping `json:"properties"`
}

// typeMapping is the mapping of one document type.
type typeMapping struct {
	Properties map[string]fieldMapping `json:"properties"`
}

type indexMappings struct {
	Mappings map[string]json.RawMessage `json:"mappings"`
}

// fetchMappings returns the mapping of every type of index. Typeless indices
// report a single type named "_doc".
func fetchMappings(ctx context.Context, client *httpclient.Client, user domain.User, index string) (map[string]typeMapping, error) {
	var resp map[string]indexMappings
	if err := client.Get(ctx, user, "/"+url.PathEscape(index)+"/_mapping", nil, &resp); err != nil {
		return nil, err
	}
	idx, ok := resp[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %q", domain.ErrNotFound, index)
	}

	out := make(map[string]typeMapping, len(idx.Mappings))
	if raw, ok := idx.Mappings["properties"]; ok {
		var props map[string]fieldMapping
		if err := json.Unmarshal(raw, &props); err != nil {
			return nil, fmt.Errorf("%w: decode mapping of %s: %w", domain.ErrBackendUnavailable, index, err)
		}
		out[typelessName] = typeMapping{Properties: props}
		return out, nil
	}
	for name, raw := range idx.Mappings {
		var tm typeMapping
		if err := json.Unmarshal(raw, &tm); err != nil {
			return nil, fmt.Errorf("%w: decode mapping of %s/%s: %w", domain.ErrBackendUnavailable, index, name, err)
		}
		out[name] = tm
	}
	return out, nil
}

// fetchTypeMapping returns the mapping of one type.
func fetchTypeMapping(ctx context.Context, client *httpclient.Client, user domain.User, index, typ string) (typeMapping, error) {
	mappings, err := fetchMappings(ctx, client, user, index)
	if err != nil {
		return typeMapping{}, err
	}
	tm, ok := mappings[typ]
	if !ok {
		return typeMapping{}, fmt.Errorf("%w: type %q of index %q", domain.ErrNotFound, typ, index)
	}
	return tm, nil
}

// schemaOf converts mapped fields to an argument schema. Fields whose type
// has no hub equivalent are left undeclared; an object field is a closed
// struct unless one of its own fields was left undeclared.
func schemaOf(fields map[string]fieldMapping) (schema domain.Schema, complete bool) {
	schema = make(domain.Schema, len(fields))
	complete = true
	for name, f := range fields {
		t, ok := typeOf(f)
		if !ok {
			complete = false
			continue
		}
		schema[name] = domain.Field{Label: name, Type: t}
	}
	return schema, complete
}

// typeOf maps an Elasticsearch field type to a hub type. Whole numbers map to
// integer and textual types to string.
func typeOf(f fieldMapping) (domain.TypeSpec, bool) {
	if f.Properties != nil {
		fields, complete := schemaOf(f.Properties)
		return domain.StructOf(fields, !complete), true
	}
	switch f.Type {
	case "long", "integer", "short", "byte":
		return domain.IntegerType(), true
	case "text", "keyword", "string", "date", "ip":
		return domain.StringType(), true
	default:
		return domain.TypeSpec{}, false
	}
}

// propertyType is the type reported for a record property. Types without a
// hub equivalent are reported as string.
func propertyType(f fieldMapping) domain.TypeSpec {
	if t, ok := typeOf(f); ok {
		return t
	}
	return domain.StringType()
}
