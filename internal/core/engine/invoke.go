package engine

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Invoke validates args against the action's declared schema and, only when
// they conform, runs the action.
func Invoke(ctx context.Context, action domain.Action, args map[string]any, user domain.User) (any, error) {
	schema, err := action.Args(ctx, user)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArgs(schema, args); err != nil {
		return nil, err
	}
	return action.Invoke(ctx, args, user)
}

// UpdateArgs extracts the keys and properties of an update-style action.
// Blank values are dropped from both: blank keys do not constrain the match
// and blank properties leave stored values unchanged.
func UpdateArgs(args map[string]any) (keys, properties domain.Filter) {
	keys = asFilter(args["keys"]).Compact()
	properties = asFilter(args["properties"]).Compact()
	return keys, properties
}

func asFilter(v any) domain.Filter {
	switch m := v.(type) {
	case map[string]any:
		return domain.Filter(m)
	case domain.Filter:
		return m
	default:
		return domain.Filter{}
	}
}

// RecordWriter writes one matched record during a bulk update.
type RecordWriter func(ctx context.Context, id string) error

// WriteEach applies write to every id independently. A failed record is
// reported in the result and does not stop the others.
func WriteEach(ctx context.Context, ids []string, write RecordWriter) *domain.BulkResult {
	result := &domain.BulkResult{Matched: len(ids)}
	for _, id := range ids {
		if err := write(ctx, id); err != nil {
			result.Failures = append(result.Failures, domain.RecordFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	return result
}
