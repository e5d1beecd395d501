package schema

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// argumentsKey is reported when a failure cannot be attributed to a single field.
const argumentsKey = "arguments"

// Validate checks args against the schema and returns the declared fields that were
// present, with numbers normalized to float64 and strings sanitized.
// Absent optional fields stay absent; no defaults are filled in.
// On failure it returns an *AggregateError enumerating every violated field.
func (s Schema) Validate(args map[string]any) (map[string]any, error) {
	normalized := make(map[string]any, len(args))
	for k, v := range args {
		normalized[k] = normalize(v)
	}

	var errs []*ValidationError
	for _, f := range s.fields {
		if _, ok := normalized[f.Name]; f.Required && !ok {
			errs = append(errs, &ValidationError{Key: f.Name, Reason: "required"})
		}
	}
	if err := s.Object().VisitJSON(normalized, openapi3.MultiErrors()); err != nil {
		collect(err, &errs)
	}

	out := make(map[string]any, len(s.fields))
	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Key] = true
	}
	for _, f := range s.fields {
		v, ok := normalized[f.Name]
		if !ok || failed[f.Name] {
			continue
		}
		if str, isString := v.(string); isString && f.Sanitize {
			clean, err := SanitizeInput(str)
			if err != nil {
				errs = append(errs, &ValidationError{Key: f.Name, Reason: err.Error()})
				continue
			}
			v = clean
		}
		out[f.Name] = v
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool {
			if errs[i].Key != errs[j].Key {
				return errs[i].Key < errs[j].Key
			}
			return errs[i].Reason < errs[j].Reason
		})
		aggr := &AggregateError{Errors: make([]error, 0, len(errs))}
		for _, e := range errs {
			aggr.Errors = append(aggr.Errors, e)
		}
		return nil, aggr
	}
	return out, nil
}

// collect flattens kin-openapi errors into field-level validation errors.
func collect(err error, out *[]*ValidationError) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collect(inner, out)
		}
	case *openapi3.SchemaError:
		key := strings.Join(e.JSONPointer(), ".")
		if key == "" {
			key = argumentsKey
		}
		*out = append(*out, &ValidationError{Key: key, Reason: e.Reason, Value: e.Value})
	default:
		*out = append(*out, &ValidationError{Key: argumentsKey, Reason: err.Error()})
	}
}

// normalize converts Go numeric types to float64 so values built in code validate
// the same way as values decoded from JSON.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
