package schema

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema is an ordered set of fields describing the input of one tool.
// The zero value describes a tool without input.
type Schema struct {
	fields []Field
}

// New composes a schema from fields. Field names must be unique.
func New(fields ...Field) Schema {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return Schema{fields: append([]Field(nil), fields...)}
}

// None describes a tool that takes no input.
func None() Schema { return Schema{} }

// IDOnly requires a positive id.
func IDOnly() Schema { return New(ID()) }

// SortOnly accepts optional sort key and direction.
func SortOnly() Schema { return New(SortBy(), SortDirection()) }

// IDSort requires an id and accepts optional sorting.
func IDSort() Schema { return New(ID(), SortBy(), SortDirection()) }

// PageSort requires page and pageSize and accepts optional sorting.
func PageSort() Schema { return New(Page(), PageSize(), SortBy(), SortDirection()) }

// YearOnly requires a year.
func YearOnly() Schema { return New(Year()) }

// StringOnly requires a single non-empty string field.
func StringOnly(name, description string) Schema {
	return New(RequiredString(name, description))
}

// Fields returns the fields in declaration order.
func (s Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		names = append(names, f.Name)
	}
	return names
}

// Required returns the names of required fields in declaration order.
func (s Schema) Required() []string {
	var req []string
	for _, f := range s.fields {
		if f.Required {
			req = append(req, f.Name)
		}
	}
	return req
}

// Object builds the object schema of the field constraints. Presence of required
// fields is checked by Validate from the same field list so missing fields are
// reported by name.
func (s Schema) Object() *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	for _, f := range s.fields {
		obj.WithProperty(f.Name, f.Schema)
	}
	return obj
}

// OpenAPI builds the object schema including the required list, for use in
// OpenAPI documents.
func (s Schema) OpenAPI() *openapi3.Schema {
	obj := s.Object()
	obj.Required = s.Required()
	return obj
}

// document is the discovery shape: a JSON-Schema object whose properties are the
// same openapi3 field schemas used by Validate.
type document struct {
	Type       string                      `json:"type"`
	Properties map[string]*openapi3.Schema `json:"properties"`
	Required   []string                    `json:"required,omitempty"`
}

// MarshalJSON renders the schema as a JSON-Schema object for discovery.
func (s Schema) MarshalJSON() ([]byte, error) {
	doc := document{
		Type:       openapi3.TypeObject,
		Properties: make(map[string]*openapi3.Schema, len(s.fields)),
		Required:   s.Required(),
	}
	for _, f := range s.fields {
		if f.Schema == nil {
			return nil, fmt.Errorf("field %s: schema is nil", f.Name)
		}
		doc.Properties[f.Name] = f.Schema
	}
	return json.Marshal(doc)
}
