package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// MaxInt is the largest integer argument accepted. JSON numbers arrive as float64,
// which holds every integer up to 2^53 exactly; larger values would not survive the
// conversion to int64.
const MaxInt = 1<<53 - 1

// Field names shared by the catalog. Upstream query keys are mapped from these.
const (
	FieldID            = "id"
	FieldSortBy        = "sortBy"
	FieldSortDirection = "sortDirection"
	FieldPage          = "page"
	FieldPageSize      = "pageSize"
	FieldYear          = "year"
	FieldName          = "name"
	FieldKeyword       = "keyword"
)

// Sort directions accepted by the upstream catalog.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Field is one named input of a tool.
type Field struct {
	Name     string
	Required bool
	// Schema is the single source of truth for both discovery and validation.
	Schema *openapi3.Schema
	// Sanitize runs string values through SanitizeInput after schema checks.
	Sanitize bool
}

// Optional returns a copy of the field that is not required.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// ID is a required positive integer identifier.
func ID() Field {
	return positiveInt(FieldID, "Numeric identifier of the resource (>= 1)")
}

// Page is a required page number, starting at 1.
func Page() Field {
	return positiveInt(FieldPage, "Page number to fetch, starting at 1")
}

// PageSize is a required page size of at least 1.
func PageSize() Field {
	return positiveInt(FieldPageSize, "Number of items per page (>= 1)")
}

// Year is a required calendar year.
func Year() Field {
	return positiveInt(FieldYear, "Calendar year, e.g. 2024")
}

// SortBy is an optional free-text sort key (a property name of the resource).
func SortBy() Field {
	s := openapi3.NewStringSchema()
	s.Description = "Property to sort by, e.g. name"
	return Field{Name: FieldSortBy, Schema: s}
}

// SortDirection is an optional sort direction restricted to asc or desc.
func SortDirection() Field {
	s := openapi3.NewStringSchema().WithEnum(SortAsc, SortDesc)
	s.Description = "Sort direction: asc or desc"
	return Field{Name: FieldSortDirection, Schema: s}
}

// RequiredString is a non-empty, sanitized string used for name and keyword lookups.
func RequiredString(name, description string) Field {
	s := openapi3.NewStringSchema().WithMinLength(1)
	s.Description = description
	return Field{Name: name, Required: true, Schema: s, Sanitize: true}
}

func positiveInt(name, description string) Field {
	s := openapi3.NewInt64Schema().WithMin(1).WithMax(MaxInt)
	s.Description = description
	return Field{Name: name, Required: true, Schema: s}
}
