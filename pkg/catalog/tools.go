package catalog

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/colombia-mcp/pkg/schema"
)

// Tool is one generated tool and the upstream call it maps to.
type Tool struct {
	Name        string
	Description string
	Input       schema.Schema
	// Context prefixes upstream failure messages.
	Context string

	Method     string
	Path       string
	PathParams []string
	// Query maps argument fields to upstream query keys.
	Query map[string]string
}

// familyRule describes how a family expands for a resource.
type familyRule struct {
	name        func(r Resource) string
	description func(r Resource) string
	context     func(r Resource) string
	input       func() schema.Schema
	suffix      string
}

var families = map[Family]familyRule{
	FamilyList: {
		name:        func(r Resource) string { return "get-" + r.Slug },
		description: func(r Resource) string { return fmt.Sprintf("Get all %s. Results can optionally be sorted by a property.", r.Plural) },
		context:     func(r Resource) string { return "Error fetching " + r.Singular + " list" },
		input:       schema.SortOnly,
	},
	FamilyByID: {
		name:        func(r Resource) string { return "get-" + r.Slug + "-by-id" },
		description: func(r Resource) string { return fmt.Sprintf("Get a %s by its numeric id.", r.Singular) },
		context:     func(r Resource) string { return "Error fetching " + r.Singular + " by id" },
		input:       schema.IDOnly,
		suffix:      "/{id}",
	},
	FamilyByName: {
		name:        func(r Resource) string { return "get-" + r.Slug + "-by-name" },
		description: func(r Resource) string { return fmt.Sprintf("Get the %s records whose name matches the given name.", r.Singular) },
		context:     func(r Resource) string { return "Error fetching " + r.Singular + " by name" },
		input: func() schema.Schema {
			return schema.StringOnly(schema.FieldName, "Name to look up, e.g. Antioquia")
		},
		suffix: "/name/{name}",
	},
	FamilySearch: {
		name: func(r Resource) string { return "search-" + r.Slug + "-by-keyword" },
		description: func(r Resource) string {
			return fmt.Sprintf("Search %s by keyword. The keyword is matched upstream against several text fields such as name and description.", r.Plural)
		},
		context: func(r Resource) string { return "Error searching " + r.Singular + " by keyword" },
		input: func() schema.Schema {
			return schema.StringOnly(schema.FieldKeyword, "Keyword to search for")
		},
		suffix: "/search/{keyword}",
	},
	FamilyPaginated: {
		name:        func(r Resource) string { return "get-" + r.Slug + "-paginated" },
		description: func(r Resource) string { return fmt.Sprintf("Get %s one page at a time, with optional sorting.", r.Plural) },
		context:     func(r Resource) string { return "Error fetching paginated " + r.Singular + " list" },
		input:       schema.PageSort,
		suffix:      "/pagedList",
	},
}

// familyOrder fixes the order in which families are emitted for a resource.
var familyOrder = []Family{FamilyList, FamilyByID, FamilyByName, FamilySearch, FamilyPaginated}

// defaultQueryKeys maps argument fields to upstream query keys per family.
// Paginated endpoints expect capitalized keys upstream.
var defaultQueryKeys = map[Family]map[string]string{
	FamilyList: {
		schema.FieldSortBy:        "sortBy",
		schema.FieldSortDirection: "sortDirection",
	},
	FamilyPaginated: {
		schema.FieldPage:          "Page",
		schema.FieldPageSize:      "PageSize",
		schema.FieldSortBy:        "SortBy",
		schema.FieldSortDirection: "SortDirection",
	},
	FamilyRelation: {
		schema.FieldSortBy:        "sortBy",
		schema.FieldSortDirection: "sortDirection",
	},
}

var extraInputs = map[string]func() schema.Schema{
	InputNone: schema.None,
	InputYear: schema.YearOnly,
}

// Tools expands the catalog in declaration order: resources as listed, families in
// familyOrder, then relations, then extras.
func (c *Catalog) Tools() ([]Tool, error) {
	var tools []Tool
	for _, r := range c.Resources {
		base := strings.TrimSuffix(c.BasePath, "/") + "/" + r.Path

		enabled := make(map[Family]bool, len(r.Families))
		for _, f := range r.Families {
			enabled[f] = true
		}

		for _, f := range familyOrder {
			if !enabled[f] {
				continue
			}
			rule := families[f]
			t, err := newTool(
				rule.name(r),
				rule.description(r),
				rule.context(r),
				rule.input(),
				base+rule.suffix,
				r.queryKeys(f),
			)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.Slug, err)
			}
			tools = append(tools, t)
		}

		for _, rel := range r.Relations {
			t, err := newTool(
				"get-"+r.Slug+"-by-id-"+rel.Slug,
				fmt.Sprintf("Get the %s of a %s by the %s id, with optional sorting.", rel.Plural, r.Singular, r.Singular),
				"Error fetching "+rel.Plural+" of "+r.Singular,
				schema.IDSort(),
				base+"/{id}/"+rel.Path,
				r.queryKeys(FamilyRelation),
			)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.Slug, err)
			}
			tools = append(tools, t)
		}

		for _, e := range r.Extras {
			t, err := newTool(e.Name, e.Description, e.Context, extraInputs[e.Input](), base+"/"+e.Path, nil)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.Slug, err)
			}
			tools = append(tools, t)
		}
	}
	return tools, nil
}

func (r Resource) queryKeys(f Family) map[string]string {
	if override, ok := r.QueryKeys[f]; ok {
		return override
	}
	return defaultQueryKeys[f]
}

// newTool checks that every input field lands in exactly one of the path or query.
func newTool(name, description, context string, input schema.Schema, path string, query map[string]string) (Tool, error) {
	params := placeholders(path)

	inPath := make(map[string]bool, len(params))
	for _, p := range params {
		inPath[p] = true
	}

	declared := make(map[string]bool)
	for _, field := range input.Names() {
		declared[field] = true
		_, inQuery := query[field]
		switch {
		case inPath[field] && inQuery:
			return Tool{}, fmt.Errorf("tool %s: field %s mapped to both path and query", name, field)
		case !inPath[field] && !inQuery:
			return Tool{}, fmt.Errorf("tool %s: field %s is not mapped upstream", name, field)
		}
	}
	for _, p := range params {
		if !declared[p] {
			return Tool{}, fmt.Errorf("tool %s: path parameter %s has no input field", name, p)
		}
	}

	mapped := make(map[string]string)
	for field, key := range query {
		if declared[field] {
			mapped[field] = key
		}
	}

	return Tool{
		Name:        name,
		Description: description,
		Input:       input,
		Context:     context,
		Method:      http.MethodGet,
		Path:        path,
		PathParams:  params,
		Query:       mapped,
	}, nil
}

func placeholders(path string) []string {
	var out []string
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			return out
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return out
		}
		out = append(out, path[open+1:open+end])
		path = path[open+end+1:]
	}
}
