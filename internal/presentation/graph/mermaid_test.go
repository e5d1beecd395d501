package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/colombia-mcp/internal/presentation/graph"
	"github.com/aretw0/colombia-mcp/pkg/catalog"
)

const fixture = `
basePath: /api/v1
resources:
  - slug: department
    path: Department
    singular: department
    plural: departments
    families: [list, by-id]
    relations:
      - slug: cities
        path: cities
        plural: cities
      - slug: radios
        path: radios
        plural: radios
  - slug: city
    path: City
    singular: city
    plural: cities
    families: [list]
  - slug: holiday
    path: Holiday
    singular: holiday
    plural: holidays
    extras:
      - name: get-holidays-by-year
        description: Get holidays by year.
        path: year/{year}
        input: year
        context: Error fetching holidays by year
`

func TestGenerateMermaid(t *testing.T) {
	c, err := catalog.Parse([]byte(fixture))
	require.NoError(t, err)

	got := graph.GenerateMermaid(c)

	tests := []struct {
		name     string
		contains string
	}{
		{"Header", "graph LR\n"},
		{"Resource With Families", `department["Department <br/> list, by-id"]`},
		{"Resource Without Families", `holiday["Holiday"]`},
		{"Relation To Known Resource", `department -- "cities" --> city`},
		{"Relation To Unlisted Collection", `department_radios("radios")`},
		{"Dotted Edge", `department -.-> department_radios`},
		{"Extra Tool Shape", `get_holidays_by_year[["get-holidays-by-year"]]`},
		{"Extra Tool Edge", `holiday --> get_holidays_by_year`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestGenerateMermaid_DefaultCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	got := graph.GenerateMermaid(c)
	assert.Contains(t, got, `region -- "departments" --> department`)
	assert.Contains(t, got, `department -- "touristicattractions" --> touristic_attraction`)
	assert.Equal(t, len(c.Resources), strings.Count(got, `"]`+"\n"), "one rectangle per resource")
}
