package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/colombia-mcp/pkg/catalog"
	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/upstream"
)

type call struct {
	Method string
	Path   string
	Params upstream.Params
}

// stubOps answers every operation with a fixed payload and records calls.
type stubOps struct {
	mu      sync.Mutex
	calls   []call
	payload json.RawMessage
	err     error
}

func (s *stubOps) Operation(method, path string) upstream.Operation {
	return func(_ context.Context, p upstream.Params) (any, error) {
		s.mu.Lock()
		s.calls = append(s.calls, call{Method: method, Path: path, Params: p})
		s.mu.Unlock()
		if s.err != nil {
			return nil, s.err
		}
		return s.payload, nil
	}
}

func (s *stubOps) last(t *testing.T) call {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.calls)
	return s.calls[len(s.calls)-1]
}

func defaultTools(t *testing.T) []catalog.Tool {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	tools, err := c.Tools()
	require.NoError(t, err)
	return tools
}

func findTool(t *testing.T, name string) catalog.Tool {
	t.Helper()
	for _, tool := range defaultTools(t) {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not in catalog", name)
	return catalog.Tool{}
}

func TestDefault_ExpandsUniqueNames(t *testing.T) {
	tools := defaultTools(t)
	require.NotEmpty(t, tools)

	seen := make(map[string]bool, len(tools))
	for _, tool := range tools {
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
	}

	for _, name := range []string{
		"get-country-colombia",
		"get-region",
		"get-region-by-id",
		"get-region-by-name",
		"get-region-by-id-departments",
		"get-department-paginated",
		"search-city-by-keyword",
		"get-department-by-id-natural-areas",
		"get-president-by-year",
		"get-holidays-by-year",
		"get-constitution-article-paginated",
	} {
		assert.True(t, seen[name], "missing tool %s", name)
	}
	assert.False(t, seen["get-region-paginated"], "region has no paginated family")
}

func TestDefault_OrderFollowsCatalog(t *testing.T) {
	tools := defaultTools(t)
	names := make([]string, 0, 6)
	for _, tool := range tools[:6] {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"get-country-colombia",
		"get-region",
		"get-region-by-id",
		"get-region-by-name",
		"get-region-by-id-departments",
		"get-department",
	}, names)
}

func TestTools_UpstreamMapping(t *testing.T) {
	byID := findTool(t, "get-region-by-id")
	assert.Equal(t, "GET", byID.Method)
	assert.Equal(t, "/api/v1/Region/{id}", byID.Path)
	assert.Equal(t, []string{"id"}, byID.PathParams)
	assert.Empty(t, byID.Query)
	assert.Equal(t, "Error fetching region by id", byID.Context)

	paged := findTool(t, "get-department-paginated")
	assert.Equal(t, "/api/v1/Department/pagedList", paged.Path)
	assert.Equal(t, map[string]string{
		"page":          "Page",
		"pageSize":      "PageSize",
		"sortBy":        "SortBy",
		"sortDirection": "SortDirection",
	}, paged.Query)

	rel := findTool(t, "get-department-by-id-touristic-attractions")
	assert.Equal(t, "/api/v1/Department/{id}/touristicattractions", rel.Path)
	assert.Equal(t, map[string]string{"sortBy": "sortBy", "sortDirection": "sortDirection"}, rel.Query)

	country := findTool(t, "get-country-colombia")
	assert.Equal(t, "/api/v1/Country/Colombia", country.Path)
	assert.Empty(t, country.Input.Names())
}

func TestParse_QueryKeyOverride(t *testing.T) {
	doc := []byte(`
basePath: /api/v1
resources:
  - slug: widget
    path: Widget
    singular: widget
    plural: widgets
    families: [paginated]
    queryKeys:
      paginated:
        page: page
        pageSize: size
        sortBy: sort
        sortDirection: dir
`)
	c, err := catalog.Parse(doc)
	require.NoError(t, err)
	tools, err := c.Tools()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, map[string]string{
		"page":          "page",
		"pageSize":      "size",
		"sortBy":        "sort",
		"sortDirection": "dir",
	}, tools[0].Query)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":          `basePath: /api/v1`,
		"unknown family": "resources:\n  - slug: a\n    path: A\n    families: [everything]\n",
		"unknown input":  "resources:\n  - slug: a\n    path: A\n    extras:\n      - name: get-a-x\n        path: x\n        input: month\n",
		"bad override":   "resources:\n  - slug: a\n    path: A\n    queryKeys:\n      by-id:\n        id: Id\n",
		"missing path":   "resources:\n  - slug: a\n",
		"not yaml":       "resources: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestTools_UnmappedFieldFails(t *testing.T) {
	doc := []byte(`
resources:
  - slug: widget
    path: Widget
    families: [paginated]
    queryKeys:
      paginated:
        page: Page
`)
	c, err := catalog.Parse(doc)
	require.NoError(t, err)
	_, err = c.Tools()
	assert.ErrorContains(t, err, "not mapped upstream")
}

func TestDiscoveryMatchesRuntime(t *testing.T) {
	for _, tool := range defaultTools(t) {
		raw, err := json.Marshal(tool.Input)
		require.NoError(t, err)

		var doc struct {
			Type       string                     `json:"type"`
			Properties map[string]json.RawMessage `json:"properties"`
			Required   []string                   `json:"required"`
		}
		require.NoError(t, json.Unmarshal(raw, &doc), tool.Name)
		assert.Equal(t, "object", doc.Type, tool.Name)

		props := make([]string, 0, len(doc.Properties))
		for name := range doc.Properties {
			props = append(props, name)
		}
		assert.ElementsMatch(t, tool.Input.Names(), props, tool.Name)
		assert.ElementsMatch(t, tool.Input.Required(), doc.Required, tool.Name)
	}
}

func TestHandler_EndToEnd(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`{"id":3,"name":"Andina"}`)}
	tool := findTool(t, "get-region-by-id")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	rsp := handler(context.Background(), domain.ToolRequest{
		Name:      tool.Name,
		Arguments: map[string]any{"id": float64(3)},
	})

	assert.False(t, rsp.IsError)
	require.Len(t, rsp.Content, 1)
	assert.Equal(t, domain.ContentTypeText, rsp.Content[0].Type)
	assert.Equal(t, `{"id":3,"name":"Andina"}`, rsp.Content[0].Text)

	got := ops.last(t)
	assert.Equal(t, "/api/v1/Region/{id}", got.Path)
	assert.Equal(t, int64(3), got.Params.Path["id"])
}

func TestHandler_RejectsNonPositiveID(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`{}`)}
	for _, tool := range defaultTools(t) {
		if !contains(tool.Input.Required(), "id") {
			continue
		}
		handler := tool.Handler(ops.Operation(tool.Method, tool.Path))
		for _, id := range []float64{0, -1, 1e19} {
			rsp := handler(context.Background(), domain.ToolRequest{
				Name:      tool.Name,
				Arguments: map[string]any{"id": id},
			})
			assert.True(t, rsp.IsError, "%s id=%v", tool.Name, id)
			assert.Contains(t, rsp.Text(), "Invalid input", tool.Name)
			assert.Contains(t, rsp.Text(), `"id"`, tool.Name)
		}
	}
	assert.Empty(t, ops.calls, "validation failures must not reach upstream")
}

func TestHandler_Pagination(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`{"page":1,"data":[]}`)}
	for _, tool := range defaultTools(t) {
		if !contains(tool.Input.Required(), "page") {
			continue
		}
		handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

		rsp := handler(context.Background(), domain.ToolRequest{
			Name:      tool.Name,
			Arguments: map[string]any{"page": float64(0), "pageSize": float64(5)},
		})
		assert.True(t, rsp.IsError, tool.Name)
		assert.Contains(t, rsp.Text(), "Invalid input", tool.Name)

		rsp = handler(context.Background(), domain.ToolRequest{
			Name:      tool.Name,
			Arguments: map[string]any{"page": float64(1), "pageSize": float64(10)},
		})
		assert.False(t, rsp.IsError, tool.Name)
		assert.Equal(t, map[string]any{"Page": int64(1), "PageSize": int64(10)}, ops.last(t).Params.Query, tool.Name)
	}
}

func TestHandler_ReportsEveryViolation(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`[]`)}
	tool := findTool(t, "get-city-paginated")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	rsp := handler(context.Background(), domain.ToolRequest{
		Name:      tool.Name,
		Arguments: map[string]any{"page": float64(0), "sortDirection": "sideways"},
	})
	require.True(t, rsp.IsError)
	for _, key := range []string{`"page"`, `"pageSize"`, `"sortDirection"`} {
		assert.Contains(t, rsp.Text(), key)
	}
}

func TestHandler_PayloadTextIsNotHTMLEscaped(t *testing.T) {
	tool := findTool(t, "get-touristic-attraction-by-id")
	args := map[string]any{"id": float64(1)}

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"Raw JSON", json.RawMessage(`{"name":"Arte & <Cultura>"}`), `{"name":"Arte & <Cultura>"}`},
		{"Decoded Value", map[string]any{"name": "Arte & <Cultura>"}, `{"name":"Arte & <Cultura>"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := tool.Handler(func(context.Context, upstream.Params) (any, error) {
				return tt.payload, nil
			})
			rsp := handler(context.Background(), domain.ToolRequest{Name: tool.Name, Arguments: args})
			require.False(t, rsp.IsError, rsp.Text())
			assert.Equal(t, tt.want, rsp.Text())
		})
	}
}

func TestHandler_InvalidRawPayload(t *testing.T) {
	tool := findTool(t, "get-region")
	handler := tool.Handler(func(context.Context, upstream.Params) (any, error) {
		return json.RawMessage(`{"name":`), nil
	})

	rsp := handler(context.Background(), domain.ToolRequest{Name: tool.Name})
	assert.True(t, rsp.IsError)
	assert.Contains(t, rsp.Text(), "Error fetching region list: "+upstream.ErrMalformedPayload.Error())
}

func TestHandler_UpstreamFailure(t *testing.T) {
	ops := &stubOps{err: &upstream.HTTPError{StatusCode: 404, Status: "404 Not Found"}}
	tool := findTool(t, "get-region-by-id")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	rsp := handler(context.Background(), domain.ToolRequest{
		Name:      tool.Name,
		Arguments: map[string]any{"id": float64(99)},
	})
	assert.True(t, rsp.IsError)
	assert.Equal(t, "Error fetching region by id: upstream responded 404 Not Found", rsp.Text())
}

func TestHandler_NetworkFailure(t *testing.T) {
	ops := &stubOps{err: errors.New("connection refused")}
	tool := findTool(t, "get-region")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	rsp := handler(context.Background(), domain.ToolRequest{Name: tool.Name})
	assert.True(t, rsp.IsError)
	assert.Equal(t, "Error fetching region list: connection refused", rsp.Text())
}

func TestHandler_Idempotent(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`[{"id":1,"name":"Caribe"}]`)}
	tool := findTool(t, "get-region")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	req := domain.ToolRequest{Name: tool.Name, Arguments: map[string]any{"sortBy": "name", "sortDirection": "asc"}}
	first, err := json.Marshal(handler(context.Background(), req))
	require.NoError(t, err)
	second, err := json.Marshal(handler(context.Background(), req))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, map[string]any{"sortBy": "name", "sortDirection": "asc"}, ops.last(t).Params.Query)
}

func TestHandler_SanitizesStrings(t *testing.T) {
	ops := &stubOps{payload: json.RawMessage(`[]`)}
	tool := findTool(t, "get-city-by-name")
	handler := tool.Handler(ops.Operation(tool.Method, tool.Path))

	rsp := handler(context.Background(), domain.ToolRequest{
		Name:      tool.Name,
		Arguments: map[string]any{"name": "  Medellín\x00 "},
	})
	require.False(t, rsp.IsError, rsp.Text())
	assert.Equal(t, "Medellín", ops.last(t).Params.Path["name"])
}

func TestBuild(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	reg, err := catalog.Build(c, &stubOps{payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	tools, err := c.Tools()
	require.NoError(t, err)
	assert.Equal(t, len(tools), reg.Len())

	entry, ok := reg.Lookup("get-holidays-by-year")
	require.True(t, ok)
	var doc struct {
		Properties map[string]struct {
			Type    string  `json:"type"`
			Minimum float64 `json:"minimum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(entry.Descriptor.InputSchema(), &doc))
	assert.Equal(t, []string{"year"}, doc.Required)
	assert.Equal(t, "integer", doc.Properties["year"].Type)
	assert.Equal(t, float64(1), doc.Properties["year"].Minimum)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
