package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rest "github.com/aretw0/colombia-mcp/pkg/adapters/http"
	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/registry"
	"github.com/aretw0/colombia-mcp/pkg/schema"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	reg, err := registry.New(
		registry.Entry{
			Descriptor: registry.Descriptor{Name: "get-region-by-id", Description: "Get a region by its numeric id.", Input: schema.IDOnly()},
			Handler: func(_ context.Context, req domain.ToolRequest) domain.ToolResponse {
				if _, err := schema.IDOnly().Validate(req.Arguments); err != nil {
					return domain.ErrorResponse("Invalid input: " + err.Error())
				}
				return domain.TextResponse(`{"id":3,"name":"Andina"}`)
			},
		},
		registry.Entry{
			Descriptor: registry.Descriptor{Name: "get-country-colombia", Description: "Get general information about Colombia."},
			Handler: func(_ context.Context, _ domain.ToolRequest) domain.ToolResponse {
				return domain.TextResponse(`{"name":"Colombia"}`)
			},
		},
	)
	require.NoError(t, err)
	return dispatch.New(reg)
}

func serve(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	mount, err := rest.Mount(newDispatcher(t), "test", nil)
	require.NoError(t, err)
	r := chi.NewRouter()
	mount(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListTools(t *testing.T) {
	w := serve(t, http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, w.Code)

	var tools []struct {
		Name        string          `json:"name"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tools))
	require.Len(t, tools, 2)
	assert.Equal(t, "get-region-by-id", tools[0].Name)
	assert.Equal(t, "get-country-colombia", tools[1].Name)
	assert.Contains(t, string(tools[0].InputSchema), `"required":["id"]`)
}

func TestCallTool(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		isError bool
		text    string
	}{
		{name: "success", path: "/api/tools/get-region-by-id", body: `{"id":3}`, status: http.StatusOK, text: `{"id":3,"name":"Andina"}`},
		{name: "no body", path: "/api/tools/get-country-colombia", status: http.StatusOK, text: `{"name":"Colombia"}`},
		{name: "validation", path: "/api/tools/get-region-by-id", body: `{"id":0}`, status: http.StatusOK, isError: true},
		{name: "unknown", path: "/api/tools/nope", body: `{}`, status: http.StatusOK, isError: true, text: "Error: Unknown tool: nope"},
		{name: "bad body", path: "/api/tools/get-region-by-id", body: `[1,2]`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var rsp domain.ToolResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
			assert.Equal(t, tt.isError, rsp.IsError)
			if tt.text != "" {
				assert.Equal(t, tt.text, rsp.Text())
			}
		})
	}
}

func TestCallTool_EnvelopeAlwaysCarriesIsError(t *testing.T) {
	w := serve(t, http.MethodPost, "/api/tools/get-country-colombia", "")
	assert.Contains(t, w.Body.String(), `"isError":false`)
}

func TestOpenAPISpec(t *testing.T) {
	w := serve(t, http.MethodGet, "/api/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]struct {
			OperationID string `json:"operationId"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "test", doc.Info.Version)
	require.Contains(t, doc.Paths, "/tools/get-region-by-id")
	assert.Equal(t, "get-region-by-id", doc.Paths["/tools/get-region-by-id"]["post"].OperationID)
	assert.Contains(t, doc.Paths, "/tools/get-country-colombia")
}

func TestBuildSpec_Validates(t *testing.T) {
	doc := rest.BuildSpec(newDispatcher(t).List(), "1.0.0")
	assert.NoError(t, doc.Validate(context.Background()))
}

func TestSwagger(t *testing.T) {
	w := serve(t, http.MethodGet, "/api/swagger", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
