// Package http exposes the tools as a plain REST API next to the MCP endpoint,
// described by an OpenAPI document generated from the registry.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/domain"
)

// MountPath is where Mount attaches the REST API.
const MountPath = "/api"

const maxBodyBytes = 1 << 20

// Dispatcher is the tool core served by the REST API.
type Dispatcher interface {
	List() []dispatch.Tool
	Call(ctx context.Context, req domain.ToolRequest) domain.ToolResponse
}

// Server serves the REST view of the tools.
type Server struct {
	dispatcher Dispatcher
	spec       []byte
	logger     *slog.Logger
}

// toolView is the JSON shape of one tool in GET /tools.
type toolView struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// NewHandler creates the REST handler:
//
//	GET  /tools          list tools in registration order
//	POST /tools/{name}   call a tool, body is the arguments object
//	GET  /openapi.json   OpenAPI document of the calls
//	GET  /swagger        Swagger UI
func NewHandler(d Dispatcher, version string, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	spec, err := BuildSpec(d.List(), version).MarshalJSON()
	if err != nil {
		return nil, err
	}
	s := &Server{dispatcher: d, spec: spec, logger: logger}

	r := chi.NewRouter()
	r.Get("/tools", s.listTools)
	r.Post("/tools/{name}", s.callTool)
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	return r, nil
}

// Mount returns a router hook attaching the REST API under MountPath.
func Mount(d Dispatcher, version string, logger *slog.Logger) (func(chi.Router), error) {
	h, err := NewHandler(d, version, logger)
	if err != nil {
		return nil, err
	}
	return func(r chi.Router) {
		r.Mount(MountPath, h)
	}, nil
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	descriptors := s.dispatcher.List()
	views := make([]toolView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, toolView{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema()})
	}
	writeJSON(w, s.logger, http.StatusOK, views)
}

func (s *Server) callTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var args map[string]any
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			s.logger.Warn("call: invalid request body", "tool", name, "err", err)
			http.Error(w, "Invalid request body: expected a JSON object of arguments", http.StatusBadRequest)
			return
		}
	}

	rsp := s.dispatcher.Call(r.Context(), domain.ToolRequest{Name: name, Arguments: args})
	writeJSON(w, s.logger, http.StatusOK, rsp)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

// BuildSpec describes every tool as a POST operation whose request body is the
// tool input schema and whose response is the tool response envelope.
func BuildSpec(tools []dispatch.Tool, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "API Colombia tools",
			Description: "REST view of the MCP tools backed by api-colombia.com",
			Version:     version,
		},
		Servers: openapi3.Servers{{URL: MountPath}},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"ToolResponse": openapi3.NewSchemaRef("", responseSchema()),
			},
		},
	}

	toolResponse := doc.Components.Schemas["ToolResponse"].Value
	for _, t := range tools {
		op := openapi3.NewOperation()
		op.OperationID = t.Name
		op.Summary = t.Description
		op.Tags = []string{"tools"}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithJSONSchema(t.Input.OpenAPI()),
		}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Tool response; isError flags validation and upstream failures").
					WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/ToolResponse", toolResponse)),
			}),
		)
		doc.AddOperation("/tools/"+t.Name, http.MethodPost, op)
	}
	return doc
}

func responseSchema() *openapi3.Schema {
	content := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum(domain.ContentTypeText)).
		WithProperty("text", openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("content", openapi3.NewArraySchema().WithItems(content)).
		WithProperty("isError", openapi3.NewBoolSchema()).
		WithProperty("metadata", openapi3.NewObjectSchema())
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>API Colombia tools</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: 'openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
