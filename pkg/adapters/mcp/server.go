// Package mcp bridges Model Context Protocol frames to the dispatcher.
//
// tools/list and tools/call are answered from the Dispatcher directly so that
// tools keep registration order and unknown tools come back as error-flagged
// results. Everything else (initialize, ping, notifications) is handled by an
// mcp-go server advertising the tools capability.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/domain"
)

// Dispatcher is the transport-agnostic core served by every transport.
type Dispatcher interface {
	List() []dispatch.Tool
	Call(ctx context.Context, req domain.ToolRequest) domain.ToolResponse
}

// Sessions tracks transport sessions. *session.Manager implements it.
type Sessions interface {
	Open(ctx context.Context, transport string) (string, error)
	Resume(ctx context.Context, id string) error
	Close(ctx context.Context, id string) error
}

// Transport names reported to Sessions.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server answers MCP JSON-RPC messages.
type Server struct {
	dispatcher Dispatcher
	mcpServer  *server.MCPServer
	sessions   Sessions
	metrics    http.Handler
	logger     *slog.Logger

	name    string
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithImplementation sets the name and version reported on initialize.
func WithImplementation(name, version string) Option {
	return func(s *Server) {
		s.name = name
		s.version = version
	}
}

// WithSessions enables session tracking. Without it the HTTP transport is
// stateless and does not issue session ids.
func WithSessions(sessions Sessions) Option {
	return func(s *Server) {
		s.sessions = sessions
	}
}

// WithMetricsHandler exposes h on GET /metrics of the HTTP transport.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a Server over d.
func NewServer(d Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		name:       "colombia-mcp",
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(s.name, s.version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	return s
}

// rpcEnvelope is the part of a JSON-RPC message needed for routing.
type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (e rpcEnvelope) isNotification() bool {
	return len(e.ID) == 0
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func resultResponse(id json.RawMessage, result any) rpcResponse {
	return rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) rpcResponse {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Error: &rpcError{Code: code, Message: message}}
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// HandleMessage answers one JSON-RPC message. It returns nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, raw json.RawMessage) any {
	var env rpcEnvelope
	if !json.Valid(raw) {
		return errorResponse(nil, mcp.PARSE_ERROR, "Parse error")
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Method == "" {
		if len(env.ID) == 0 {
			return errorResponse(nil, mcp.INVALID_REQUEST, "Invalid Request")
		}
		return errorResponse(env.ID, mcp.INVALID_REQUEST, "Invalid Request")
	}

	switch mcp.MCPMethod(env.Method) {
	case mcp.MethodToolsList:
		if env.isNotification() {
			return nil
		}
		return resultResponse(env.ID, s.listTools())
	case mcp.MethodToolsCall:
		if env.isNotification() {
			return nil
		}
		var p callParams
		if len(env.Params) == 0 {
			return errorResponse(env.ID, mcp.INVALID_PARAMS, "missing params")
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return errorResponse(env.ID, mcp.INVALID_PARAMS, fmt.Sprintf("invalid params: %v", err))
		}
		s.logger.Debug("tools/call", "tool", p.Name, "session_id", SessionID(ctx))
		rsp := s.dispatcher.Call(ctx, domain.ToolRequest{Name: p.Name, Arguments: p.Arguments})
		return resultResponse(env.ID, toCallToolResult(rsp))
	default:
		rsp := s.mcpServer.HandleMessage(ctx, raw)
		if rsp == nil {
			return nil
		}
		return rsp
	}
}

func (s *Server) listTools() mcp.ListToolsResult {
	descriptors := s.dispatcher.List()
	tools := make([]mcp.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, mcp.NewToolWithRawSchema(d.Name, d.Description, d.InputSchema()))
	}
	return mcp.ListToolsResult{Tools: tools}
}

func toCallToolResult(rsp domain.ToolResponse) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(rsp.Content))
	for _, c := range rsp.Content {
		content = append(content, mcp.NewTextContent(c.Text))
	}
	result := &mcp.CallToolResult{
		Content: content,
		IsError: rsp.IsError,
	}
	if len(rsp.Metadata) > 0 {
		result.Meta = &mcp.Meta{AdditionalFields: rsp.Metadata}
	}
	return result
}
