package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/aretw0/colombia-mcp/pkg/adapters/mcp"
)

func TestHandleMessage_Initialize(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}), adapter.WithImplementation("colombia-mcp", "1.2.3"))

	reply := decodeReply(t, srv.HandleMessage(context.Background(), json.RawMessage(initializeFrame)))
	require.Nil(t, reply.Error)

	var res struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
		Capabilities map[string]json.RawMessage `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.Equal(t, "colombia-mcp", res.ServerInfo.Name)
	assert.Equal(t, "1.2.3", res.ServerInfo.Version)
	assert.Contains(t, res.Capabilities, "tools")
}

func TestHandleMessage_ToolsListKeepsOrder(t *testing.T) {
	d := newDispatcher(t, echoOps{})
	srv := adapter.NewServer(d)

	reply := decodeReply(t, srv.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)))
	require.Nil(t, reply.Error)

	var res struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &res))

	descriptors := d.List()
	require.Len(t, res.Tools, len(descriptors))
	for i, tool := range res.Tools {
		assert.Equal(t, descriptors[i].Name, tool.Name)
		assert.Equal(t, descriptors[i].Description, tool.Description)
		assert.JSONEq(t, string(descriptors[i].InputSchema()), string(tool.InputSchema), tool.Name)
	}
}

func TestHandleMessage_ToolsCall(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))
	ctx := context.Background()

	res := decodeToolResult(t, decodeReply(t, srv.HandleMessage(ctx, callFrame(3, "get-region-by-id", map[string]any{"id": 3}))))
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, `{"path":"/api/v1/Region/{id}","id":3}`, res.Content[0].Text)
}

func TestHandleMessage_UnknownToolIsResult(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))

	reply := decodeReply(t, srv.HandleMessage(context.Background(), callFrame(4, "nonexistent-tool", map[string]any{})))
	res := decodeToolResult(t, reply)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Unknown tool: nonexistent-tool", res.Content[0].Text)
	assert.JSONEq(t, "4", string(reply.ID))
}

func TestHandleMessage_ValidationIsResult(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))

	res := decodeToolResult(t, decodeReply(t, srv.HandleMessage(context.Background(), callFrame(5, "get-city-by-id", map[string]any{"id": 0}))))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "Invalid input")
}

func TestHandleMessage_ProtocolErrors(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))
	ctx := context.Background()

	tests := []struct {
		name  string
		frame string
		code  int
	}{
		{name: "not json", frame: `{"jsonrpc":`, code: -32700},
		{name: "no method", frame: `{"jsonrpc":"2.0","id":1}`, code: -32600},
		{name: "batch", frame: `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, code: -32600},
		{name: "call without params", frame: `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`, code: -32602},
		{name: "call with bad params", frame: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":3}}`, code: -32602},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := decodeReply(t, srv.HandleMessage(ctx, json.RawMessage(tt.frame)))
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.code, reply.Error.Code)
		})
	}
}

func TestHandleMessage_Notifications(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))
	ctx := context.Background()

	assert.Nil(t, srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","method":"tools/list"}`)))
}

func TestHandleMessage_Ping(t *testing.T) {
	srv := adapter.NewServer(newDispatcher(t, echoOps{}))

	reply := decodeReply(t, srv.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":"p1","method":"ping"}`)))
	assert.Nil(t, reply.Error)
	assert.JSONEq(t, `"p1"`, string(reply.ID))
}
