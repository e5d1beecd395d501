package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/colombia-mcp/pkg/catalog"
	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/upstream"
)

// echoOps answers every upstream operation with the path it was called on and
// its path parameters, after an optional delay.
type echoOps struct {
	delay time.Duration
}

func (e echoOps) Operation(_, path string) upstream.Operation {
	return func(ctx context.Context, p upstream.Params) (any, error) {
		if e.delay > 0 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if id, ok := p.Path["id"]; ok {
			return json.RawMessage(fmt.Sprintf(`{"path":%q,"id":%v}`, path, id)), nil
		}
		return json.RawMessage(fmt.Sprintf(`{"path":%q}`, path)), nil
	}
}

func newDispatcher(t *testing.T, ops catalog.OperationFactory) *dispatch.Dispatcher {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	reg, err := catalog.Build(c, ops)
	require.NoError(t, err)
	return dispatch.New(reg)
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func decodeReply(t *testing.T, v any) rpcReply {
	t.Helper()
	var data []byte
	switch b := v.(type) {
	case []byte:
		data = b
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	var reply rpcReply
	require.NoError(t, json.Unmarshal(data, &reply), string(data))
	return reply
}

func decodeToolResult(t *testing.T, reply rpcReply) toolResult {
	t.Helper()
	require.Nil(t, reply.Error)
	var res toolResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	return res
}

func callFrame(id int, tool string, args map[string]any) []byte {
	frame, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params":  map[string]any{"name": tool, "arguments": args},
	})
	return frame
}

const initializeFrame = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
