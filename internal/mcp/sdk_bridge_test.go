package mcp

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/protocol"
)

// recordingTool captures the params the bridge hands it.
type recordingTool struct {
	lastParams interface{}
	response   *protocol.JSONRPC2Response
}

func (r *recordingTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	r.lastParams = req.Params
	if r.response != nil {
		return r.response
	}
	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "ok"},
			},
		},
	}
}

func (r *recordingTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "record_tool",
		Description: "records params",
		InputSchema: map[string]interface{}{"type": "object"},
	}
}

func (r *recordingTool) ValidateParams(params interface{}) error { return nil }

func newBridgeServer(t *testing.T, tool *recordingTool) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := protocol.NewMessageRouter(logger, protocol.ServerInfo{Name: "nexonco", Version: "test"})
	router.RegisterToolHandler("record_tool", tool)

	return &Server{logger: logger, router: router}
}

func callToolRequest(args interface{}) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParams{Name: "record_tool", Arguments: args},
	}
}

func TestSDKToolHandler_RawMessageArguments(t *testing.T) {
	tool := &recordingTool{}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("record_tool")

	result, err := handler(context.Background(), callToolRequest(json.RawMessage(`{"disease_name":"Melanoma"}`)))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	params, ok := tool.lastParams.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Melanoma", params["disease_name"])

	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "ok", text.Text)
}

func TestSDKToolHandler_MapArguments(t *testing.T) {
	tool := &recordingTool{}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("record_tool")

	_, err := handler(context.Background(), callToolRequest(map[string]interface{}{"therapy_name": "Cetuximab"}))
	require.NoError(t, err)

	params, ok := tool.lastParams.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Cetuximab", params["therapy_name"])
}

func TestSDKToolHandler_NoArguments(t *testing.T) {
	tool := &recordingTool{}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("record_tool")

	result, err := handler(context.Background(), callToolRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Nil(t, tool.lastParams)
}

func TestSDKToolHandler_MalformedArguments(t *testing.T) {
	tool := &recordingTool{}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("record_tool")

	result, err := handler(context.Background(), callToolRequest(json.RawMessage(`{"broken`)))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Nil(t, tool.lastParams)
}

func TestSDKToolHandler_UnknownTool(t *testing.T) {
	tool := &recordingTool{}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("missing_tool")

	result, err := handler(context.Background(), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSDKToolHandler_ToolError(t *testing.T) {
	tool := &recordingTool{response: &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.MCPToolError,
			Message: "search failed",
			Data:    "upstream unavailable",
		},
	}}
	s := newBridgeServer(t, tool)
	handler := s.newSDKToolHandler("record_tool")

	result, err := handler(context.Background(), callToolRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "search failed")
}
