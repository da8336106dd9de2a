package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/protocol"
)

// registerSDKTools exposes every registered tool through the MCP SDK server
// used for stdio sessions.
func (s *Server) registerSDKTools() error {
	s.logger.Info("Registering tools with MCP SDK...")

	toolsInfo := s.toolRegistry.GetRegisteredToolsInfo()

	for _, toolInfo := range toolsInfo {
		toolDef := &mcp.Tool{
			Name:        toolInfo.Name,
			Description: toolInfo.Description,
		}

		s.mcpServer.AddTool(toolDef, s.newSDKToolHandler(toolInfo.Name))
		s.logger.WithField("tool_name", toolInfo.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools")
	return nil
}

// newSDKToolHandler adapts an SDK tool call onto the internal JSON-RPC router.
func (s *Server) newSDKToolHandler(toolName string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.WithField("tool", toolName).Debug("Handling MCP SDK tool call")

		// The SDK delivers wire arguments as a json.RawMessage behind an
		// any field; in-process callers may hand over a decoded map.
		var args map[string]interface{}
		if req.Params != nil {
			switch v := req.Params.Arguments.(type) {
			case json.RawMessage:
				if len(v) > 0 {
					if err := json.Unmarshal(v, &args); err != nil {
						return errorResult("Invalid arguments", err), nil
					}
				}
			case map[string]interface{}:
				args = v
			}
		}

		handler, ok := s.router.GetToolHandler(toolName)
		if !ok {
			return errorResult("Unknown tool", fmt.Errorf("tool %s not registered", toolName)), nil
		}

		response := handler.HandleTool(ctx, &protocol.JSONRPC2Request{
			JSONRPC: "2.0",
			Method:  toolName,
			Params:  args,
		})

		if response.Error != nil {
			return errorResult(response.Error.Message, fmt.Errorf("%v", response.Error.Data)), nil
		}

		return toCallToolResult(response.Result), nil
	}
}

// toCallToolResult converts an internal tool result to the SDK shape.
func toCallToolResult(result interface{}) *mcp.CallToolResult {
	if resultMap, ok := result.(map[string]interface{}); ok {
		if content, ok := resultMap["content"].([]map[string]interface{}); ok {
			out := &mcp.CallToolResult{}
			for _, item := range content {
				if text, ok := item["text"].(string); ok {
					out.Content = append(out.Content, &mcp.TextContent{Text: text})
				}
			}
			if len(out.Content) > 0 {
				return out
			}
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errorResult("Failed to encode result", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}

// errorResult creates a standardized error result for tool calls.
func errorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
