package protocol

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// InitializeHandler handles the MCP initialize request
type InitializeHandler struct {
	logger     *logrus.Logger
	serverInfo ServerInfo
}

// HandleSystem implements the initialize handler
func (h *InitializeHandler) HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	h.logger.Info("Handling MCP initialize request")

	var params map[string]interface{}
	if req.Params != nil {
		if paramsMap, ok := req.Params.(map[string]interface{}); ok {
			params = paramsMap
		}
	}

	clientInfo := map[string]interface{}{
		"name":    "unknown",
		"version": "unknown",
	}
	if params != nil {
		if raw, exists := params["clientInfo"]; exists {
			if clientMap, ok := raw.(map[string]interface{}); ok {
				clientInfo = clientMap
			}
		}
	}

	h.logger.WithFields(logrus.Fields{
		"client_name":    clientInfo["name"],
		"client_version": clientInfo["version"],
	}).Info("MCP client initialized")

	return &JSONRPC2Response{
		Result: map[string]interface{}{
			"protocolVersion": "2025-06-18",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{
					"listChanged": false,
				},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    h.serverInfo.Name,
				"version": h.serverInfo.Version,
			},
		},
	}
}

// GetSystemInfo returns system handler info
func (h *InitializeHandler) GetSystemInfo() SystemInfo {
	return SystemInfo{
		Method:      "initialize",
		Description: "Initialize MCP connection and negotiate capabilities",
	}
}

// PingHandler answers liveness checks
type PingHandler struct {
	logger *logrus.Logger
}

// HandleSystem implements the ping handler
func (h *PingHandler) HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	return &JSONRPC2Response{Result: map[string]interface{}{}}
}

// GetSystemInfo returns system handler info
func (h *PingHandler) GetSystemInfo() SystemInfo {
	return SystemInfo{
		Method:      "ping",
		Description: "Liveness check",
	}
}

// ToolsListHandler handles tools/list requests
type ToolsListHandler struct {
	logger *logrus.Logger
	router *MessageRouter
}

// HandleSystem implements the tools/list handler
func (h *ToolsListHandler) HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	h.logger.Debug("Handling tools/list request")

	tools := make([]map[string]interface{}, 0)
	for _, handler := range h.router.GetToolHandlers() {
		toolInfo := handler.GetToolInfo()
		tool := map[string]interface{}{
			"name":        toolInfo.Name,
			"description": toolInfo.Description,
		}
		if toolInfo.InputSchema != nil {
			tool["inputSchema"] = toolInfo.InputSchema
		}
		tools = append(tools, tool)
	}

	return &JSONRPC2Response{
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}

// GetSystemInfo returns system handler info
func (h *ToolsListHandler) GetSystemInfo() SystemInfo {
	return SystemInfo{
		Method:      "tools/list",
		Description: "List available MCP tools",
	}
}

// ToolsCallHandler handles tools/call requests
type ToolsCallHandler struct {
	logger *logrus.Logger
	router *MessageRouter
}

// HandleSystem implements the tools/call handler
func (h *ToolsCallHandler) HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	h.logger.Debug("Handling tools/call request")

	var params struct {
		Name      string      `json:"name"`
		Arguments interface{} `json:"arguments"`
	}
	if req.Params != nil {
		if paramsData, err := json.Marshal(req.Params); err == nil {
			json.Unmarshal(paramsData, &params)
		}
	}

	if params.Name == "" {
		return &JSONRPC2Response{
			Error: &RPCError{
				Code:    InvalidParams,
				Message: "Missing required parameter 'name'",
			},
		}
	}

	toolHandler, exists := h.router.GetToolHandler(params.Name)
	if !exists {
		return &JSONRPC2Response{
			Error: &RPCError{
				Code:    InvalidParams,
				Message: "Tool not found",
				Data:    params.Name,
			},
		}
	}

	toolReq := &JSONRPC2Request{
		JSONRPC: req.JSONRPC,
		Method:  "tool_call",
		Params:  params.Arguments,
		ID:      req.ID,
	}

	return toolHandler.HandleTool(ctx, toolReq)
}

// GetSystemInfo returns system handler info
func (h *ToolsCallHandler) GetSystemInfo() SystemInfo {
	return SystemInfo{
		Method:      "tools/call",
		Description: "Call a specific MCP tool",
	}
}
