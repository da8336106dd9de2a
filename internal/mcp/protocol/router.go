package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ToolHandler defines the interface for MCP tool handlers
type ToolHandler interface {
	HandleTool(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response
	GetToolInfo() ToolInfo
	ValidateParams(params interface{}) error
}

// SystemHandler defines the interface for MCP system handlers
type SystemHandler interface {
	HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response
	GetSystemInfo() SystemInfo
}

// ToolInfo contains metadata about a tool
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// SystemInfo contains metadata about system handlers
type SystemInfo struct {
	Method      string `json:"method"`
	Description string `json:"description"`
}

// ServerInfo identifies the server in the initialize handshake
type ServerInfo struct {
	Name    string
	Version string
}

// MessageRouter routes MCP messages to tool and system handlers
type MessageRouter struct {
	logger         *logrus.Logger
	serverInfo     ServerInfo
	toolHandlers   map[string]ToolHandler
	systemHandlers map[string]SystemHandler
	mu             sync.RWMutex
}

// NewMessageRouter creates a new message router
func NewMessageRouter(logger *logrus.Logger, serverInfo ServerInfo) *MessageRouter {
	router := &MessageRouter{
		logger:         logger,
		serverInfo:     serverInfo,
		toolHandlers:   make(map[string]ToolHandler),
		systemHandlers: make(map[string]SystemHandler),
	}

	router.registerSystemHandlers()

	return router
}

// registerSystemHandlers registers built-in MCP system message handlers
func (mr *MessageRouter) registerSystemHandlers() {
	mr.systemHandlers["initialize"] = &InitializeHandler{logger: mr.logger, serverInfo: mr.serverInfo}
	mr.systemHandlers["ping"] = &PingHandler{logger: mr.logger}
	mr.systemHandlers["tools/list"] = &ToolsListHandler{logger: mr.logger, router: mr}
	mr.systemHandlers["tools/call"] = &ToolsCallHandler{logger: mr.logger, router: mr}

	mr.logger.Debug("Registered system message handlers")
}

// ProcessMessage parses and routes a raw JSON-RPC message, returning the
// serialized response. A nil result means the message was a notification
// and no response should be written.
func (mr *MessageRouter) ProcessMessage(ctx context.Context, rawMessage []byte) ([]byte, error) {
	var req JSONRPC2Request
	if err := json.Unmarshal(rawMessage, &req); err != nil {
		return json.Marshal(NewErrorResponse(nil, ParseError, "Parse error", err.Error()))
	}

	if req.JSONRPC != "2.0" {
		return json.Marshal(NewErrorResponse(req.ID, InvalidRequest, "Invalid Request", "JSON-RPC version must be 2.0"))
	}

	// Notifications carry no id and get no response
	if req.ID == nil {
		mr.logger.WithField("method", req.Method).Debug("Dropping notification")
		return nil, nil
	}

	response := mr.HandleRequest(ctx, &req)
	response.JSONRPC = "2.0"
	response.ID = req.ID
	return json.Marshal(response)
}

// HandleRequest routes a parsed request to its handler
func (mr *MessageRouter) HandleRequest(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	mr.logger.WithField("method", req.Method).Debug("Routing message")

	mr.mu.RLock()
	handler, exists := mr.systemHandlers[req.Method]
	mr.mu.RUnlock()

	if exists {
		return handler.HandleSystem(ctx, req)
	}

	return &JSONRPC2Response{
		Error: &RPCError{
			Code:    MethodNotFound,
			Message: "Method not found",
			Data: fmt.Sprintf("No handler found for method %q, supported methods: %s",
				req.Method, strings.Join(mr.GetSupportedMethods(), ", ")),
		},
	}
}

// GetSupportedMethods returns all supported methods in sorted order
func (mr *MessageRouter) GetSupportedMethods() []string {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	methods := make([]string, 0, len(mr.systemHandlers))
	for method := range mr.systemHandlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// RegisterToolHandler registers a tool handler
func (mr *MessageRouter) RegisterToolHandler(name string, handler ToolHandler) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.toolHandlers[name] = handler
	mr.logger.WithField("tool_name", name).Debug("Registered tool handler")
}

// GetToolHandlers returns all registered tool handlers
func (mr *MessageRouter) GetToolHandlers() map[string]ToolHandler {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handlers := make(map[string]ToolHandler, len(mr.toolHandlers))
	for name, handler := range mr.toolHandlers {
		handlers[name] = handler
	}
	return handlers
}

// GetToolHandler retrieves a specific tool handler
func (mr *MessageRouter) GetToolHandler(name string) (ToolHandler, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handler, exists := mr.toolHandlers[name]
	return handler, exists
}

// GetStats returns router statistics
func (mr *MessageRouter) GetStats() map[string]interface{} {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	return map[string]interface{}{
		"registered_tools": len(mr.toolHandlers),
		"system_handlers":  len(mr.systemHandlers),
	}
}
