package tools

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/protocol"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/service"
)

// ToolRegistry manages registration of MCP tools with the message router.
type ToolRegistry struct {
	logger *logrus.Logger
	router *protocol.MessageRouter
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry(logger *logrus.Logger, router *protocol.MessageRouter) *ToolRegistry {
	return &ToolRegistry{
		logger: logger,
		router: router,
	}
}

// RegisterAllTools registers every available tool with the router.
func (r *ToolRegistry) RegisterAllTools(svc *service.EvidenceService) {
	searchTool := NewEvidenceSearchTool(r.logger, svc)
	r.router.RegisterToolHandler(searchTool.GetToolInfo().Name, searchTool)

	r.logger.WithField("tools", len(r.router.GetToolHandlers())).Info("All MCP tools registered successfully")
}

// GetRegisteredToolsInfo returns metadata for all registered tools.
func (r *ToolRegistry) GetRegisteredToolsInfo() []protocol.ToolInfo {
	handlers := r.router.GetToolHandlers()
	infos := make([]protocol.ToolInfo, 0, len(handlers))
	for _, handler := range handlers {
		infos = append(infos, handler.GetToolInfo())
	}
	return infos
}

// ValidateAllTools checks that each registered tool exposes complete metadata.
func (r *ToolRegistry) ValidateAllTools() error {
	for name, handler := range r.router.GetToolHandlers() {
		info := handler.GetToolInfo()
		if info.Name == "" {
			return fmt.Errorf("tool %s has empty name", name)
		}
		if info.Description == "" {
			return fmt.Errorf("tool %s has empty description", name)
		}
		if info.InputSchema == nil {
			return fmt.Errorf("tool %s has no input schema", name)
		}
	}
	return nil
}
