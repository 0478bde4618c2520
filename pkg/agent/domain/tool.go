package domain

import (
	"context"

	"github.com/fpt/go-testpilot/pkg/message"
)

// ToolManager is a registry of named tools a calling agent can invoke
type ToolManager interface {
	GetTool(name message.ToolName) (message.Tool, bool)
	GetTools() map[message.ToolName]message.Tool
	CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error)
	RegisterTool(name message.ToolName, description message.ToolDescription, arguments []message.ToolArgument, handler func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error))
}
