package tool

import (
	"context"
	"fmt"

	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/pkg/message"
)

// toolRegistry is the map-backed half of domain.ToolManager shared by the
// concrete managers
type toolRegistry struct {
	tools map[message.ToolName]message.Tool
}

func newToolRegistry() toolRegistry {
	return toolRegistry{tools: make(map[message.ToolName]message.Tool)}
}

func (r *toolRegistry) GetTool(name message.ToolName) (message.Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

func (r *toolRegistry) GetTools() map[message.ToolName]message.Tool {
	return r.tools
}

func (r *toolRegistry) CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
	tool, exists := r.tools[name]
	if !exists {
		return message.NewToolResultError(fmt.Sprintf("tool '%s' not found", name)), nil
	}

	return tool.Handler()(ctx, args)
}

func (r *toolRegistry) RegisterTool(name message.ToolName, description message.ToolDescription, arguments []message.ToolArgument, handler func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)) {
	r.tools[name] = &registeredTool{
		name:        name,
		description: description,
		arguments:   arguments,
		handler:     handler,
	}
}

type registeredTool struct {
	name        message.ToolName
	description message.ToolDescription
	arguments   []message.ToolArgument
	handler     func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)
}

func (t *registeredTool) RawName() message.ToolName {
	return t.name
}

func (t *registeredTool) Name() message.ToolName {
	return t.name
}

func (t *registeredTool) Description() message.ToolDescription {
	return t.description
}

func (t *registeredTool) Handler() func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return t.handler
}

func (t *registeredTool) Arguments() []message.ToolArgument {
	return t.arguments
}

// projectPathArgument is shared by every tool that works on a Maven project
var projectPathArgument = message.ToolArgument{
	Name:        "project_path",
	Description: "Maven project directory, relative to the working directory. Defaults to the configured project path. 'module' is accepted as an alias.",
	Required:    false,
	Type:        "string",
}

// resolveProjectPath reads project_path (or its alias module), falling back to
// def, and confines the result to the allowed directories
func resolveProjectPath(guard *infra.PathGuard, args message.ToolArgumentValues, def string) (string, error) {
	path := args.String("project_path", args.String("module", def))
	return guard.Resolve(path)
}
