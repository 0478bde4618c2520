// Package mcp exposes a tool manager as an MCP server over stdio or SSE.
package mcp

import (
	"context"
	"fmt"

	"github.com/fpt/go-testpilot/pkg/agent/domain"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/fpt/go-testpilot/pkg/message"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var logger = pkgLogger.NewComponentLogger("mcp")

// Transports accepted by Serve
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// NewServer registers every tool of the manager on a new MCP server
func NewServer(name, version string, tools domain.ToolManager) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, toolName := range message.SortedToolNames(tools.GetTools()) {
		t, _ := tools.GetTool(toolName)
		s.AddTool(ToolDefinition(t), Handler(tools, toolName))
	}

	logger.DebugWithIcon("🔌", "MCP tools registered", "count", len(tools.GetTools()))
	return s
}

// ToolDefinition converts a registered tool into its MCP description
func ToolDefinition(t message.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description().String())}

	for _, arg := range t.Arguments() {
		props := []mcp.PropertyOption{mcp.Description(arg.Description)}
		if arg.Required {
			props = append(props, mcp.Required())
		}

		switch arg.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(arg.Name, props...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(arg.Name, props...))
		default:
			opts = append(opts, mcp.WithString(arg.Name, props...))
		}
	}

	return mcp.NewTool(string(t.Name()), opts...)
}

// Handler adapts one tool of the manager to an MCP tool handler. Results are
// returned as JSON text; a result with an error is flagged as a tool error.
func Handler(tools domain.ToolManager, name message.ToolName) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := message.ToolArgumentValues(request.GetArguments())
		if args == nil {
			args = message.ToolArgumentValues{}
		}

		result, err := tools.CallTool(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tool %s failed: %v", name, err)), nil
		}

		if result.IsError() {
			return mcp.NewToolResultError(result.Text), nil
		}
		return mcp.NewToolResultText(result.Text), nil
	}
}

// Serve blocks serving s on the given transport. addr is only used by SSE.
func Serve(ctx context.Context, s *server.MCPServer, transport, addr string) error {
	switch transport {
	case TransportStdio:
		logger.InfoWithIcon("🔌", "Serving MCP over stdio")
		return server.ServeStdio(s)
	case TransportSSE:
		sse := server.NewSSEServer(s)
		go func() {
			<-ctx.Done()
			if err := sse.Shutdown(context.Background()); err != nil {
				logger.Warn("SSE shutdown failed", "error", err)
			}
		}()
		logger.InfoWithIcon("🔌", "Serving MCP over SSE", "addr", addr)
		return sse.Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (must be 'stdio' or 'sse')", transport)
	}
}
