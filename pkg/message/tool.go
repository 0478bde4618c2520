package message

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// ToolName identifies a tool in a ToolManager registry
type ToolName string

// ToolDescription is the human readable description shown to callers
type ToolDescription string

func (d ToolDescription) String() string {
	return string(d)
}

// ToolArgument describes one keyword argument a tool accepts
type ToolArgument struct {
	Name        string
	Description string
	Required    bool
	Type        string // "string", "number", "boolean"
}

// ToolArgumentValues holds the keyword arguments of a single call
type ToolArgumentValues map[string]any

// ToolHandler executes a tool call
type ToolHandler func(ctx context.Context, args ToolArgumentValues) (ToolResult, error)

// Tool is a registered, invokable operation
type Tool interface {
	RawName() ToolName
	Name() ToolName
	Description() ToolDescription
	Arguments() []ToolArgument
	Handler() func(ctx context.Context, args ToolArgumentValues) (ToolResult, error)
}

// ToolResult is the outcome of a tool call.
// Fields is the structured result mapping; Text is its JSON rendering.
// Error is set whenever the operation could not complete.
type ToolResult struct {
	Text   string
	Error  string
	Fields map[string]any
}

// NewToolResultError creates a result carrying only an error description.
// The error is also mirrored into Fields so callers always get a mapping.
func NewToolResultError(errorMsg string) ToolResult {
	fields := map[string]any{"error": errorMsg}
	text, _ := renderFields(fields)
	return ToolResult{Error: errorMsg, Fields: fields, Text: text}
}

// NewToolResultFields creates a structured result. An "error" entry, when present
// and non-empty, is surfaced as the result error as well. Fields that cannot be
// encoded (NaN, ±Inf) turn the whole result into an error.
func NewToolResultFields(fields map[string]any) ToolResult {
	text, err := renderFields(fields)
	if err != nil {
		return NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	r := ToolResult{Fields: fields, Text: text}
	if e, ok := fields["error"].(string); ok && e != "" {
		r.Error = e
	}
	return r
}

// NewToolResultJSON creates a structured result from any JSON-encodable value,
// typically a result struct with json tags
func NewToolResultJSON(v any) ToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return NewToolResultError(fmt.Sprintf("result is not an object: %v", err))
	}
	return NewToolResultFields(fields)
}

// IsError reports whether the call could not complete
func (r ToolResult) IsError() bool {
	return r.Error != ""
}

func renderFields(fields map[string]any) (string, error) {
	buf, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// SortedToolNames returns the registry keys in lexical order
func SortedToolNames(tools map[ToolName]Tool) []ToolName {
	names := make([]ToolName, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
