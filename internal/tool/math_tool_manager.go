package tool

import (
	"context"
	"fmt"
	"math"

	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
)

// MathToolManager provides the arithmetic tools
type MathToolManager struct {
	toolRegistry
}

// NewMathToolManager creates a math tool manager with add and sqrt registered
func NewMathToolManager() domain.ToolManager {
	m := &MathToolManager{toolRegistry: newToolRegistry()}

	m.RegisterTool("add", "Add two numbers",
		[]message.ToolArgument{
			{Name: "a", Description: "First addend", Required: true, Type: "number"},
			{Name: "b", Description: "Second addend", Required: true, Type: "number"},
		},
		m.handleAdd)

	m.RegisterTool("sqrt", "Return the square root of x",
		[]message.ToolArgument{
			{Name: "x", Description: "Non-negative number", Required: true, Type: "number"},
		},
		m.handleSqrt)

	return m
}

func (m *MathToolManager) handleAdd(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	a, err := args.Number("a")
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}
	b, err := args.Number("b")
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	return finiteResult(a + b), nil
}

func (m *MathToolManager) handleSqrt(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	x, err := args.Number("x")
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}
	if math.IsNaN(x) {
		return message.NewToolResultError("math domain error: x is not a number"), nil
	}
	if x < 0 {
		return message.NewToolResultError(fmt.Sprintf("math domain error: cannot take the square root of %g", x)), nil
	}

	return finiteResult(math.Sqrt(x)), nil
}

// finiteResult wraps v, reporting NaN and ±Inf as errors since JSON cannot carry them
func finiteResult(v float64) message.ToolResult {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return message.NewToolResultError(fmt.Sprintf("math range error: result %g is not finite", v))
	}
	return message.NewToolResultFields(map[string]any{"result": v})
}
