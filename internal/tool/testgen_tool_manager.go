package tool

import (
	"context"

	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/internal/scan"
	"github.com/fpt/go-testpilot/internal/testgen"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
)

// TestgenToolManager provides source-driven boundary test generation
type TestgenToolManager struct {
	toolRegistry
	guard *infra.PathGuard
}

// NewTestgenToolManager creates a testgen tool manager
func NewTestgenToolManager(guard *infra.PathGuard) domain.ToolManager {
	m := &TestgenToolManager{toolRegistry: newToolRegistry(), guard: guard}

	m.RegisterTool("spec_based_tester", "Generate boundary-value JUnit skeletons (MIN/MID/MAX) for public methods with numeric parameters. Signature matching is a heuristic.",
		[]message.ToolArgument{
			{Name: "java_file", Description: "Path to a .java source file", Required: true, Type: "string"},
		},
		m.handleSpecBasedTester)

	return m
}

func (m *TestgenToolManager) handleSpecBasedTester(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	javaFile := args.String("java_file", "")
	if javaFile == "" {
		return message.NewToolResultError("java_file parameter is required"), nil
	}

	resolved, err := m.guard.ResolveReadable(javaFile)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	result := testgen.BoundaryTests(ctx, resolved)
	result.File = javaFile
	return message.NewToolResultJSON(result), nil
}

// ReviewToolManager provides the heuristic source scanner
type ReviewToolManager struct {
	toolRegistry
	scanner *scan.Scanner
	guard   *infra.PathGuard
}

// NewReviewToolManager creates a review tool manager
func NewReviewToolManager(scanner *scan.Scanner, guard *infra.PathGuard) domain.ToolManager {
	m := &ReviewToolManager{toolRegistry: newToolRegistry(), scanner: scanner, guard: guard}

	m.RegisterTool("code_review_agent", "Scan Java sources for missing Javadoc on public methods, long methods and nested loops. Findings are heuristic.",
		[]message.ToolArgument{
			{Name: "java_dir", Description: "Directory to scan recursively", Required: true, Type: "string"},
		},
		m.handleCodeReview)

	return m
}

func (m *ReviewToolManager) handleCodeReview(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	javaDir := args.String("java_dir", "")
	if javaDir == "" {
		return message.NewToolResultError("java_dir parameter is required"), nil
	}

	resolved, err := m.guard.Resolve(javaDir)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	result := m.scanner.ScanDir(resolved)
	result.Dir = javaDir
	return message.NewToolResultJSON(result), nil
}
