package tool

import (
	"context"
	"io"

	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/internal/workflow"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
)

// WorkflowToolManager runs the whole test improvement cycle as one tool
type WorkflowToolManager struct {
	toolRegistry
	improver       *workflow.Improver
	guard          *infra.PathGuard
	defaultProject string
	progressOut    io.Writer
}

// NewWorkflowToolManager creates a workflow tool manager. Step progress is
// printed to progressOut when it is not nil.
func NewWorkflowToolManager(improver *workflow.Improver, guard *infra.PathGuard, defaultProject string, progressOut io.Writer) domain.ToolManager {
	m := &WorkflowToolManager{
		toolRegistry:   newToolRegistry(),
		improver:       improver,
		guard:          guard,
		defaultProject: defaultProject,
		progressOut:    progressOut,
	}

	m.RegisterTool("improve_tests", "Run the build, generate JUnit tests for every uncovered method, then stage, commit and push them (push is a dry run unless disabled in settings)",
		[]message.ToolArgument{
			projectPathArgument,
			{Name: "commit_message", Description: "Commit message for the generated tests", Required: false, Type: "string"},
		},
		m.handleImproveTests)

	return m
}

func (m *WorkflowToolManager) handleImproveTests(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	projectDir, err := resolveProjectPath(m.guard, args, m.defaultProject)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	var progress chan<- string
	if m.progressOut != nil {
		ch, stop := message.CreateProgressChannel(m.progressOut)
		defer stop()
		progress = ch
	}

	result := m.improver.Run(ctx, projectDir, args.String("commit_message", ""), progress)
	return message.NewToolResultJSON(result), nil
}
