package tool

import (
	"context"

	"github.com/fpt/go-testpilot/internal/build"
	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/internal/testgen"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/coverage"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/fpt/go-testpilot/pkg/message"
)

var logger = pkgLogger.NewComponentLogger("tool")

// GenerateResult lists the test files written for a project
type GenerateResult struct {
	Project string                  `json:"project"`
	Files   []testgen.GeneratedFile `json:"files"`
	Error   string                  `json:"error,omitempty"`
}

// BuildToolManager runs the build, reads coverage and turns uncovered methods
// into test skeletons
type BuildToolManager struct {
	toolRegistry
	runner         *build.Runner
	writer         *testgen.Writer
	guard          *infra.PathGuard
	defaultProject string
}

// NewBuildToolManager creates a build tool manager. defaultProject is used
// when a call names no project.
func NewBuildToolManager(runner *build.Runner, writer *testgen.Writer, guard *infra.PathGuard, defaultProject string) domain.ToolManager {
	m := &BuildToolManager{
		toolRegistry:   newToolRegistry(),
		runner:         runner,
		writer:         writer,
		guard:          guard,
		defaultProject: defaultProject,
	}

	m.registerBuildTools()
	return m
}

func (m *BuildToolManager) registerBuildTools() {
	m.RegisterTool("run_maven_tests", "Run `mvn clean verify` in the project directory and report exit code, JaCoCo coverage per metric and the tail of the build output",
		[]message.ToolArgument{projectPathArgument},
		m.handleRunMavenTests)

	m.RegisterTool("parse_coverage", "Parse a JaCoCo XML or HTML report into per-metric coverage percentages without running the build",
		[]message.ToolArgument{
			{
				Name:        "report_path",
				Description: "Path to jacoco.xml or index.html. Defaults to the report location inside the configured project.",
				Required:    false,
				Type:        "string",
			},
		},
		m.handleParseCoverage)

	m.RegisterTool("suggest_tests", "List methods the JaCoCo XML report shows as never executed and suggest a JUnit test skeleton for each",
		[]message.ToolArgument{projectPathArgument},
		m.handleSuggestTests)

	m.RegisterTool("generate_tests", "Write one JUnit test class per uncovered method into the generated test directory, overwriting previous files",
		[]message.ToolArgument{projectPathArgument},
		m.handleGenerateTests)
}

func (m *BuildToolManager) handleRunMavenTests(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	projectDir, err := resolveProjectPath(m.guard, args, m.defaultProject)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	return message.NewToolResultJSON(m.runner.RunTests(ctx, projectDir)), nil
}

func (m *BuildToolManager) handleParseCoverage(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	reportPath := args.String("report_path", "")
	if reportPath == "" {
		projectDir, err := m.guard.Resolve(m.defaultProject)
		if err != nil {
			return message.NewToolResultError(err.Error()), nil
		}
		reportPath, _ = m.runner.ReportPaths(projectDir)
	}

	resolved, err := m.guard.ResolveReadable(reportPath)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	return message.NewToolResultJSON(coverage.ParseFile(resolved)), nil
}

func (m *BuildToolManager) handleSuggestTests(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	projectDir, err := resolveProjectPath(m.guard, args, m.defaultProject)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	xmlPath, _ := m.runner.ReportPaths(projectDir)
	return message.NewToolResultJSON(testgen.SuggestFromReport(xmlPath)), nil
}

func (m *BuildToolManager) handleGenerateTests(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	projectDir, err := resolveProjectPath(m.guard, args, m.defaultProject)
	if err != nil {
		return message.NewToolResultError(err.Error()), nil
	}

	result := GenerateResult{Project: projectDir, Files: []testgen.GeneratedFile{}}

	xmlPath, _ := m.runner.ReportPaths(projectDir)
	suggested := testgen.SuggestFromReport(xmlPath)
	if suggested.Error != "" {
		result.Error = suggested.Error
		return message.NewToolResultJSON(result), nil
	}

	files, err := m.writer.Write(projectDir, suggested.TestSuggestions)
	result.Files = append(result.Files, files...)
	if err != nil {
		result.Error = err.Error()
	}
	logger.InfoWithIcon("📝", "Generated test files", "count", len(result.Files), "dir", m.writer.Dir(projectDir))

	return message.NewToolResultJSON(result), nil
}
