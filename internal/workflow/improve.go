// Package workflow chains the individual operations into the test
// improvement cycle: build, read coverage, generate tests, commit and push.
package workflow

import (
	"context"

	"github.com/fpt/go-testpilot/internal/build"
	"github.com/fpt/go-testpilot/internal/git"
	"github.com/fpt/go-testpilot/internal/testgen"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/fpt/go-testpilot/pkg/message"
)

var logger = pkgLogger.NewComponentLogger("workflow")

// DefaultCommitMessage is used for the commit of generated tests
const DefaultCommitMessage = "Auto-generated improved JUnit tests"

// ErrCoverageMissing is reported when the build left no usable report
const ErrCoverageMissing = "Coverage missing."

// GitSteps collects the outcome of the version-control steps
type GitSteps struct {
	Add    git.AddResult   `json:"add"`
	Commit *CommitStep     `json:"commit,omitempty"`
	Push   *git.PushResult `json:"push,omitempty"`
}

// CommitStep is the outcome of the commit
type CommitStep struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// ImproveResult is the outcome of one improvement cycle
type ImproveResult struct {
	Project         string                   `json:"project"`
	ExitCode        int                      `json:"exit_code"`
	CoveragePercent float64                  `json:"coverage_percent"`
	Suggestions     []testgen.TestSuggestion `json:"suggestions"`
	Files           []testgen.GeneratedFile  `json:"files"`
	Git             *GitSteps                `json:"git,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

// Improver runs the improvement cycle against one project
type Improver struct {
	runner *build.Runner
	writer *testgen.Writer
	git    *git.Client
}

// NewImprover creates an improver
func NewImprover(runner *build.Runner, writer *testgen.Writer, gitClient *git.Client) *Improver {
	return &Improver{runner: runner, writer: writer, git: gitClient}
}

// Run executes every step in order and stops at the first one that leaves
// nothing to continue with. Progress updates go to progress when non-nil.
func (im *Improver) Run(ctx context.Context, projectDir, commitMessage string, progress chan<- string) ImproveResult {
	result := ImproveResult{
		Project:     projectDir,
		Suggestions: []testgen.TestSuggestion{},
		Files:       []testgen.GeneratedFile{},
	}
	log := logger.WithProject(projectDir)

	message.SendProgress(progress, "Running tests in %s", projectDir)
	run := im.runner.RunTests(ctx, projectDir)
	result.ExitCode = run.ExitCode
	if run.Error != "" {
		result.Error = run.Error
		return result
	}

	xmlPath, _ := im.runner.ReportPaths(projectDir)
	if run.ReportPath == "" || run.ReportPath != xmlPath {
		// Suggestions need the XML report; the HTML one only carries totals
		log.WarnWithIcon("❌", "JaCoCo XML report missing", "path", xmlPath)
		result.Error = ErrCoverageMissing
		return result
	}
	result.CoveragePercent = run.CoveragePercent
	message.SendProgress(progress, "Current coverage: %.2f%%", run.CoveragePercent)

	suggested := testgen.SuggestFromReport(xmlPath)
	if suggested.Error != "" {
		result.Error = suggested.Error
		return result
	}
	result.Suggestions = suggested.TestSuggestions
	message.SendProgress(progress, "%d uncovered methods", len(suggested.UncoveredMethods))

	files, err := im.writer.Write(projectDir, suggested.TestSuggestions)
	result.Files = append(result.Files, files...)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	message.SendProgress(progress, "Generated %d test files under %s", len(files), im.writer.Dir(projectDir))

	if commitMessage == "" {
		commitMessage = DefaultCommitMessage
	}

	steps := &GitSteps{}
	result.Git = steps
	steps.Add = im.git.AddAll(ctx)
	if steps.Add.Message != git.MsgStaged {
		result.Error = steps.Add.Stderr
		return result
	}

	commit := im.git.Commit(ctx, commitMessage)
	steps.Commit = &CommitStep{ExitCode: commit.ExitCode, Stdout: commit.Stdout, Stderr: commit.Stderr}
	message.SendProgress(progress, "Committed (exit code %d)", commit.ExitCode)

	push := im.git.Push(ctx, git.PushOptions{})
	steps.Push = &push
	if push.Error != "" {
		result.Error = push.Error
		return result
	}
	if push.DryRun {
		message.SendProgress(progress, "Push simulated (dry-run), exit code %d", push.ExitCode)
	} else {
		message.SendProgress(progress, "Pushed, exit code %d", push.ExitCode)
	}

	log.InfoWithIcon("🎉", "Test improvement cycle complete", "coverage_percent", result.CoveragePercent, "files", len(result.Files))
	return result
}
