// Package build wraps the build tool: it runs the test-and-report goal in a
// project directory and reads the coverage report the build leaves behind.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/pkg/coverage"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("build")

// ErrTimedOut is the error text reported when the build exceeds its timeout
const ErrTimedOut = "Maven test run timed out"

// TestRunResult is the outcome of one build-and-report run
type TestRunResult struct {
	ExitCode        int               `json:"exit_code"`
	CoveragePercent float64           `json:"coverage_percent"`
	Coverage        coverage.Coverage `json:"coverage"`
	ReportPath      string            `json:"report_path,omitempty"`
	Gate            string            `json:"gate,omitempty"`
	GatePassed      *bool             `json:"gate_passed,omitempty"`
	Stdout          string            `json:"stdout"`
	Stderr          string            `json:"stderr"`
	Error           string            `json:"error,omitempty"`
}

// Runner runs the build tool and scrapes its coverage report
type Runner struct {
	commands repository.CommandRunner
	build    config.BuildSettings
	reports  config.CoverageSettings
	gate     *coverage.Gate
}

// NewRunner creates a build runner; the coverage gate is compiled up front
func NewRunner(commands repository.CommandRunner, build config.BuildSettings, reports config.CoverageSettings) (*Runner, error) {
	gate, err := coverage.CompileGate(reports.Gate)
	if err != nil {
		return nil, err
	}
	return &Runner{commands: commands, build: build, reports: reports, gate: gate}, nil
}

// ReportPaths returns the XML and HTML report locations for a project
func (r *Runner) ReportPaths(projectDir string) (xmlPath, htmlPath string) {
	return filepath.Join(projectDir, r.reports.ReportPath), filepath.Join(projectDir, r.reports.HTMLReportPath)
}

// RunTests runs the configured build goal in projectDir, waits for it (bounded
// by the build timeout) and parses the coverage report.
func (r *Runner) RunTests(ctx context.Context, projectDir string) TestRunResult {
	result := TestRunResult{Coverage: coverage.EmptyCoverage()}

	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		result.ExitCode = repository.ExitCodeNotFound
		result.Stderr = fmt.Sprintf("Module directory not found: %s", projectDir)
		return result
	}

	if r.build.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.build.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	logger.InfoWithIcon("🧪", "Running build", "command", r.build.Command, "args", r.build.Args, "dir", projectDir)
	proc := r.commands.Run(ctx, projectDir, r.build.Command, r.build.Args...)

	result.ExitCode = proc.ExitCode
	result.Stdout = Tail(proc.Stdout, r.build.OutputTailChars)
	result.Stderr = proc.Stderr

	if proc.TimedOut {
		logger.WarnWithIcon("⏱️", "Build timed out", "timeout_seconds", r.build.TimeoutSeconds)
		result.Error = ErrTimedOut
		result.Stderr = Tail(result.Stderr, r.build.OutputTailChars)
		return result
	}

	r.readReport(projectDir, &result)
	result.Stderr = Tail(result.Stderr, r.build.OutputTailChars)

	logger.InfoWithIcon("📊", "Build finished", "exit_code", result.ExitCode, "coverage_percent", result.CoveragePercent)
	return result
}

// readReport fills coverage fields from the XML report, falling back to the
// HTML report when no XML was produced
func (r *Runner) readReport(projectDir string, result *TestRunResult) {
	xmlPath, htmlPath := r.ReportPaths(projectDir)

	parsed := coverage.ParseFile(xmlPath)
	if !parsed.Available && parsed.Error == "" {
		parsed = coverage.ParseFile(htmlPath)
	}

	switch {
	case parsed.Error != "":
		result.Stderr = appendLine(result.Stderr, "Error parsing report: "+parsed.Error)
		return
	case !parsed.Available:
		if result.ExitCode == 0 {
			result.Stderr = appendLine(result.Stderr, "JaCoCo report not found after a successful build.")
		}
		return
	}

	result.ReportPath = parsed.Path
	result.Coverage = parsed.Coverage
	result.CoveragePercent = parsed.Percent

	if r.gate == nil {
		return
	}
	result.Gate = r.gate.String()
	passed, err := r.gate.Evaluate(parsed.Coverage)
	if err != nil {
		result.Stderr = appendLine(result.Stderr, err.Error())
		return
	}
	result.GatePassed = &passed
}

// Tail keeps the last n characters of s; n <= 0 keeps everything
func Tail(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n" + line
}
