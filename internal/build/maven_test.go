package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/infra/infratest"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/pkg/coverage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report80 = `<report name="r"><counter type="INSTRUCTION" missed="20" covered="80"/></report>`

func newTestRunner(t *testing.T, runner repository.CommandRunner, gate string) *Runner {
	t.Helper()
	settings := config.GetDefaultSettings()
	settings.Coverage.Gate = gate
	r, err := NewRunner(runner, settings.Build, settings.Coverage)
	require.NoError(t, err)
	return r
}

// writeReportOnBuild makes the fake build drop a JaCoCo report like mvn verify would
func writeReportOnBuild(t *testing.T, content string, result repository.ProcessResult) func(context.Context, infratest.Call) repository.ProcessResult {
	return func(_ context.Context, call infratest.Call) repository.ProcessResult {
		dir := filepath.Join(call.Dir, "target", "site", "jacoco")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jacoco.xml"), []byte(content), 0644))
		return result
	}
}

func TestRunTests_ParsesReport(t *testing.T) {
	project := t.TempDir()
	runner := &infratest.RecordingRunner{
		Respond: writeReportOnBuild(t, report80, repository.ProcessResult{Stdout: "BUILD SUCCESS"}),
	}

	result := newTestRunner(t, runner, "").RunTests(context.Background(), project)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 80.0, result.CoveragePercent)
	assert.Empty(t, result.Error)
	assert.Equal(t, "BUILD SUCCESS", result.Stdout)
	v, ok := result.Coverage.Value(coverage.MetricInstructions)
	require.True(t, ok)
	assert.Equal(t, 80.0, v)

	require.Len(t, runner.Calls(), 1)
	call := runner.Calls()[0]
	assert.Equal(t, project, call.Dir)
	assert.Equal(t, "mvn clean verify", call.Line())
}

func TestRunTests_MissingProjectDir(t *testing.T) {
	runner := &infratest.RecordingRunner{}
	missing := filepath.Join(t.TempDir(), "java_agent")

	result := newTestRunner(t, runner, "").RunTests(context.Background(), missing)

	assert.Equal(t, repository.ExitCodeNotFound, result.ExitCode)
	assert.Contains(t, result.Stderr, "Module directory not found")
	assert.Empty(t, runner.Calls(), "build tool must not be invoked")
	assert.Len(t, result.Coverage, len(coverage.Metrics))
}

func TestRunTests_Timeout(t *testing.T) {
	runner := &infratest.RecordingRunner{
		Respond: func(context.Context, infratest.Call) repository.ProcessResult {
			return repository.ProcessResult{ExitCode: repository.ExitCodeTimeout, TimedOut: true, Stdout: "partial"}
		},
	}

	result := newTestRunner(t, runner, "").RunTests(context.Background(), t.TempDir())

	assert.Equal(t, ErrTimedOut, result.Error)
	assert.Equal(t, 0.0, result.CoveragePercent)
	assert.Equal(t, "partial", result.Stdout)
}

func TestRunTests_NoReportAfterSuccess(t *testing.T) {
	runner := &infratest.RecordingRunner{}

	result := newTestRunner(t, runner, "").RunTests(context.Background(), t.TempDir())

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 0.0, result.CoveragePercent)
	assert.Contains(t, result.Stderr, "JaCoCo report not found after a successful build.")
}

func TestRunTests_FailedBuildKeepsExitCode(t *testing.T) {
	runner := &infratest.RecordingRunner{
		Respond: func(context.Context, infratest.Call) repository.ProcessResult {
			return repository.ProcessResult{ExitCode: 1, Stderr: "[ERROR] Tests run: 3, Failures: 1"}
		},
	}

	result := newTestRunner(t, runner, "").RunTests(context.Background(), t.TempDir())

	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, "[ERROR] Tests run: 3, Failures: 1", result.Stderr)
	assert.Empty(t, result.Error)
}

func TestRunTests_MalformedReport(t *testing.T) {
	runner := &infratest.RecordingRunner{
		Respond: writeReportOnBuild(t, "<report", repository.ProcessResult{}),
	}

	result := newTestRunner(t, runner, "").RunTests(context.Background(), t.TempDir())

	assert.Contains(t, result.Stderr, "Error parsing report")
	assert.Equal(t, 0.0, result.CoveragePercent)
}

func TestRunTests_Gate(t *testing.T) {
	runner := &infratest.RecordingRunner{
		Respond: writeReportOnBuild(t, report80, repository.ProcessResult{}),
	}

	result := newTestRunner(t, runner, "instructions >= 90").RunTests(context.Background(), t.TempDir())

	assert.Equal(t, "instructions >= 90", result.Gate)
	require.NotNil(t, result.GatePassed)
	assert.False(t, *result.GatePassed)
}

func TestNewRunner_InvalidGate(t *testing.T) {
	settings := config.GetDefaultSettings()
	settings.Coverage.Gate = "instructions >>> 3"

	_, err := NewRunner(&infratest.RecordingRunner{}, settings.Build, settings.Coverage)
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "hello", Tail("hello", 0))
	assert.Equal(t, "hello", Tail("hello", 10))
	assert.Equal(t, "llo", Tail("hello", 3))
	assert.Equal(t, "éé", Tail("aéé", 2))
}
