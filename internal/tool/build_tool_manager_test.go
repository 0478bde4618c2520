package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpt/go-testpilot/internal/build"
	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/internal/infra/infratest"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/internal/testgen"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jacocoReport = `<report name="demo">
  <package name="com/acme">
    <class name="com/acme/Calc" sourcefilename="Calc.java">
      <method name="add" desc="(II)I" line="3">
        <counter type="INSTRUCTION" missed="0" covered="10"/>
      </method>
      <method name="divide" desc="(II)I" line="7">
        <counter type="INSTRUCTION" missed="5" covered="0"/>
      </method>
    </class>
  </package>
  <counter type="INSTRUCTION" missed="20" covered="80"/>
</report>`

// buildFixture is a working dir holding one Maven project, "proj"
type buildFixture struct {
	workDir string
	project string
	runner  *infratest.RecordingRunner
	manager domain.ToolManager
}

func newBuildFixture(t *testing.T, writeReportOnBuild bool) *buildFixture {
	t.Helper()
	f := &buildFixture{workDir: t.TempDir()}
	f.project = filepath.Join(f.workDir, "proj")
	require.NoError(t, os.MkdirAll(f.project, 0755))

	f.runner = &infratest.RecordingRunner{
		Respond: func(_ context.Context, call infratest.Call) repository.ProcessResult {
			if writeReportOnBuild {
				f.writeReport(t)
			}
			return repository.ProcessResult{Stdout: "BUILD SUCCESS"}
		},
	}

	settings := config.GetDefaultSettings()
	runner, err := build.NewRunner(f.runner, settings.Build, settings.Coverage)
	require.NoError(t, err)
	guard := infra.NewPathGuard(repository.FileSystemConfig{}, f.workDir)
	writer := testgen.NewWriter(settings.Generate.Dir, settings.Generate.Package)

	f.manager = NewBuildToolManager(runner, writer, guard, "proj")
	return f
}

func (f *buildFixture) writeReport(t *testing.T) {
	dir := filepath.Join(f.project, "target", "site", "jacoco")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jacoco.xml"), []byte(jacocoReport), 0644))
}

func (f *buildFixture) call(t *testing.T, name string, args message.ToolArgumentValues) message.ToolResult {
	t.Helper()
	result, err := f.manager.CallTool(context.Background(), message.ToolName(name), args)
	require.NoError(t, err)
	return result
}

func TestBuildToolManager_RunMavenTests(t *testing.T) {
	f := newBuildFixture(t, true)

	result := f.call(t, "run_maven_tests", message.ToolArgumentValues{})

	require.False(t, result.IsError(), result.Text)
	assert.Equal(t, 0.0, result.Fields["exit_code"])
	assert.Equal(t, 80.0, result.Fields["coverage_percent"])
	cov, ok := result.Fields["coverage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 80.0, cov["instructions"])
	assert.Nil(t, cov["branches"])

	calls := f.runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "mvn clean verify", calls[0].Line())
	assert.Equal(t, f.project, calls[0].Dir)
}

func TestBuildToolManager_ProjectPathAndAlias(t *testing.T) {
	f := newBuildFixture(t, false)
	other := filepath.Join(f.workDir, "other")
	require.NoError(t, os.MkdirAll(other, 0755))

	f.call(t, "run_maven_tests", message.ToolArgumentValues{"project_path": "other"})
	f.call(t, "run_maven_tests", message.ToolArgumentValues{"module": "other"})

	for _, call := range f.runner.Calls() {
		assert.Equal(t, other, call.Dir)
	}
}

func TestBuildToolManager_RejectsPathsOutsideWorkingDir(t *testing.T) {
	f := newBuildFixture(t, false)

	for _, tool := range []string{"run_maven_tests", "suggest_tests", "generate_tests"} {
		result := f.call(t, tool, message.ToolArgumentValues{"project_path": "../.."})
		assert.True(t, result.IsError(), tool)
	}
	assert.Empty(t, f.runner.Calls())
}

func TestBuildToolManager_MissingProject(t *testing.T) {
	f := newBuildFixture(t, false)

	result := f.call(t, "run_maven_tests", message.ToolArgumentValues{"project_path": "nope"})

	assert.Equal(t, float64(repository.ExitCodeNotFound), result.Fields["exit_code"])
	assert.Contains(t, result.Fields["stderr"], "Module directory not found")
	assert.Empty(t, f.runner.Calls())
}

func TestBuildToolManager_ParseCoverage(t *testing.T) {
	f := newBuildFixture(t, false)

	missing := f.call(t, "parse_coverage", message.ToolArgumentValues{})
	assert.False(t, missing.IsError())
	assert.Equal(t, false, missing.Fields["available"])

	f.writeReport(t)
	parsed := f.call(t, "parse_coverage", message.ToolArgumentValues{"report_path": "proj/target/site/jacoco/jacoco.xml"})
	assert.Equal(t, true, parsed.Fields["available"])
	assert.Equal(t, 80.0, parsed.Fields["coverage_percent"])
	assert.Empty(t, f.runner.Calls(), "parsing must not run the build")
}

func TestBuildToolManager_SuggestTests(t *testing.T) {
	f := newBuildFixture(t, false)

	missing := f.call(t, "suggest_tests", message.ToolArgumentValues{})
	assert.Contains(t, missing.Error, "JaCoCo report not found at")

	f.writeReport(t)
	result := f.call(t, "suggest_tests", message.ToolArgumentValues{})
	require.False(t, result.IsError(), result.Text)

	uncovered, ok := result.Fields["uncovered_methods"].([]any)
	require.True(t, ok)
	require.Len(t, uncovered, 1)
	assert.Equal(t, map[string]any{"package": "com/acme", "class": "com/acme/Calc", "method": "divide"}, uncovered[0])

	suggestions, ok := result.Fields["test_suggestions"].([]any)
	require.True(t, ok)
	require.Len(t, suggestions, 1)
	suggestion := suggestions[0].(map[string]any)
	assert.Equal(t, "test_divide", suggestion["suggested_test_name"])
}

func TestBuildToolManager_GenerateTests(t *testing.T) {
	f := newBuildFixture(t, false)
	f.writeReport(t)

	result := f.call(t, "generate_tests", message.ToolArgumentValues{})
	require.False(t, result.IsError(), result.Text)

	files, ok := result.Fields["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 1)

	path := filepath.Join(f.project, "src", "test", "java", "generated", "Generated_divide_Test.java")
	assert.Equal(t, path, files[0].(map[string]any)["path"])
	assert.FileExists(t, path)
}
