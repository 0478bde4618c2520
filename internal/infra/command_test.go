package infra

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecCommandRunner_CapturesOutputAndExitCode(t *testing.T) {
	skipWithoutShell(t)
	runner := NewExecCommandRunner()

	result := runner.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err 1>&2; exit 3")

	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.False(t, result.TimedOut)
	assert.Equal(t, []string{"sh", "-c", "echo out; echo err 1>&2; exit 3"}, result.Command)
}

func TestExecCommandRunner_Success(t *testing.T) {
	skipWithoutShell(t)
	result := NewExecCommandRunner().Run(context.Background(), "", "sh", "-c", "true")

	assert.True(t, result.Success())
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecCommandRunner_Timeout(t *testing.T) {
	skipWithoutShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := NewExecCommandRunner().Run(ctx, "", "sh", "-c", "exec sleep 5")

	assert.True(t, result.TimedOut)
	assert.Equal(t, repository.ExitCodeTimeout, result.ExitCode)
	assert.Contains(t, result.Stderr, "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecCommandRunner_MissingBinary(t *testing.T) {
	result := NewExecCommandRunner().Run(context.Background(), "", "testpilot-no-such-binary")

	assert.Equal(t, repository.ExitCodeNotFound, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
	assert.False(t, result.Success())
}

func TestExecCommandRunner_MissingDirectory(t *testing.T) {
	skipWithoutShell(t)
	result := NewExecCommandRunner().Run(context.Background(), "/definitely/not/here", "sh", "-c", "true")

	assert.Equal(t, repository.ExitCodeNotFound, result.ExitCode)
}
