package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/fpt/go-testpilot/internal/repository"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("command")

// waitDelay bounds how long Run waits for pipes held open by grandchildren
// (forked JVMs) after the command itself has exited or been killed
const waitDelay = 5 * time.Second

// ExecCommandRunner runs commands with os/exec
type ExecCommandRunner struct{}

// NewExecCommandRunner creates a runner backed by os/exec
func NewExecCommandRunner() *ExecCommandRunner {
	return &ExecCommandRunner{}
}

// Run implements repository.CommandRunner
func (r *ExecCommandRunner) Run(ctx context.Context, dir string, name string, args ...string) repository.ProcessResult {
	result := repository.ProcessResult{Command: append([]string{name}, args...)}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = repository.ExitCodeTimeout
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command timed out: %s", result.CommandLine()))
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// never started: missing binary, bad working directory, ...
			result.ExitCode = repository.ExitCodeNotFound
			result.Stderr = appendLine(result.Stderr, err.Error())
		}
	}

	logger.Debug("command finished",
		"command", result.CommandLine(), "dir", dir,
		"exit_code", result.ExitCode, "timed_out", result.TimedOut,
		"duration", time.Since(start).Round(time.Millisecond))

	return result
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	if s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s + line
}
