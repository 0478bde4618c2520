package repository

import (
	"context"
	"strings"
)

// Exit codes used when a command never produced one of its own
const (
	ExitCodeTimeout  = -1
	ExitCodeNotFound = 127
)

// ProcessResult captures one external command invocation
type ProcessResult struct {
	Command  []string `json:"command"`
	ExitCode int      `json:"exit_code"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	TimedOut bool     `json:"timed_out,omitempty"`
}

// Success reports whether the command ran and exited zero
func (r ProcessResult) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// CommandLine renders the invoked command for logs and messages
func (r ProcessResult) CommandLine() string {
	return strings.Join(r.Command, " ")
}

// CommandRunner invokes exactly one external command in dir and returns its
// exit code and captured output. Failures are reported in the result, never
// as a Go error: a timeout sets TimedOut, a missing binary yields
// ExitCodeNotFound with the reason in Stderr.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ProcessResult
}
