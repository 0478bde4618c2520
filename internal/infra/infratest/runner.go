// Package infratest provides a CommandRunner that records invocations instead
// of spawning processes.
package infratest

import (
	"context"
	"strings"
	"sync"

	"github.com/fpt/go-testpilot/internal/repository"
)

// Call is one recorded invocation
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line renders the call as a command line
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// RecordingRunner records every Run call. Respond, when set, produces the
// result for a call; otherwise the call succeeds with empty output.
type RecordingRunner struct {
	mu      sync.Mutex
	calls   []Call
	Respond func(ctx context.Context, call Call) repository.ProcessResult
}

// Run implements repository.CommandRunner
func (r *RecordingRunner) Run(ctx context.Context, dir string, name string, args ...string) repository.ProcessResult {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	var result repository.ProcessResult
	if r.Respond != nil {
		result = r.Respond(ctx, call)
	}
	result.Command = append([]string{name}, args...)
	return result
}

// Calls returns a copy of the recorded calls
func (r *RecordingRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded calls as command lines
func (r *RecordingRunner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}
