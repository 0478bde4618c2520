package message

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolResultJSON(t *testing.T) {
	type result struct {
		ExitCode int    `json:"exit_code"`
		Stdout   string `json:"stdout"`
		Error    string `json:"error,omitempty"`
	}

	ok := NewToolResultJSON(result{ExitCode: 0, Stdout: "done"})
	assert.False(t, ok.IsError())
	assert.Equal(t, map[string]any{"exit_code": 0.0, "stdout": "done"}, ok.Fields)
	assert.JSONEq(t, `{"exit_code": 0, "stdout": "done"}`, ok.Text)

	failed := NewToolResultJSON(result{ExitCode: -1, Error: "Maven test run timed out"})
	assert.True(t, failed.IsError())
	assert.Equal(t, "Maven test run timed out", failed.Error)

	notObject := NewToolResultJSON([]int{1})
	assert.True(t, notObject.IsError())
}

func TestNewToolResultFields_NotEncodable(t *testing.T) {
	r := NewToolResultFields(map[string]any{"result": math.Inf(1)})
	assert.True(t, r.IsError())
	assert.Contains(t, r.Error, "failed to encode result")
	assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, r.Error), r.Text)
}

func TestNewToolResultError(t *testing.T) {
	r := NewToolResultError("x must be non-negative")
	assert.Equal(t, "x must be non-negative", r.Error)
	assert.JSONEq(t, `{"error": "x must be non-negative"}`, r.Text)
}

func TestArgumentAccessors(t *testing.T) {
	args, err := ParseKeyValueArgs([]string{"a=1.5", "dry_run=false", "message=fix: a=b"})
	require.NoError(t, err)

	a, err := args.Number("a")
	require.NoError(t, err)
	assert.Equal(t, 1.5, a)

	b, err := ToolArgumentValues{"b": 2}.Number("b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, b)

	_, err = args.Number("missing")
	assert.Error(t, err)
	_, err = ToolArgumentValues{"x": "abc"}.Number("x")
	assert.Error(t, err)

	dryRun, present := args.Bool("dry_run")
	assert.True(t, present)
	assert.False(t, dryRun)
	_, present = args.Bool("absent")
	assert.False(t, present)

	assert.Equal(t, "fix: a=b", args.String("message", "default"))
	assert.Equal(t, "default", args.String("absent", "default"))

	_, err = ParseKeyValueArgs([]string{"novalue"})
	assert.Error(t, err)
}
