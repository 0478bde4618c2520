package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinProfiles(t *testing.T) {
	profiles, err := LoadBuiltinProfiles()
	require.NoError(t, err)

	for _, expected := range []string{"FULL", "ANALYZE", "CI"} {
		_, exists := profiles[expected]
		assert.True(t, exists, "expected profile %s", expected)
	}
	assert.Equal(t, []string{"analyze", "ci", "full"}, profiles.GetAvailableProfiles())

	full, ok := profiles.GetProfile("Full")
	require.True(t, ok)
	assert.Equal(t, repository.ToolScope{
		UseMath: true, UseBuild: true, UseGit: true, UseTestgen: true, UseReview: true, UseWorkflow: true,
	}, full.GetToolScope())

	analyze, _ := profiles.GetProfile("analyze")
	scope := analyze.GetToolScope()
	assert.False(t, scope.UseGit)
	assert.False(t, scope.UseWorkflow)
	assert.Equal(t, []string{"run_maven_tests", "generate_tests"}, scope.Exclude)
}

func TestLoadProfilesWithOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
full:
  tools: review
  description: Trimmed down
review-only:
  tools: review
`), 0644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)

	full, ok := profiles.GetProfile("full")
	require.True(t, ok)
	assert.Equal(t, "Trimmed down", full.Description())
	assert.Equal(t, repository.ToolScope{UseReview: true}, full.GetToolScope())

	_, ok = profiles.GetProfile("REVIEW-ONLY")
	assert.True(t, ok)
	_, ok = profiles.GetProfile("analyze")
	assert.True(t, ok, "built-ins survive")

	_, err = LoadProfiles(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestProfileConfig_GetToolScope(t *testing.T) {
	testCases := []struct {
		tools       string
		exclude     string
		expected    repository.ToolScope
		description string
	}{
		{
			tools:       "math, git",
			expected:    repository.ToolScope{UseMath: true, UseGit: true},
			description: "Two groups",
		},
		{
			tools:       "BUILD,Workflow",
			expected:    repository.ToolScope{UseBuild: true, UseWorkflow: true},
			description: "Case insensitive without spaces",
		},
		{
			tools:   "all",
			exclude: "git_push, git_pull_request",
			expected: repository.ToolScope{
				UseMath: true, UseBuild: true, UseGit: true, UseTestgen: true, UseReview: true, UseWorkflow: true,
				Exclude: []string{"git_push", "git_pull_request"},
			},
			description: "All groups with exclusions",
		},
		{
			tools:       "",
			expected:    repository.ToolScope{UseMath: true, UseReview: true},
			description: "Empty falls back to read-only groups",
		},
		{
			tools:       "unknown",
			expected:    repository.ToolScope{UseMath: true, UseReview: true},
			description: "Unknown groups fall back too",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			scope := NewProfileConfig("test", tc.tools, tc.exclude, "").GetToolScope()
			if diff := cmp.Diff(tc.expected, scope); diff != "" {
				t.Errorf("GetToolScope(%q) mismatch (-want +got):\n%s", tc.tools, diff)
			}
		})
	}
}
