package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultSettings(t *testing.T) {
	s := GetDefaultSettings()

	assert.Equal(t, "java_agent", s.Project.Path)
	assert.Equal(t, "mvn", s.Build.Command)
	assert.Equal(t, []string{"clean", "verify"}, s.Build.Args)
	assert.Equal(t, 120, s.Build.TimeoutSeconds)
	assert.Equal(t, 800, s.Build.OutputTailChars)
	assert.Equal(t, "origin", s.Git.Remote)
	assert.Equal(t, "main", s.Git.Branch)
	assert.Equal(t, "main", s.Git.BaseBranch)
	assert.Equal(t, "Automated commit", s.Git.CommitMessage)
	assert.Equal(t, "Auto PR", s.Git.PRTitle)
	assert.Equal(t, "Automated Pull Request", s.Git.PRBody)
	assert.True(t, s.Git.IsDryRun())
	assert.Equal(t, 30, s.Scan.LongMethodLines)
	assert.NoError(t, ValidateSettings(s))
}

func TestLoadSettings_YAMLWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `project:
  path: services/calc
git:
  dry_run: false
  remote: upstream
coverage:
  gate: instructions >= 80
filesystem:
  allowed_directories:
    - /srv/shared
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "services/calc", s.Project.Path)
	assert.Equal(t, "upstream", s.Git.Remote)
	assert.Equal(t, "main", s.Git.Branch, "missing fields take defaults")
	assert.False(t, s.Git.IsDryRun())
	assert.Equal(t, "instructions >= 80", s.Coverage.Gate)
	assert.Equal(t, []string{"/srv/shared"}, s.FileSystem.AllowedDirectories)
	assert.Equal(t, "mvn", s.Build.Command)
	assert.NoError(t, ValidateSettings(s))
}

func TestLoadSettings_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"build": {"timeout_seconds": 5}, "log_level": "debug"}`), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Build.TimeoutSeconds)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.Git.IsDryRun(), "dry-run defaults to on")
}

func TestLoadSettings_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	reloaded, err := LoadSettings(path)
	require.NoError(t, err)
	if diff := cmp.Diff(s, reloaded); diff != "" {
		t.Errorf("round trip through YAML changed settings (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"build": `), 0644))

	_, err := LoadSettings(path)
	assert.ErrorContains(t, err, "failed to parse settings")
}

func TestValidateSettings(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Settings)
		errMsg string
	}{
		{"negative timeout", func(s *Settings) { s.Build.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"bad gate", func(s *Settings) { s.Coverage.Gate = "instructions >=" }, ""},
		{"no extensions", func(s *Settings) { s.Scan.Extensions = nil }, "scan.extensions"},
		{"extension without dot", func(s *Settings) { s.Scan.Extensions = []string{"java"} }, "must start with a dot"},
		{"absolute generate dir", func(s *Settings) { s.Generate.Dir = "/tmp/gen" }, "generate.dir"},
		{"unknown transport", func(s *Settings) { s.Server.Transport = "grpc" }, "unsupported server transport"},
		{"empty remote", func(s *Settings) { s.Git.Remote = "" }, "git.remote"},
		{"option-like branch", func(s *Settings) { s.Git.Branch = "--no-dry-run" }, "git.branch"},
		{"option-like base", func(s *Settings) { s.Git.BaseBranch = "-f" }, "git.base_branch"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := GetDefaultSettings()
			tc.modify(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}
