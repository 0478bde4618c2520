package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/pkg/coverage"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// settingsDir is the directory searched in the working dir and $HOME
const settingsDir = ".testpilot"

// settingsFileNames in order of preference
var settingsFileNames = []string{"settings.yaml", "settings.yml", "settings.json"}

// Settings represents the main application settings
type Settings struct {
	Project  ProjectSettings  `json:"project" yaml:"project"`
	Build    BuildSettings    `json:"build" yaml:"build"`
	Coverage CoverageSettings `json:"coverage" yaml:"coverage"`
	Git      GitSettings      `json:"git" yaml:"git"`
	Scan     ScanSettings     `json:"scan" yaml:"scan"`
	Generate GenerateSettings `json:"generate" yaml:"generate"`
	Server   ServerSettings   `json:"server" yaml:"server"`
	Profile  string           `json:"profile" yaml:"profile"`
	LogLevel string           `json:"log_level" yaml:"log_level"`

	// ProfilesPath is an optional YAML file or directory of extra tool profiles
	ProfilesPath string `json:"profiles_path,omitempty" yaml:"profiles_path,omitempty"`
	// FileSystem confines the paths tools accept; empty means the working dir only
	FileSystem repository.FileSystemConfig `json:"filesystem" yaml:"filesystem"`
}

// ProjectSettings locates the Java project being driven
type ProjectSettings struct {
	Path string `json:"path" yaml:"path"` // project/module dir, relative to the working dir
}

// BuildSettings configures the build tool invocation
type BuildSettings struct {
	Command         string   `json:"command" yaml:"command"`
	Args            []string `json:"args" yaml:"args"`
	TimeoutSeconds  int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	OutputTailChars int      `json:"output_tail_chars" yaml:"output_tail_chars"` // 0 keeps full output
}

// CoverageSettings locates the JaCoCo report inside the project
type CoverageSettings struct {
	ReportPath     string `json:"report_path" yaml:"report_path"`
	HTMLReportPath string `json:"html_report_path" yaml:"html_report_path"`
	Gate           string `json:"gate,omitempty" yaml:"gate,omitempty"` // expr, e.g. "instructions >= 80"
}

// GitSettings holds the version-control defaults
type GitSettings struct {
	Executable    string `json:"executable" yaml:"executable"`
	RepoDir       string `json:"repo_dir" yaml:"repo_dir"`
	Remote        string `json:"remote" yaml:"remote"`
	Branch        string `json:"branch" yaml:"branch"`
	BaseBranch    string `json:"base_branch" yaml:"base_branch"`
	DryRun        *bool  `json:"dry_run,omitempty" yaml:"dry_run,omitempty"` // nil means true
	RepositoryURL string `json:"repository_url,omitempty" yaml:"repository_url,omitempty"`
	CommitMessage string `json:"commit_message" yaml:"commit_message"`
	PRTitle       string `json:"pr_title" yaml:"pr_title"`
	PRBody        string `json:"pr_body" yaml:"pr_body"`
	PRCommand     string `json:"pr_command" yaml:"pr_command"`
}

// IsDryRun reports whether push and pull request stay simulated
func (g GitSettings) IsDryRun() bool {
	return g.DryRun == nil || *g.DryRun
}

// ScanSettings configures the static scanner
type ScanSettings struct {
	Extensions      []string `json:"extensions" yaml:"extensions"`
	LongMethodLines int      `json:"long_method_lines" yaml:"long_method_lines"`
	ExcludeDirs     []string `json:"exclude_dirs" yaml:"exclude_dirs"`
}

// GenerateSettings configures generated test files
type GenerateSettings struct {
	Dir     string `json:"dir" yaml:"dir"` // relative to the project
	Package string `json:"package" yaml:"package"`
}

// ServerSettings configures the MCP server
type ServerSettings struct {
	Name      string `json:"name" yaml:"name"`
	Transport string `json:"transport" yaml:"transport"` // "stdio" or "sse"
	Address   string `json:"address" yaml:"address"`
}

// BuildTimeout returns the build timeout as a duration
func (s *Settings) BuildTimeout() time.Duration {
	return time.Duration(s.Build.TimeoutSeconds) * time.Second
}

// LoadSettings loads application settings from a JSON or YAML file
func LoadSettings(configPath string) (*Settings, error) {
	// If config path is empty, search in order of preference
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			// No settings file found, create default one and return defaults
			return createDefaultSettingsFile()
		}
	}

	// A specific path that does not exist yet is created with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		settings, _ := createSettingsFileAtPath(configPath)
		return settings, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings file")
	}

	var settings Settings
	if err := unmarshalSettings(configPath, data, &settings); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings %s", configPath)
	}

	applyDefaults(&settings)

	return &settings, nil
}

// SaveSettings saves application settings, encoding by file extension
func SaveSettings(configPath string, settings *Settings) error {
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			configPath = filepath.Join(settingsDir, "settings.json")
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := marshalSettings(configPath, settings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write settings file")
	}

	return nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func unmarshalSettings(path string, data []byte, settings *Settings) error {
	if isYAMLPath(path) {
		return yaml.Unmarshal(data, settings)
	}
	return json.Unmarshal(data, settings)
}

func marshalSettings(path string, settings *Settings) ([]byte, error) {
	if isYAMLPath(path) {
		return yaml.Marshal(settings)
	}
	return json.MarshalIndent(settings, "", "  ")
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	dryRun := true
	return &Settings{
		Project: ProjectSettings{
			Path: "java_agent",
		},
		Build: BuildSettings{
			Command:         "mvn",
			Args:            []string{"clean", "verify"},
			TimeoutSeconds:  120,
			OutputTailChars: 800,
		},
		Coverage: CoverageSettings{
			ReportPath:     filepath.Join("target", "site", "jacoco", "jacoco.xml"),
			HTMLReportPath: filepath.Join("target", "site", "jacoco", "index.html"),
		},
		Git: GitSettings{
			Executable:    "git",
			RepoDir:       ".",
			Remote:        "origin",
			Branch:        "main",
			BaseBranch:    "main",
			DryRun:        &dryRun,
			CommitMessage: "Automated commit",
			PRTitle:       "Auto PR",
			PRBody:        "Automated Pull Request",
			PRCommand:     "gh",
		},
		Scan: ScanSettings{
			Extensions:      []string{".java"},
			LongMethodLines: 30,
			ExcludeDirs:     []string{".git", "target", "build", "node_modules"},
		},
		Generate: GenerateSettings{
			Dir:     filepath.Join("src", "test", "java", "generated"),
			Package: "generated",
		},
		Server: ServerSettings{
			Name:      "testpilot",
			Transport: "stdio",
			Address:   "127.0.0.1:8000",
		},
		Profile:  "full",
		LogLevel: "info",
	}
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	if settings.Project.Path == "" {
		settings.Project.Path = defaults.Project.Path
	}

	if settings.Build.Command == "" {
		settings.Build.Command = defaults.Build.Command
	}
	if len(settings.Build.Args) == 0 {
		settings.Build.Args = defaults.Build.Args
	}
	if settings.Build.TimeoutSeconds == 0 {
		settings.Build.TimeoutSeconds = defaults.Build.TimeoutSeconds
	}

	if settings.Coverage.ReportPath == "" {
		settings.Coverage.ReportPath = defaults.Coverage.ReportPath
	}
	if settings.Coverage.HTMLReportPath == "" {
		settings.Coverage.HTMLReportPath = defaults.Coverage.HTMLReportPath
	}

	git := &settings.Git
	if git.Executable == "" {
		git.Executable = defaults.Git.Executable
	}
	if git.RepoDir == "" {
		git.RepoDir = defaults.Git.RepoDir
	}
	if git.Remote == "" {
		git.Remote = defaults.Git.Remote
	}
	if git.Branch == "" {
		git.Branch = defaults.Git.Branch
	}
	if git.BaseBranch == "" {
		git.BaseBranch = defaults.Git.BaseBranch
	}
	if git.DryRun == nil {
		git.DryRun = defaults.Git.DryRun
	}
	if git.CommitMessage == "" {
		git.CommitMessage = defaults.Git.CommitMessage
	}
	if git.PRTitle == "" {
		git.PRTitle = defaults.Git.PRTitle
	}
	if git.PRBody == "" {
		git.PRBody = defaults.Git.PRBody
	}
	if git.PRCommand == "" {
		git.PRCommand = defaults.Git.PRCommand
	}

	if len(settings.Scan.Extensions) == 0 {
		settings.Scan.Extensions = defaults.Scan.Extensions
	}
	if settings.Scan.LongMethodLines == 0 {
		settings.Scan.LongMethodLines = defaults.Scan.LongMethodLines
	}
	if settings.Scan.ExcludeDirs == nil {
		settings.Scan.ExcludeDirs = defaults.Scan.ExcludeDirs
	}

	if settings.Generate.Dir == "" {
		settings.Generate.Dir = defaults.Generate.Dir
	}
	if settings.Generate.Package == "" {
		settings.Generate.Package = defaults.Generate.Package
	}

	if settings.Server.Name == "" {
		settings.Server.Name = defaults.Server.Name
	}
	if settings.Server.Transport == "" {
		settings.Server.Transport = defaults.Server.Transport
	}
	if settings.Server.Address == "" {
		settings.Server.Address = defaults.Server.Address
	}

	if settings.Profile == "" {
		settings.Profile = defaults.Profile
	}
	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
}

// ValidateSettings validates the settings configuration
func ValidateSettings(settings *Settings) error {
	if settings.Build.TimeoutSeconds < 0 {
		return fmt.Errorf("build.timeout_seconds must not be negative")
	}
	if settings.Build.OutputTailChars < 0 {
		return fmt.Errorf("build.output_tail_chars must not be negative")
	}

	if _, err := coverage.CompileGate(settings.Coverage.Gate); err != nil {
		return err
	}

	if settings.Git.Remote == "" || settings.Git.Branch == "" {
		return fmt.Errorf("git.remote and git.branch are required")
	}
	for key, ref := range map[string]string{
		"git.remote":      settings.Git.Remote,
		"git.branch":      settings.Git.Branch,
		"git.base_branch": settings.Git.BaseBranch,
	} {
		if strings.HasPrefix(strings.TrimSpace(ref), "-") {
			return fmt.Errorf("%s %q must not start with '-'", key, ref)
		}
	}

	if len(settings.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions must list at least one extension")
	}
	for _, ext := range settings.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("scan extension %q must start with a dot", ext)
		}
	}
	if settings.Scan.LongMethodLines <= 0 {
		return fmt.Errorf("scan.long_method_lines must be positive")
	}

	if filepath.IsAbs(settings.Generate.Dir) {
		return fmt.Errorf("generate.dir must be relative to the project")
	}

	switch settings.Server.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unsupported server transport: %s (must be 'stdio' or 'sse')", settings.Server.Transport)
	}

	return nil
}

// findSettingsFile searches for the settings file in order of preference:
// 1. .testpilot/settings.{yaml,yml,json} in current directory
// 2. $HOME/.testpilot/settings.{yaml,yml,json}
// Returns empty string if none found
func findSettingsFile() string {
	dirs := []string{settingsDir}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, settingsDir))
	}

	for _, dir := range dirs {
		for _, name := range settingsFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// createDefaultSettingsFile creates a default settings.json file in ~/.testpilot/
func createDefaultSettingsFile() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return GetDefaultSettings(), nil
	}

	return createSettingsFileAtPath(filepath.Join(homeDir, settingsDir, "settings.json"))
}

// createSettingsFileAtPath creates a default settings file at the specified path.
// Failing to write it is not an error: the defaults are returned either way.
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	settings := GetDefaultSettings()

	if err := SaveSettings(settingsPath, settings); err != nil {
		return settings, nil
	}

	pkgLogger.NewComponentLogger("settings").InfoWithIcon("📝", "Created default settings file", "path", settingsPath)

	return settings, nil
}
