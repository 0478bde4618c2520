package infra

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fpt/go-testpilot/internal/profiles"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProfileConfig represents a profile configuration from YAML
type ProfileConfig struct {
	name        string
	ToolsList   string `yaml:"tools"`
	ExcludeList string `yaml:"exclude"`
	Desc        string `yaml:"description"`
}

func NewProfileConfig(name, tools, exclude, description string) *ProfileConfig {
	return &ProfileConfig{
		name:        name,
		ToolsList:   tools,
		ExcludeList: exclude,
		Desc:        description,
	}
}

// Implement repository.Profile interface methods
func (p *ProfileConfig) Name() string {
	return p.name
}

func (p *ProfileConfig) Tools() string {
	return p.ToolsList
}

func (p *ProfileConfig) Description() string {
	return p.Desc
}

// GetToolScope parses the tools field and returns which tool groups to expose
func (p *ProfileConfig) GetToolScope() repository.ToolScope {
	scope := repository.ToolScope{Exclude: splitList(p.ExcludeList)}

	for _, group := range splitList(p.ToolsList) {
		switch strings.ToLower(group) {
		case "math":
			scope.UseMath = true
		case "build":
			scope.UseBuild = true
		case "git":
			scope.UseGit = true
		case "testgen":
			scope.UseTestgen = true
		case "review":
			scope.UseReview = true
		case "workflow":
			scope.UseWorkflow = true
		case "all":
			scope.UseMath, scope.UseBuild, scope.UseGit = true, true, true
			scope.UseTestgen, scope.UseReview, scope.UseWorkflow = true, true, true
		}
	}

	// Default to the read-only groups if nothing recognizable was listed
	if !scope.UseMath && !scope.UseBuild && !scope.UseGit && !scope.UseTestgen && !scope.UseReview && !scope.UseWorkflow {
		scope.UseMath = true
		scope.UseReview = true
	}

	return scope
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LoadBuiltinProfiles loads the embedded profiles
func LoadBuiltinProfiles() (ProfileMap, error) {
	embedded, err := profiles.LoadBuiltinProfiles()
	if err != nil {
		return nil, err
	}

	result := make(ProfileMap)
	for name, p := range embedded {
		result[strings.ToUpper(name)] = NewProfileConfig(p.Name, p.Tools, p.Exclude, p.Description)
	}
	return result, nil
}

// LoadProfilesFromPath loads profiles from a specific file or directory path
func LoadProfilesFromPath(path string) (ProfileMap, error) {
	result := make(ProfileMap)

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to access path %s", path)
	}

	if info.IsDir() {
		err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			lower := strings.ToLower(fileInfo.Name())
			if fileInfo.IsDir() || (!strings.HasSuffix(lower, ".yaml") && !strings.HasSuffix(lower, ".yml")) {
				return nil
			}
			return loadProfileFile(filePath, result)
		})
	} else {
		err = loadProfileFile(path, result)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to load profiles from %s", path)
	}

	return result, nil
}

// loadProfileFile loads profiles from a single YAML file
func loadProfileFile(filePath string, result ProfileMap) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read profile file %s", filePath)
	}

	var fileProfiles map[string]ProfileConfig
	if err := yaml.Unmarshal(data, &fileProfiles); err != nil {
		return errors.Wrapf(err, "failed to parse profile file %s", filePath)
	}

	// Keys are normalized to uppercase for case-insensitive lookup
	for name, p := range fileProfiles {
		p.name = name
		result[strings.ToUpper(name)] = &p
	}

	return nil
}

// LoadProfiles loads the built-in profiles, then lets additional paths
// override them by name
func LoadProfiles(additionalPaths ...string) (ProfileMap, error) {
	result, err := LoadBuiltinProfiles()
	if err != nil {
		return nil, err
	}

	for _, path := range additionalPaths {
		if path == "" {
			continue
		}

		additional, err := LoadProfilesFromPath(path)
		if err != nil {
			return nil, err
		}
		for name, p := range additional {
			result[name] = p
		}
	}

	return result, nil
}

// ProfileMap holds profiles keyed by uppercase name
type ProfileMap map[string]repository.Profile

// GetProfile retrieves a profile by name, ignoring case
func (m ProfileMap) GetProfile(name string) (repository.Profile, bool) {
	p, exists := m[strings.ToUpper(name)]
	return p, exists
}

// GetAvailableProfiles returns the profile names in lexical order
func (m ProfileMap) GetAvailableProfiles() []string {
	names := make([]string, 0, len(m))
	for _, p := range m {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}
