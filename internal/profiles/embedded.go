// Package profiles holds the built-in tool profiles
package profiles

import (
	"embed"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var embeddedFiles embed.FS

// ProfileConfig represents a profile from YAML (duplicate to avoid import cycle)
type ProfileConfig struct {
	Name        string `yaml:"-"` // Set during loading
	Tools       string `yaml:"tools"`
	Exclude     string `yaml:"exclude"`
	Description string `yaml:"description"`
}

// ProfileConfigMap represents all profiles loaded from YAML files
type ProfileConfigMap map[string]ProfileConfig

// LoadBuiltinProfiles loads built-in profiles from embedded files
func LoadBuiltinProfiles() (ProfileConfigMap, error) {
	profiles := make(ProfileConfigMap)

	entries, err := embeddedFiles.ReadDir(".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded profiles")
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isYAMLFile(name) {
			continue
		}

		data, err := embeddedFiles.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read embedded profile file %s", name)
		}

		var fileProfiles map[string]ProfileConfig
		if err := yaml.Unmarshal(data, &fileProfiles); err != nil {
			return nil, errors.Wrapf(err, "failed to parse embedded profile file %s", name)
		}

		for profileName, profile := range fileProfiles {
			profile.Name = profileName
			profiles[profileName] = profile
		}
	}

	return profiles, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
