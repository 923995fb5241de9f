package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/validation"
	"gopkg.in/yaml.v3"
)

// Project configuration file names, in lookup order
const (
	ProjectConfigYAML = ".linguist.yml"
	ProjectConfigTOML = ".linguist.toml"
)

// ProjectConfig represents the .linguist.yml (or .linguist.toml) file at a
// scan root
type ProjectConfig struct {
	Exclude   []string            `yaml:"exclude,omitempty" toml:"exclude" json:"exclude,omitempty"`
	Vendor    []string            `yaml:"vendor,omitempty" toml:"vendor" json:"vendor,omitempty"`
	Overrides []detector.Override `yaml:"overrides,omitempty" toml:"overrides" json:"overrides,omitempty"`

	// Path of the file the config was read from, empty when none exists
	Path string `yaml:"-" toml:"-" json:"-"`
}

// LoadConfig loads the project config from the scan root.
// Returns an empty config if no file exists (not an error).
func LoadConfig(scanPath string) (*ProjectConfig, error) {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigTOML} {
		configPath := filepath.Join(scanPath, name)
		data, err := os.ReadFile(configPath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var cfg *ProjectConfig
		if name == ProjectConfigTOML {
			cfg, err = parseTOML(data)
		} else {
			cfg, err = parseYAML(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		cfg.Path = configPath
		return cfg, nil
	}

	return &ProjectConfig{}, nil
}

func parseYAML(data []byte) (*ProjectConfig, error) {
	if err := validation.ValidateYAML(validation.ConfigSchema, data); err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseTOML(data []byte) (*ProjectConfig, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	// The schema validator wants plain JSON values
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, err
	}
	if err := validation.ValidateJSON(validation.ConfigSchema, generic); err != nil {
		return nil, err
	}

	var cfg ProjectConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return &cfg, nil
}

// MergeExcludes merges config excludes with CLI excludes, keeping the
// first occurrence order
func (c *ProjectConfig) MergeExcludes(cliExcludes []string) []string {
	if c == nil {
		return dedupe(cliExcludes)
	}
	return dedupe(append(append([]string{}, c.Exclude...), cliExcludes...))
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
