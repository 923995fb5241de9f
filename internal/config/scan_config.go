package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/drshade/linguist/internal/detector"
	"gopkg.in/yaml.v3"
)

// ScanConfigFile represents the external scan configuration passed with --config
type ScanConfigFile struct {
	Scan ScanConfigSection `yaml:"scan" json:"scan"`
}

// ScanConfigSection contains all scan configuration options
type ScanConfigSection struct {
	// What to scan
	Paths []string `yaml:"paths,omitempty" json:"paths,omitempty"`

	// Output configuration
	Output OutputConfig `yaml:"output,omitempty" json:"output,omitempty"`

	// Same meaning as in .linguist.yml
	Exclude   []string            `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Vendor    []string            `yaml:"vendor,omitempty" json:"vendor,omitempty"`
	Overrides []detector.Override `yaml:"overrides,omitempty" json:"overrides,omitempty"`

	// Scanner options
	Options ScannerOptions `yaml:"options,omitempty" json:"options,omitempty"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty" json:"pretty,omitempty"`
}

// ScannerOptions defines scanner behavior options
type ScannerOptions struct {
	Workers      int  `yaml:"workers,omitempty" json:"workers,omitempty"`
	NoClassifier bool `yaml:"no_classifier,omitempty" json:"no_classifier,omitempty"`
}

// LoadScanConfig loads scan configuration from file path or inline JSON
func LoadScanConfig(configPath string) (*ScanConfigFile, error) {
	if configPath == "" {
		return nil, nil
	}

	// Check if it's inline JSON (starts with {)
	if strings.HasPrefix(strings.TrimSpace(configPath), "{") {
		return loadScanConfigFromJSON(configPath)
	}

	return loadScanConfigFromFile(configPath)
}

// loadScanConfigFromFile loads configuration from a YAML or JSON file
func loadScanConfigFromFile(configPath string) (*ScanConfigFile, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ScanConfigFile

	// Try YAML first (most common)
	if err := yaml.Unmarshal(data, &config); err != nil {
		// Fallback to JSON
		if jsonErr := json.Unmarshal(data, &config); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config as YAML (%v) or JSON (%v)", err, jsonErr)
		}
	}

	return &config, nil
}

// loadScanConfigFromJSON loads configuration from inline JSON string
func loadScanConfigFromJSON(jsonStr string) (*ScanConfigFile, error) {
	var config ScanConfigFile
	if err := json.Unmarshal([]byte(jsonStr), &config); err != nil {
		return nil, fmt.Errorf("failed to parse inline JSON config: %w", err)
	}
	return &config, nil
}

// MergeWithSettings merges scan config with existing settings.
// Values that differ from the defaults are assumed to come from flags or the
// environment and win over the config file.
func (c *ScanConfigFile) MergeWithSettings(settings *Settings) {
	if c == nil || settings == nil {
		return
	}
	defaults := DefaultSettings()

	if c.Scan.Output.File != "" && settings.OutputFile == defaults.OutputFile {
		settings.OutputFile = c.Scan.Output.File
	}
	if c.Scan.Output.Format != "" && settings.Format == defaults.Format {
		settings.Format = strings.ToLower(c.Scan.Output.Format)
	}
	if !settings.PrettyPrint && c.Scan.Output.Pretty {
		settings.PrettyPrint = true
	}

	if c.Scan.Options.Workers > 0 && settings.Workers == defaults.Workers {
		settings.Workers = c.Scan.Options.Workers
	}
	if !settings.NoClassifier && c.Scan.Options.NoClassifier {
		settings.NoClassifier = true
	}

	// Exclude patterns are merged separately with the project config
}

// GetScanPaths returns the paths to scan, defaulting to ["."] if not specified
func (c *ScanConfigFile) GetScanPaths() []string {
	if c == nil || len(c.Scan.Paths) == 0 {
		return []string{"."}
	}
	return c.Scan.Paths
}

// GetMergedConfig merges the scan config with the project config.
// Scan config entries come first; overrides from the project config are
// therefore evaluated after those of the scan config.
func (c *ScanConfigFile) GetMergedConfig(projectConfig *ProjectConfig) *ProjectConfig {
	if c == nil {
		if projectConfig == nil {
			return &ProjectConfig{}
		}
		return projectConfig
	}

	merged := &ProjectConfig{
		Exclude:   append([]string{}, c.Scan.Exclude...),
		Vendor:    append([]string{}, c.Scan.Vendor...),
		Overrides: append([]detector.Override{}, c.Scan.Overrides...),
	}

	if projectConfig != nil {
		merged.Path = projectConfig.Path
		merged.Exclude = append(merged.Exclude, projectConfig.Exclude...)
		merged.Vendor = append(merged.Vendor, projectConfig.Vendor...)
		merged.Overrides = append(merged.Overrides, projectConfig.Overrides...)
	}

	return merged
}
