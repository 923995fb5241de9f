package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Exclude)
	assert.Empty(t, cfg.Overrides)
	assert.Empty(t, cfg.Path)
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ProjectConfigYAML, `
exclude:
  - "**/testdata/**"
vendor:
  - generated/
overrides:
  - path: "include/**/*.h"
    language: C++
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.Path)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Exclude)
	assert.Equal(t, []string{"generated/"}, cfg.Vendor)
	assert.Equal(t, []detector.Override{{Path: "include/**/*.h", Language: "C++"}}, cfg.Overrides)
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ProjectConfigTOML, `
exclude = ["docs/**"]
vendor = ["third_party_code/"]

[[overrides]]
path = "*.inc"
language = "PHP"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.Path)
	assert.Equal(t, []string{"docs/**"}, cfg.Exclude)
	assert.Equal(t, []string{"third_party_code/"}, cfg.Vendor)
	assert.Equal(t, []detector.Override{{Path: "*.inc", Language: "PHP"}}, cfg.Overrides)
}

func TestLoadConfig_YAMLTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigYAML, "exclude: [a/**]\n")
	writeFile(t, dir, ProjectConfigTOML, "exclude = [\"b/**\"]\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/**"}, cfg.Exclude)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		schema  bool
	}{
		{"unknown key", ProjectConfigYAML, "techs: [go]\n", true},
		{"override without language", ProjectConfigYAML, "overrides:\n  - path: '*.h'\n", true},
		{"negated vendor", ProjectConfigYAML, "vendor: ['!keep/']\n", true},
		{"broken yaml", ProjectConfigYAML, "exclude: [\n", false},
		{"toml unknown key", ProjectConfigTOML, "paths = [\"x\"]\n", true},
		{"broken toml", ProjectConfigTOML, "exclude = [\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := LoadConfig(dir)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.file)

			var verr validation.ValidationError
			assert.Equal(t, tt.schema, errors.As(err, &verr))
		})
	}
}

func TestMergeExcludes(t *testing.T) {
	cfg := &ProjectConfig{Exclude: []string{"a/**", "b/**"}}
	assert.Equal(t, []string{"a/**", "b/**", "c/**"}, cfg.MergeExcludes([]string{"b/**", "c/**"}))

	var none *ProjectConfig
	assert.Equal(t, []string{"x"}, none.MergeExcludes([]string{"x", "x"}))
}

func TestLoadScanConfig(t *testing.T) {
	cfg, err := LoadScanConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = LoadScanConfig(`{"scan": {"paths": ["src"], "options": {"workers": 2}}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"src"}, cfg.GetScanPaths())
	assert.Equal(t, 2, cfg.Scan.Options.Workers)

	_, err = LoadScanConfig(`{"scan": `)
	assert.ErrorContains(t, err, "inline JSON")

	p := writeFile(t, t.TempDir(), "scan.yml", `
scan:
  output:
    format: yaml
    file: out.yml
  exclude: ["build/**"]
  overrides:
    - path: "*.h"
      language: C
`)
	cfg, err = LoadScanConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Scan.Output.Format)
	assert.Equal(t, []string{"."}, cfg.GetScanPaths())
	assert.Equal(t, []detector.Override{{Path: "*.h", Language: "C"}}, cfg.Scan.Overrides)

	_, err = LoadScanConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestMergeWithSettings(t *testing.T) {
	cfg := &ScanConfigFile{Scan: ScanConfigSection{
		Output:  OutputConfig{File: "out.json", Format: "JSON"},
		Options: ScannerOptions{Workers: 3, NoClassifier: true},
	}}

	settings := DefaultSettings()
	cfg.MergeWithSettings(settings)
	assert.Equal(t, "out.json", settings.OutputFile)
	assert.Equal(t, FormatJSON, settings.Format)
	assert.Equal(t, 3, settings.Workers)
	assert.True(t, settings.NoClassifier)

	// Explicit settings win
	settings = DefaultSettings()
	settings.Format = FormatYAML
	settings.OutputFile = "cli.yml"
	cfg.MergeWithSettings(settings)
	assert.Equal(t, FormatYAML, settings.Format)
	assert.Equal(t, "cli.yml", settings.OutputFile)

	var none *ScanConfigFile
	assert.NotPanics(t, func() { none.MergeWithSettings(DefaultSettings()) })
}

func TestGetMergedConfig(t *testing.T) {
	scan := &ScanConfigFile{Scan: ScanConfigSection{
		Exclude:   []string{"a/**"},
		Vendor:    []string{"gen/"},
		Overrides: []detector.Override{{Path: "*.h", Language: "C"}},
	}}
	project := &ProjectConfig{
		Path:      ".linguist.yml",
		Exclude:   []string{"b/**"},
		Overrides: []detector.Override{{Path: "*.h", Language: "C++"}},
	}

	merged := scan.GetMergedConfig(project)
	assert.Equal(t, []string{"a/**", "b/**"}, merged.Exclude)
	assert.Equal(t, []string{"gen/"}, merged.Vendor)
	assert.Equal(t, "C", merged.Overrides[0].Language)
	assert.Equal(t, "C++", merged.Overrides[1].Language)
	assert.Equal(t, ".linguist.yml", merged.Path)

	var none *ScanConfigFile
	assert.Same(t, project, none.GetMergedConfig(project))
	assert.NotNil(t, none.GetMergedConfig(nil))
}
