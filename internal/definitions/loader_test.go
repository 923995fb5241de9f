package definitions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/drshade/linguist/internal/types"
	"github.com/drshade/linguist/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	testManifest  = "version: v1.0.0\nsource: test\n"
	testLanguages = `
Zed:
  type: programming
  extensions: [".zed"]
Alpha:
  type: data
  color: "#123456"
  extensions: [".a", ".zed"]
  filenames: [Alphafile]
`
	testHeuristics = `
disambiguations:
- extensions: ['.zed']
  rules:
  - language: Alpha
    pattern: '^alpha'
  - language: [Zed]
    named_pattern: zed
  fallback: []
named_patterns:
  zed: ['^zed', '^zz']
`
	testVendor = "- vendor/\n- \"*.min.js\"\n"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		ManifestFile:   {Data: []byte(testManifest)},
		LanguagesFile:  {Data: []byte(testLanguages)},
		HeuristicsFile: {Data: []byte(testHeuristics)},
		VendorFile:     {Data: []byte(testVendor)},
	}
}

func TestLoadEmbedded(t *testing.T) {
	ds, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, EmbeddedOrigin, ds.Origin)
	assert.NoError(t, CheckVersion(ds.Manifest.Version))
	assert.NotEmpty(t, ds.Languages)
	assert.NotEmpty(t, ds.Heuristics.Disambiguations)
	assert.NotEmpty(t, ds.Vendor)

	names := make(map[string]*types.Language)
	for _, lang := range ds.Languages {
		require.NotEmpty(t, lang.Name)
		names[lang.Name] = lang
	}

	for _, want := range []string{"C", "C++", "Python", "Makefile", "Rust", "TypeScript", "XML", "Ignore List"} {
		assert.Contains(t, names, want)
	}
	assert.Equal(t, types.Programming, names["Python"].Category)
	assert.Equal(t, "#3572A5", names["Python"].Color)
	assert.Contains(t, names["Makefile"].Filenames, "Makefile")
	assert.Contains(t, names["Python"].Interpreters, "python3")
}

func TestLoadEmbedded_DeclarationOrder(t *testing.T) {
	ds, err := LoadEmbedded()
	require.NoError(t, err)

	index := make(map[string]int)
	for i, lang := range ds.Languages {
		index[lang.Name] = i
	}
	assert.Less(t, index["C"], index["C++"])
	assert.Less(t, index["C++"], index["Objective-C"])
}

func TestLoad_FromMapFS(t *testing.T) {
	ds, err := Load(testFS(), "memory")
	require.NoError(t, err)

	assert.Equal(t, "memory", ds.Origin)
	assert.Equal(t, Manifest{Version: "v1.0.0", Source: "test"}, ds.Manifest)

	require.Len(t, ds.Languages, 2)
	assert.Equal(t, "Zed", ds.Languages[0].Name)
	assert.Equal(t, "Alpha", ds.Languages[1].Name)
	assert.Equal(t, types.Data, ds.Languages[1].Category)
	assert.Equal(t, []string{".a", ".zed"}, ds.Languages[1].Extensions)

	require.Len(t, ds.Heuristics.Disambiguations, 1)
	d := ds.Heuristics.Disambiguations[0]
	assert.Equal(t, []string{".zed"}, d.Extensions)
	require.Len(t, d.Rules, 2)
	assert.Equal(t, StringList{"Alpha"}, d.Rules[0].Language)
	assert.Equal(t, StringList{"^alpha"}, d.Rules[0].Pattern)
	assert.Equal(t, StringList{"Zed"}, d.Rules[1].Language)
	assert.Equal(t, "zed", d.Rules[1].NamedPattern)
	require.NotNil(t, d.Fallback)
	assert.Empty(t, *d.Fallback)

	assert.Equal(t, StringList{"^zed", "^zz"}, ds.Heuristics.NamedPatterns["zed"])
	assert.Equal(t, []string{"vendor/", "*.min.js"}, ds.Vendor)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		data   string
		expect string
	}{
		{"missing manifest", ManifestFile, "", "failed to read dataset file manifest.yml"},
		{"unsupported major", ManifestFile, "version: v2.0.0\n", "unsupported dataset version"},
		{"invalid language type", LanguagesFile, "Go:\n  type: compiled\n", "invalid dataset file languages.yml"},
		{"duplicate language", LanguagesFile, "Go:\n  type: programming\nGo:\n  type: data\n", "languages.yml"},
		{"rule without language", HeuristicsFile, "disambiguations:\n- extensions: ['.x']\n  rules:\n  - pattern: x\n", "invalid dataset file heuristics.yml"},
		{"negated vendor pattern", VendorFile, "- \"!keep/\"\n", "invalid dataset file vendor.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS()
			if tt.data == "" {
				delete(fsys, tt.file)
			} else {
				fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}
			}

			_, err := Load(fsys, "memory")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestLoad_SchemaErrorIsTyped(t *testing.T) {
	fsys := testFS()
	fsys[LanguagesFile] = &fstest.MapFile{Data: []byte("Go:\n  type: programming\n  extensions: [go]\n")}

	_, err := Load(fsys, "memory")
	require.Error(t, err)

	var vErr validation.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, validation.LanguagesSchema, vErr.Schema)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("v1.0.0"))
	assert.NoError(t, CheckVersion("v1.9.3-beta.1"))

	for _, v := range []string{"", "1.0.0", "v2.0.0", "v0.9.0", "latest"} {
		err := CheckVersion(v)
		assert.ErrorIs(t, err, ErrUnsupportedVersion, v)
	}
}

func TestDecodeLanguages(t *testing.T) {
	langs, err := decodeLanguages([]byte("Go:\n  type: programming\nRust:\n  type: programming\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, types.Names(langs))

	_, err = decodeLanguages([]byte("Go:\n  type: programming\nGo:\n  type: data\n"))
	assert.Error(t, err)

	_, err = decodeLanguages([]byte("- Go\n"))
	assert.Error(t, err)
}

func TestLoadDir_RoundTrip(t *testing.T) {
	ds, err := Load(testFS(), "memory")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "dataset")
	require.NoError(t, WriteDir(ds, dir))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, loaded.Origin)
	assert.Equal(t, ds.Manifest, loaded.Manifest)
	assert.Equal(t, types.Names(ds.Languages), types.Names(loaded.Languages))
	assert.Equal(t, ds.Heuristics, loaded.Heuristics)
	assert.Equal(t, ds.Vendor, loaded.Vendor)
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open dataset directory")

	file := filepath.Join(t.TempDir(), "file.yml")
	require.NoError(t, os.WriteFile(file, []byte("x: 1\n"), 0644))
	_, err = LoadDir(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestStringList_UnmarshalYAML(t *testing.T) {
	var rule Rule
	require.NoError(t, yaml.Unmarshal([]byte("language: C\npattern: [a, b]\n"), &rule))
	assert.Equal(t, StringList{"C"}, rule.Language)
	assert.Equal(t, StringList{"a", "b"}, rule.Pattern)

	err := yaml.Unmarshal([]byte("language: {a: b}\n"), &rule)
	assert.Error(t, err)
}
