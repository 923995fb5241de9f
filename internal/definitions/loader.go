// Package definitions loads the language dataset: the language table, the
// content heuristics and the vendored path patterns, together with the
// manifest describing their version.
//
// The dataset ships embedded in the binary. It is a curated subset of the
// github-linguist tables; the full tables can be converted with
//
//	go run ./cmd/convert-definitions -source path/to/linguist/lib/linguist -target DIR
//
// and loaded with LoadDir (or --definitions DIR on the command line), or
// written over data/ to embed them.
package definitions

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/drshade/linguist/internal/types"
	"github.com/drshade/linguist/internal/validation"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yml
var dataFS embed.FS

// Dataset file names, relative to the dataset root
const (
	ManifestFile   = "manifest.yml"
	LanguagesFile  = "languages.yml"
	HeuristicsFile = "heuristics.yml"
	VendorFile     = "vendor.yml"
)

// SupportedMajor is the manifest major version this loader understands
const SupportedMajor = "v1"

// EmbeddedOrigin is the origin reported for the embedded dataset
const EmbeddedOrigin = "embedded"

// ErrUnsupportedVersion is returned when the manifest version is not a
// supported semantic version
var ErrUnsupportedVersion = errors.New("unsupported dataset version")

// Manifest describes a dataset
type Manifest struct {
	Version string `yaml:"version" json:"version"`
	Source  string `yaml:"source,omitempty" json:"source,omitempty"`
}

// Dataset is the raw, validated content of a dataset directory
type Dataset struct {
	Origin     string
	Manifest   Manifest
	Languages  []*types.Language // declaration order
	Heuristics Heuristics
	Vendor     []string
}

// LoadEmbedded loads the dataset compiled into the binary
func LoadEmbedded() (*Dataset, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded dataset: %w", err)
	}
	return Load(sub, EmbeddedOrigin)
}

// LoadDir loads a dataset from a directory on disk
func LoadDir(dir string) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory", dir)
	}
	return Load(os.DirFS(dir), dir)
}

// Load reads and validates every dataset file from fsys. origin is only
// used in error messages and reported back in Dataset.Origin.
func Load(fsys fs.FS, origin string) (*Dataset, error) {
	ds := &Dataset{Origin: origin}

	manifest, err := readValidated(fsys, ManifestFile, validation.ManifestSchema)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(manifest, &ds.Manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	if err := CheckVersion(ds.Manifest.Version); err != nil {
		return nil, fmt.Errorf("%s (%s): %w", ManifestFile, origin, err)
	}

	languages, err := readValidated(fsys, LanguagesFile, validation.LanguagesSchema)
	if err != nil {
		return nil, err
	}
	if ds.Languages, err = decodeLanguages(languages); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", LanguagesFile, err)
	}

	heuristics, err := readValidated(fsys, HeuristicsFile, validation.HeuristicsSchema)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(heuristics, &ds.Heuristics); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", HeuristicsFile, err)
	}

	vendor, err := readValidated(fsys, VendorFile, validation.VendorSchema)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(vendor, &ds.Vendor); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", VendorFile, err)
	}

	return ds, nil
}

// CheckVersion accepts semantic versions whose major is SupportedMajor
func CheckVersion(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, version)
	}
	if major := semver.Major(version); major != SupportedMajor {
		return fmt.Errorf("%w: major %s, want %s", ErrUnsupportedVersion, major, SupportedMajor)
	}
	return nil
}

func readValidated(fsys fs.FS, name, schema string) ([]byte, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", name, err)
	}
	if err := validation.ValidateYAML(schema, content); err != nil {
		return nil, fmt.Errorf("invalid dataset file %s: %w", name, err)
	}
	return content, nil
}

// decodeLanguages walks the mapping node by hand so entries keep their
// declaration order
func decodeLanguages(content []byte) ([]*types.Language, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of language names")
	}

	root := doc.Content[0]
	seen := make(map[string]int, len(root.Content)/2)
	languages := make([]*types.Language, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if line, dup := seen[key.Value]; dup {
			return nil, fmt.Errorf("line %d: duplicate language %q (first declared on line %d)", key.Line, key.Value, line)
		}
		seen[key.Value] = key.Line

		lang := &types.Language{}
		if err := value.Decode(lang); err != nil {
			return nil, fmt.Errorf("language %q: %w", key.Value, err)
		}
		lang.Name = key.Value
		languages = append(languages, lang)
	}

	return languages, nil
}
