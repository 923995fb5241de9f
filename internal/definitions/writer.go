package definitions

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drshade/linguist/internal/types"
	"gopkg.in/yaml.v3"
)

// WriteDir writes ds to dir using the dataset layout read by LoadDir.
// The directory is created when missing; existing dataset files are replaced.
func WriteDir(ds *Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory %s: %w", dir, err)
	}

	languages, err := EncodeLanguages(ds.Languages)
	if err != nil {
		return err
	}

	files := []struct {
		name  string
		value interface{}
	}{
		{ManifestFile, ds.Manifest},
		{LanguagesFile, languages},
		{HeuristicsFile, ds.Heuristics},
		{VendorFile, ds.Vendor},
	}

	for _, f := range files {
		content, err := yaml.Marshal(f.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

// EncodeLanguages builds a YAML mapping node keyed by language name,
// preserving the order of langs
func EncodeLanguages(langs []*types.Language) (*yaml.Node, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, lang := range langs {
		var value yaml.Node
		if err := value.Encode(lang); err != nil {
			return nil, fmt.Errorf("failed to encode language %q: %w", lang.Name, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: lang.Name}
		root.Content = append(root.Content, key, &value)
	}
	return root, nil
}
