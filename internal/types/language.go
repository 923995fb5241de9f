package types

import (
	"fmt"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Category classifies a language (programming, markup, data, prose, other)
type Category int

const (
	Other Category = iota
	Programming
	Markup
	Data
	Prose
)

var categoryNames = map[Category]string{
	Other:       "other",
	Programming: "programming",
	Markup:      "markup",
	Data:        "data",
	Prose:       "prose",
}

// String returns the lowercase dataset spelling of the category
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "other"
}

// ParseCategory converts a dataset type string into a Category
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return Other, fmt.Errorf("unknown language type: %q", s)
}

// MarshalYAML writes the category as its string form
func (c Category) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// MarshalText writes the category as its string form (used by encoding/json)
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the category from its string form
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategoryFromEnry converts enry.Type to a Category
func CategoryFromEnry(t enry.Type) Category {
	switch t {
	case enry.Programming:
		return Programming
	case enry.Data:
		return Data
	case enry.Markup:
		return Markup
	case enry.Prose:
		return Prose
	default:
		return Other
	}
}

// Language is one entry of the language table.
// Entries are shared read-only after the store is built; never modify one.
type Language struct {
	Name         string   `yaml:"-" json:"name"`
	Category     Category `yaml:"type" json:"type"`
	LanguageID   int64    `yaml:"language_id,omitempty" json:"language_id,omitempty"`
	Color        string   `yaml:"color,omitempty" json:"color,omitempty"`
	Group        string   `yaml:"group,omitempty" json:"group,omitempty"`
	TMScope      string   `yaml:"tm_scope,omitempty" json:"tm_scope,omitempty"`
	AceMode      string   `yaml:"ace_mode,omitempty" json:"ace_mode,omitempty"`
	Aliases      []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Extensions   []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty" json:"filenames,omitempty"`
	Interpreters []string `yaml:"interpreters,omitempty" json:"interpreters,omitempty"`
}

// HasExtension reports whether ext is one of the language's extensions
func (l *Language) HasExtension(ext string) bool {
	for _, e := range l.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Names returns the names of the given languages, preserving order
func Names(langs []*Language) []string {
	names := make([]string, 0, len(langs))
	for _, l := range langs {
		names = append(names, l.Name)
	}
	return names
}
