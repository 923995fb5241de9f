package definitions

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList is a YAML field that may be written either as a single scalar
// or as a sequence of scalars
type StringList []string

// UnmarshalYAML accepts `key: value` and `key: [a, b]` forms
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		if items == nil {
			items = []string{}
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// MarshalYAML writes single-element lists back as a scalar
func (l StringList) MarshalYAML() (interface{}, error) {
	if len(l) == 1 {
		return l[0], nil
	}
	return []string(l), nil
}

// Heuristics is the content of heuristics.yml
type Heuristics struct {
	Disambiguations []Disambiguation      `yaml:"disambiguations"`
	NamedPatterns   map[string]StringList `yaml:"named_patterns,omitempty"`
}

// Disambiguation is the rule list for one set of shared extensions
type Disambiguation struct {
	Extensions []string `yaml:"extensions,flow"`
	Rules      []Rule   `yaml:"rules"`
	// Fallback, when set, replaces the default fallback (every language
	// declaring the extension). An explicit empty list means no result.
	Fallback *StringList `yaml:"fallback,omitempty"`
}

// Rule is one dataset rule. Every condition that is present must hold;
// a rule without conditions always holds.
type Rule struct {
	Language        StringList `yaml:"language,omitempty"`
	Pattern         StringList `yaml:"pattern,omitempty"`
	NegativePattern StringList `yaml:"negative_pattern,omitempty"`
	NamedPattern    string     `yaml:"named_pattern,omitempty"`
	And             []Rule     `yaml:"and,omitempty"`
}

// HasConditions reports whether the rule carries any condition
func (r Rule) HasConditions() bool {
	return len(r.Pattern) > 0 || len(r.NegativePattern) > 0 || r.NamedPattern != "" || len(r.And) > 0
}
