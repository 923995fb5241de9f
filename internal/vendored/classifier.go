package vendored

import "fmt"

// Classifier evaluates vendor patterns in order. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	patterns []Pattern
}

// New compiles patterns, keeping their order
func New(patterns []string) (*Classifier, error) {
	c := &Classifier{patterns: make([]Pattern, 0, len(patterns))}
	for i, s := range patterns {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		c.patterns = append(c.patterns, p)
	}
	return c, nil
}

// IsVendored reports whether any pattern matches path
func (c *Classifier) IsVendored(path string) bool {
	_, ok := c.Match(path)
	return ok
}

// Match returns the first pattern matching path
func (c *Classifier) Match(path string) (Pattern, bool) {
	segments, isDir := Normalize(path)
	if len(segments) == 0 {
		return Pattern{}, false
	}
	for _, p := range c.patterns {
		if p.match(segments, isDir) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Patterns returns the compiled patterns in evaluation order
func (c *Classifier) Patterns() []Pattern {
	return append([]Pattern(nil), c.patterns...)
}

// Len returns the number of patterns
func (c *Classifier) Len() int {
	return len(c.patterns)
}

// With returns a new classifier evaluating extra after the existing patterns.
// The receiver is left unchanged.
func (c *Classifier) With(extra []string) (*Classifier, error) {
	added, err := New(extra)
	if err != nil {
		return nil, err
	}
	patterns := make([]Pattern, 0, len(c.patterns)+len(added.patterns))
	patterns = append(patterns, c.patterns...)
	patterns = append(patterns, added.patterns...)
	return &Classifier{patterns: patterns}, nil
}
