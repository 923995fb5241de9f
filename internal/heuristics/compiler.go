package heuristics

import (
	"fmt"
	"regexp"

	"github.com/drshade/linguist/internal/definitions"
)

// multiline is prepended to every dataset pattern so ^ and $ anchor at line
// boundaries
const multiline = "(?m)"

// Compiler turns dataset rules into predicates. Identical expressions are
// compiled once and shared between rules.
// A Compiler is not safe for concurrent use; the predicates it returns are.
type Compiler struct {
	named map[string]definitions.StringList
	cache map[string]*regexp.Regexp
}

// NewCompiler creates a compiler resolving named_pattern references in named
func NewCompiler(named map[string]definitions.StringList) *Compiler {
	return &Compiler{
		named: named,
		cache: make(map[string]*regexp.Regexp),
	}
}

// Regexp compiles expr in multi-line mode
func (c *Compiler) Regexp(expr string) (*regexp.Regexp, error) {
	if re, ok := c.cache[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(multiline + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	c.cache[expr] = re
	return re, nil
}

// Patterns reports how many distinct expressions have been compiled
func (c *Compiler) Patterns() int {
	return len(c.cache)
}

// Predicate compiles the conditions of one dataset rule.
//
// Present conditions are combined with AND in the order: and, named_pattern,
// pattern, negative_pattern. A rule without conditions compiles to Always.
func (c *Compiler) Predicate(rule definitions.Rule) (Predicate, error) {
	var parts []Predicate

	for i, sub := range rule.And {
		p, err := c.Predicate(sub)
		if err != nil {
			return Predicate{}, fmt.Errorf("and[%d]: %w", i, err)
		}
		parts = append(parts, p)
	}

	if rule.NamedPattern != "" {
		exprs, ok := c.named[rule.NamedPattern]
		if !ok {
			return Predicate{}, fmt.Errorf("unknown named pattern %q", rule.NamedPattern)
		}
		p, err := c.anyOf(exprs)
		if err != nil {
			return Predicate{}, fmt.Errorf("named pattern %q: %w", rule.NamedPattern, err)
		}
		parts = append(parts, p)
	}

	if len(rule.Pattern) > 0 {
		p, err := c.anyOf(rule.Pattern)
		if err != nil {
			return Predicate{}, err
		}
		parts = append(parts, p)
	}

	if len(rule.NegativePattern) > 0 {
		p, err := c.anyOf(rule.NegativePattern)
		if err != nil {
			return Predicate{}, err
		}
		parts = append(parts, Not(p))
	}

	switch len(parts) {
	case 0:
		return Always(), nil
	case 1:
		return parts[0], nil
	default:
		return And(parts...), nil
	}
}

func (c *Compiler) anyOf(exprs []string) (Predicate, error) {
	preds := make([]Predicate, 0, len(exprs))
	for _, expr := range exprs {
		re, err := c.Regexp(expr)
		if err != nil {
			return Predicate{}, err
		}
		preds = append(preds, Pattern(re))
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return Or(preds...), nil
}

// Rules compiles the ordered rule list of a disambiguation. Top-level rules
// must name at least one language.
func (c *Compiler) Rules(rules []definitions.Rule) ([]Rule, error) {
	compiled := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if len(r.Language) == 0 {
			return nil, fmt.Errorf("rule %d: no language", i)
		}
		p, err := c.Predicate(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%v): %w", i, []string(r.Language), err)
		}
		compiled = append(compiled, Rule{
			Predicate: p,
			Languages: append([]string(nil), r.Language...),
		})
	}
	return compiled, nil
}
