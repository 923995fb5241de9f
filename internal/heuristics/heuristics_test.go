package heuristics

import (
	"regexp"
	"strings"
	"testing"

	"github.com/drshade/linguist/internal/definitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func re(t *testing.T, expr string) *regexp.Regexp {
	t.Helper()
	r, err := regexp.Compile(multiline + expr)
	require.NoError(t, err)
	return r
}

func TestPredicate_Eval(t *testing.T) {
	include := Pattern(re(t, `^#include`))
	std := Pattern(re(t, `std::`))

	tests := []struct {
		name    string
		pred    Predicate
		content string
		want    bool
	}{
		{"always on empty", Always(), "", true},
		{"pattern matches line start", include, "int x;\n#include <a>\n", true},
		{"pattern misses", include, "  #include <a>", false},
		{"and all true", And(include, std), "#include <x>\nstd::cout", true},
		{"and one false", And(include, std), "#include <x>", false},
		{"empty and", And(), "anything", true},
		{"or one true", Or(include, std), "std::vector", true},
		{"or none true", Or(include, std), "plain", false},
		{"empty or", Or(), "anything", false},
		{"not inverts", Not(std), "plain", true},
		{"not of match", Not(std), "std::x", false},
		{"nested", And(include, Not(Or(std, Pattern(re(t, `template`))))), "#include <stdio.h>", true},
		{"nil pattern", Predicate{Op: OpPattern}, "x", false},
		{"unknown op", Predicate{Op: Op(42)}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Eval(tt.content))
		})
	}
}

func TestPredicate_ShortCircuit(t *testing.T) {
	miss := Pattern(re(t, `^never$`))
	hit := Pattern(re(t, `.`))

	assert.False(t, And(miss, hit).Eval("x"))
	assert.True(t, Or(hit, miss).Eval("x"))
}

func TestPredicate_String(t *testing.T) {
	p := And(Pattern(re(t, `^#include`)), Not(Or(Pattern(re(t, `a`)), Pattern(re(t, `b`)))), Always())
	assert.Equal(t, "and(/^#include/, not(or(/a/, /b/)), always)", p.String())
	assert.Equal(t, "and", OpAnd.String())
	assert.Equal(t, "unknown", Op(99).String())
}

func TestCompiler_Predicate(t *testing.T) {
	c := NewCompiler(map[string]definitions.StringList{
		"cpp": {`^\s*template\s*<`, `std::\w+`},
	})

	tests := []struct {
		name    string
		rule    definitions.Rule
		matches []string
		misses  []string
		shape   string
	}{
		{
			name:    "no conditions",
			rule:    definitions.Rule{Language: definitions.StringList{"C"}},
			matches: []string{"", "anything"},
			shape:   "always",
		},
		{
			name:    "single pattern",
			rule:    definitions.Rule{Pattern: definitions.StringList{`^fn `}},
			matches: []string{"fn main() {}", "// x\nfn main() {}"},
			misses:  []string{"  fn main() {}", "FN main"},
			shape:   "/^fn /",
		},
		{
			name:    "pattern list is any-of",
			rule:    definitions.Rule{Pattern: definitions.StringList{`^a$`, `^b$`}},
			matches: []string{"a", "x\nb\ny"},
			misses:  []string{"ab"},
			shape:   "or(/^a$/, /^b$/)",
		},
		{
			name:    "negative pattern is none-of",
			rule:    definitions.Rule{NegativePattern: definitions.StringList{`begin`, `package`}},
			matches: []string{"select 1;"},
			misses:  []string{"begin", "create package x"},
			shape:   "not(or(/begin/, /package/))",
		},
		{
			name:    "named pattern",
			rule:    definitions.Rule{NamedPattern: "cpp"},
			matches: []string{"std::string s;", "template <typename T>"},
			misses:  []string{"#include <stdio.h>"},
		},
		{
			name: "conditions are combined",
			rule: definitions.Rule{
				Pattern:         definitions.StringList{`^#include`},
				NegativePattern: definitions.StringList{`std::`},
			},
			matches: []string{"#include <stdio.h>"},
			misses:  []string{"#include <iostream>\nstd::cout", "int main;"},
			shape:   "and(/^#include/, not(/std::/))",
		},
		{
			name: "and sub-rules",
			rule: definitions.Rule{
				And: []definitions.Rule{
					{Pattern: definitions.StringList{`alpha`}},
					{NegativePattern: definitions.StringList{`beta`}},
				},
			},
			matches: []string{"alpha"},
			misses:  []string{"alpha beta", "gamma"},
			shape:   "and(/alpha/, not(/beta/))",
		},
		{
			name:    "case sensitive",
			rule:    definitions.Rule{Pattern: definitions.StringList{`MODULE`}},
			matches: []string{"MODULE x;"},
			misses:  []string{"module x;"},
		},
		{
			name:    "inline case folding",
			rule:    definitions.Rule{Pattern: definitions.StringList{`(?i:module)`}},
			matches: []string{"MODULE", "Module"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Predicate(tt.rule)
			require.NoError(t, err)
			for _, m := range tt.matches {
				assert.True(t, p.Eval(m), "expected match: %q", m)
			}
			for _, m := range tt.misses {
				assert.False(t, p.Eval(m), "expected miss: %q", m)
			}
			if tt.shape != "" {
				assert.Equal(t, tt.shape, p.String())
			}
		})
	}
}

func TestCompiler_Errors(t *testing.T) {
	c := NewCompiler(nil)

	_, err := c.Predicate(definitions.Rule{NamedPattern: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown named pattern "missing"`)

	_, err = c.Predicate(definitions.Rule{Pattern: definitions.StringList{`(unclosed`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")

	_, err = c.Predicate(definitions.Rule{And: []definitions.Rule{{Pattern: definitions.StringList{`a(?=b)`}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "and[0]")

	_, err = c.Rules([]definitions.Rule{{Pattern: definitions.StringList{"x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no language")
}

func TestCompiler_SharesExpressions(t *testing.T) {
	c := NewCompiler(map[string]definitions.StringList{"p": {`^x`}})

	rules, err := c.Rules([]definitions.Rule{
		{Language: definitions.StringList{"A"}, Pattern: definitions.StringList{`^x`}},
		{Language: definitions.StringList{"B"}, NamedPattern: "p"},
		{Language: definitions.StringList{"C"}, Pattern: definitions.StringList{`^y`}},
	})
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, 2, c.Patterns())
	assert.Same(t, rules[0].Predicate.Pattern, rules[1].Predicate.Pattern)
}

func compileGroup(t *testing.T, ext string, fallback []string, rules ...definitions.Rule) *Group {
	t.Helper()
	compiled, err := NewCompiler(nil).Rules(rules)
	require.NoError(t, err)
	return &Group{Extension: ext, Rules: compiled, Fallback: fallback}
}

func TestGroup_FirstMatchWins(t *testing.T) {
	g := compileGroup(t, ".h", []string{"C", "C++", "Objective-C"},
		definitions.Rule{Language: definitions.StringList{"Objective-C"}, Pattern: definitions.StringList{`^@interface`}},
		definitions.Rule{Language: definitions.StringList{"C++"}, Pattern: definitions.StringList{`std::`}},
		definitions.Rule{Language: definitions.StringList{"C"}, Pattern: definitions.StringList{`.`}},
	)

	// Matches both the C++ and the catch-all C rule; the earlier rule wins.
	idx, langs, ok := g.Match("std::vector<int> v;")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"C++"}, langs)

	langs, ok = g.Evaluate("int main;")
	require.True(t, ok)
	assert.Equal(t, []string{"C"}, langs)
}

func TestGroup_Fallback(t *testing.T) {
	g := compileGroup(t, ".pl", []string{"Perl", "Prolog"},
		definitions.Rule{Language: definitions.StringList{"Prolog"}, Pattern: definitions.StringList{`:-`}},
	)

	idx, langs, ok := g.Match("print 1;")
	require.True(t, ok)
	assert.Equal(t, -1, idx)
	assert.Equal(t, []string{"Perl", "Prolog"}, langs)

	empty := compileGroup(t, ".pl", nil,
		definitions.Rule{Language: definitions.StringList{"Prolog"}, Pattern: definitions.StringList{`:-`}},
	)
	langs, ok = empty.Evaluate("print 1;")
	assert.False(t, ok)
	assert.Nil(t, langs)
}

func TestGroup_ResultsAreCopies(t *testing.T) {
	g := compileGroup(t, ".ts", []string{"TypeScript", "XML"},
		definitions.Rule{Language: definitions.StringList{"XML"}, Pattern: definitions.StringList{`<TS\b`}},
	)

	langs, ok := g.Evaluate("<TS version=\"2.1\">")
	require.True(t, ok)
	langs[0] = "changed"

	again, _ := g.Evaluate("<TS version=\"2.1\">")
	assert.Equal(t, []string{"XML"}, again)

	fb, _ := g.Evaluate("let x = 1")
	fb[0] = "changed"
	assert.Equal(t, []string{"TypeScript", "XML"}, g.Fallback)
}

func TestGroup_Deterministic(t *testing.T) {
	g := compileGroup(t, ".m", []string{"MATLAB", "Objective-C"},
		definitions.Rule{Language: definitions.StringList{"Objective-C"}, Pattern: definitions.StringList{`^@interface`}},
		definitions.Rule{Language: definitions.StringList{"MATLAB"}, Pattern: definitions.StringList{`^\s*%`}},
	)

	content := "% comment\nx = 1;"
	first, ok := g.Evaluate(content)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := g.Evaluate(content)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestGroup_TruncatesContent(t *testing.T) {
	g := compileGroup(t, ".x", nil,
		definitions.Rule{Language: definitions.StringList{"Tail"}, Pattern: definitions.StringList{`TAIL`}},
	)

	within := strings.Repeat("a", MaxContentBytes-4) + "TAIL"
	_, ok := g.Evaluate(within)
	assert.True(t, ok)

	beyond := strings.Repeat("a", MaxContentBytes) + "TAIL"
	_, ok = g.Evaluate(beyond)
	assert.False(t, ok)
}

func TestGroup_Languages(t *testing.T) {
	g := compileGroup(t, ".mod", []string{"XML", "AMPL", "Modula-2"},
		definitions.Rule{Language: definitions.StringList{"XML"}, Pattern: definitions.StringList{`<!ENTITY `}},
		definitions.Rule{Language: definitions.StringList{"Linux Kernel Module", "AMPL"}},
	)

	assert.Equal(t, []string{"XML", "Linux Kernel Module", "AMPL", "Modula-2"}, g.Languages())
}

func TestGroup_GarbageContent(t *testing.T) {
	g := compileGroup(t, ".h", []string{"C"},
		definitions.Rule{Language: definitions.StringList{"C++"}, Pattern: definitions.StringList{`std::`}},
	)

	assert.NotPanics(t, func() {
		g.Evaluate(string([]byte{0xff, 0xfe, 0x00, 0x80, '\n', 0xc3}))
		g.Evaluate("")
	})
}
