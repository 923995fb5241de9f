package detector

import (
	"sync"
	"testing"

	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/vendored"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDetector(t *testing.T, opts ...Option) *Detector {
	t.Helper()
	s, err := store.Default()
	require.NoError(t, err)
	d, err := New(s, opts...)
	require.NoError(t, err)
	return d
}

func TestDetect_Strategies(t *testing.T) {
	d := newDetector(t, WithClassifier(false))

	tests := []struct {
		name     string
		path     string
		content  string
		language string
		strategy Strategy
	}{
		{"filename", "build/Makefile", "all:\n\techo hi\n", "Makefile", StrategyFilename},
		{"filename beats extension", "build.xml", "<project/>", "Ant Build System", StrategyFilename},
		{"shebang", "bin/run", "#!/usr/bin/env python3\nprint(1)\n", "Python", StrategyInterpreter},
		{"shebang beats extension", "tool.txt", "#!/bin/bash\necho\n", "Shell", StrategyInterpreter},
		{"extension without content", "main.go", "", "Go", StrategyExtension},
		{"longest extension", "config.rs.in", "", "Rust", StrategyExtension},
		{"heuristics", "test.h", "#include <iostream>\nstd::string s;\n", "C++", StrategyHeuristics},
		{"heuristics objective-c", "View.h", "#import <UIKit/UIKit.h>\n", "Objective-C", StrategyHeuristics},
		{"heuristics xml", "app.ts", "<?xml version=\"1.0\"?>\n<TS version=\"2.1\">\n", "XML", StrategyHeuristics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(tt.path, []byte(tt.content))
			assert.Equal(t, tt.path, res.Path)
			assert.Equal(t, tt.language, res.Language)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, []string{tt.language}, res.Candidates)
			assert.True(t, res.Known())
		})
	}
}

func TestDetect_AmbiguousWithoutContent(t *testing.T) {
	d := newDetector(t)

	res := d.Detect("x.h", nil)
	assert.Empty(t, res.Language)
	assert.Equal(t, []string{"C", "C++", "Objective-C"}, res.Candidates)
	assert.Equal(t, StrategyExtension, res.Strategy)
	assert.True(t, res.Known())
}

func TestDetect_FallbackKeepsCandidates(t *testing.T) {
	d := newDetector(t, WithClassifier(false))

	res := d.Detect("site.pp", []byte("nothing recognisable"))
	assert.Empty(t, res.Language)
	assert.Equal(t, []string{"Pascal", "Puppet"}, res.Candidates)
	assert.Equal(t, StrategyExtension, res.Strategy)
}

func TestDetect_ClassifierStaysWithinCandidates(t *testing.T) {
	d := newDetector(t)

	res := d.Detect("site.pp", []byte("class nginx {\n  package { 'nginx': ensure => installed }\n}\n"))
	require.NotEmpty(t, res.Candidates)
	assert.Subset(t, []string{"Pascal", "Puppet"}, res.Candidates)
	if res.Strategy == StrategyClassifier {
		assert.Len(t, res.Candidates, 1)
		assert.Equal(t, res.Candidates[0], res.Language)
	}
}

func TestDetect_Unknown(t *testing.T) {
	d := newDetector(t)

	for _, p := range []string{"file.xyz123", "LICENSE-ish", ""} {
		t.Run(p, func(t *testing.T) {
			res := d.Detect(p, []byte("plain words"))
			assert.False(t, res.Known())
			assert.Equal(t, StrategyNone, res.Strategy)
			assert.Empty(t, res.Candidates)
		})
	}
}

func TestDetect_Binary(t *testing.T) {
	d := newDetector(t)

	res := d.Detect("blob.h", []byte{0x7f, 'E', 'L', 'F', 0x00, 0x00, 0x01, 0x02})
	assert.True(t, res.Binary)
	assert.Equal(t, StrategyExtension, res.Strategy, "content strategies are skipped for binary data")
	assert.Equal(t, []string{"C", "C++", "Objective-C"}, res.Candidates)
}

func TestDetect_Vendored(t *testing.T) {
	d := newDetector(t)

	res := d.Detect("node_modules/lodash/index.js", nil)
	assert.True(t, res.Vendored)
	assert.Equal(t, "node_modules/", res.VendorPattern)
	assert.Equal(t, "JavaScript", res.Language)

	res = d.Detect("src/index.js", nil)
	assert.False(t, res.Vendored)
	assert.Empty(t, res.VendorPattern)
}

func TestDetect_CustomVendor(t *testing.T) {
	c, err := vendored.New([]string{"generated/"})
	require.NoError(t, err)
	d := newDetector(t, WithVendor(c))

	assert.True(t, d.Detect("generated/api.go", nil).Vendored)
	assert.False(t, d.Detect("node_modules/a.js", nil).Vendored)
}

func TestDetect_Overrides(t *testing.T) {
	d := newDetector(t, WithOverrides([]Override{
		{Path: "include/**/*.h", Language: "cpp"},
		{Path: "*.inc", Language: "PHP"},
		{Path: "*.h", Language: "C"},
	}))

	tests := []struct {
		path     string
		language string
	}{
		{"include/net/socket.h", "C++"},
		{`include\net\socket.h`, "C++"},
		{"src/util.h", "C"},
		{"lib/deep/config.inc", "PHP"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res := d.Detect(tt.path, []byte("#import <Foundation/Foundation.h>\n"))
			assert.Equal(t, tt.language, res.Language)
			assert.Equal(t, StrategyOverride, res.Strategy)
		})
	}

	res := d.Detect("main.go", nil)
	assert.Equal(t, StrategyExtension, res.Strategy)
}

func TestNew_InvalidOverrides(t *testing.T) {
	s, err := store.Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		override Override
		expect   string
	}{
		{"empty path", Override{Path: "", Language: "C"}, "invalid path pattern"},
		{"bad glob", Override{Path: "[abc", Language: "C"}, "invalid path pattern"},
		{"unknown language", Override{Path: "*.h", Language: "Klingon"}, `unknown language "Klingon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(s, WithOverrides([]Override{tt.override}))
			require.Error(t, err)
			assert.Nil(t, d)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestDetect_Concurrent(t *testing.T) {
	d := newDetector(t)
	content := []byte("#include <iostream>\n")
	want := d.Detect("a.h", content)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, d.Detect("a.h", content))
		}()
	}
	wg.Wait()
}
