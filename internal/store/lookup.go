package store

import (
	"bytes"
	"path"
	"strings"

	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/types"
)

// BaseName returns the last component of p, accepting both "/" and "\" as
// separators
func BaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// CandidateExtensions returns every dot-suffix of the base name of p,
// longest first: "a.tar.gz" yields ".tar.gz", ".gz".
func CandidateExtensions(p string) []string {
	base := BaseName(p)
	var exts []string
	for i := 0; i < len(base); i++ {
		if base[i] == '.' && i < len(base)-1 {
			exts = append(exts, base[i:])
		}
	}
	return exts
}

// LanguagesByExtension returns the names of the languages declaring ext
func (s *Store) LanguagesByExtension(ext string) []string {
	return types.Names(s.byExtension[ext])
}

// LanguagesByFilename returns the names of the languages declaring the
// exact file name
func (s *Store) LanguagesByFilename(name string) []string {
	return types.Names(s.byFilename[name])
}

// LanguagesByInterpreter returns the names of the languages run by the
// interpreter
func (s *Store) LanguagesByInterpreter(name string) []string {
	return types.Names(s.byInterpreter[name])
}

// DetectByExtension returns the languages for the longest extension of the
// base name known to the store, in declaration order. Matching is
// case-sensitive. The result is empty when no extension is known.
func (s *Store) DetectByExtension(p string) []*types.Language {
	langs, _ := s.detectByExtension(p)
	return langs
}

// MatchExtension is DetectByExtension that also reports the extension used
func (s *Store) MatchExtension(p string) ([]*types.Language, string) {
	return s.detectByExtension(p)
}

func (s *Store) detectByExtension(p string) ([]*types.Language, string) {
	for _, ext := range CandidateExtensions(p) {
		if langs := s.byExtension[ext]; len(langs) > 0 {
			return append([]*types.Language(nil), langs...), ext
		}
	}
	return nil, ""
}

// DetectByFilename returns the languages whose file names contain the exact,
// case-sensitive base name of p, in declaration order
func (s *Store) DetectByFilename(p string) []*types.Language {
	base := BaseName(p)
	if base == "" {
		return nil
	}
	return append([]*types.Language(nil), s.byFilename[base]...)
}

// DetectByInterpreter reads the shebang line of content and returns the
// languages run by its interpreter. "#!/usr/bin/env python3" and
// "#!/usr/bin/python3" both resolve python3; a version suffix such as
// python3.11 is retried without it.
func (s *Store) DetectByInterpreter(content []byte) []*types.Language {
	interp := Interpreter(content)
	if interp == "" {
		return nil
	}
	for _, candidate := range interpreterCandidates(interp) {
		if langs := s.byInterpreter[candidate]; len(langs) > 0 {
			return append([]*types.Language(nil), langs...)
		}
	}
	return nil
}

// Interpreter extracts the interpreter name from a shebang line, or "" when
// content does not start with one
func Interpreter(content []byte) string {
	if !bytes.HasPrefix(content, []byte("#!")) {
		return ""
	}

	line := content[2:]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(strings.TrimSpace(string(line)))
	if len(fields) == 0 {
		return ""
	}

	name := path.Base(fields[0])
	if name == "env" {
		name = ""
		for _, f := range fields[1:] {
			// env options and VAR=value assignments
			if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
				continue
			}
			name = path.Base(f)
			break
		}
	}
	return name
}

// interpreterCandidates yields name, then name without trailing ".N"
// version parts, then name without any trailing version digits
func interpreterCandidates(name string) []string {
	candidates := []string{name}
	current := name
	for {
		i := strings.LastIndexByte(current, '.')
		if i <= 0 || !allDigits(current[i+1:]) {
			break
		}
		current = current[:i]
		candidates = append(candidates, current)
	}
	if bare := strings.TrimRight(current, "0123456789."); bare != "" && bare != current {
		candidates = append(candidates, bare)
	}
	return candidates
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GroupFor returns the heuristic group for the longest extension of p that
// has one
func (s *Store) GroupFor(p string) (*heuristics.Group, bool) {
	for _, ext := range CandidateExtensions(p) {
		if g, ok := s.groups[ext]; ok {
			return g, true
		}
	}
	return nil, false
}

// Disambiguate narrows the languages sharing the extension of p using the
// heuristic rules for that extension. It returns the languages of the first
// rule that holds for content, or the group fallback when none holds.
// ok is false when p has no heuristic group or the fallback is empty.
func (s *Store) Disambiguate(p, content string) ([]string, bool) {
	g, ok := s.GroupFor(p)
	if !ok {
		return nil, false
	}
	return g.Evaluate(content)
}

