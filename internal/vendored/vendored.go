// Package vendored decides whether a path belongs to third-party code
// (dependencies, generated bundles, build tool wrappers) using an ordered
// list of gitignore-style patterns.
//
// Pattern syntax:
//
//	*        any run of characters within one path component
//	?, [a-z] single character, character class
//	**       any number of components (only as a whole component); a
//	         trailing "/**" matches everything inside, not the directory
//	a/b      a pattern containing "/" is anchored at the root
//	name     a pattern without "/" matches any single component
//	dir/     a trailing "/" only matches directories
//
// Negated patterns ("!pattern") and brace alternatives are not supported.
package vendored

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ErrInvalidPattern is wrapped by every pattern compilation error
var ErrInvalidPattern = errors.New("invalid vendor pattern")

// Pattern is one compiled vendor pattern
type Pattern struct {
	source  string
	matcher gitignore.Pattern
	// inside is set for patterns ending in "/**" and matches the parent
	// directory; such a pattern only holds for paths below it.
	inside gitignore.Pattern
}

// ParsePattern compiles a single pattern
func ParsePattern(s string) (Pattern, error) {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "" || trimmed == "/":
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	case strings.HasPrefix(trimmed, "!"):
		return Pattern{}, fmt.Errorf("%w: %q: negated patterns are not supported", ErrInvalidPattern, s)
	case strings.ContainsAny(trimmed, "{}"):
		return Pattern{}, fmt.Errorf("%w: %q: brace alternatives are not supported", ErrInvalidPattern, s)
	}

	body := strings.Trim(trimmed, "/")
	if !doublestar.ValidatePattern(body) {
		return Pattern{}, fmt.Errorf("%w: %q: malformed glob", ErrInvalidPattern, s)
	}
	for _, seg := range strings.Split(body, "/") {
		if seg == "" {
			return Pattern{}, fmt.Errorf("%w: %q: empty path component", ErrInvalidPattern, s)
		}
		if seg != "**" && strings.Contains(seg, "**") {
			return Pattern{}, fmt.Errorf("%w: %q: ** must be a whole path component", ErrInvalidPattern, s)
		}
	}

	p := Pattern{
		source:  trimmed,
		matcher: gitignore.ParsePattern(trimmed, nil),
	}
	if parent, ok := strings.CutSuffix(body, "/**"); ok {
		dir := parent + "/"
		if !strings.Contains(parent, "/") {
			dir = "/" + dir
		}
		p.inside = gitignore.ParsePattern(dir, nil)
	}
	return p, nil
}

// String returns the pattern as written
func (p Pattern) String() string {
	return p.source
}

// Match reports whether the pattern matches path
func (p Pattern) Match(path string) bool {
	segments, isDir := Normalize(path)
	return p.match(segments, isDir)
}

func (p Pattern) match(segments []string, isDir bool) bool {
	if len(segments) == 0 || p.matcher == nil {
		return false
	}
	if p.inside != nil {
		for i := 1; i < len(segments); i++ {
			if p.inside.Match(segments[:i], true) == gitignore.Exclude {
				return true
			}
		}
		return false
	}
	return p.matcher.Match(segments, isDir) == gitignore.Exclude
}

// Normalize converts path into slash-separated components relative to the
// root: backslashes become slashes, a drive letter is dropped, the path is
// cleaned and leading "/" and "./" are removed. Leading ".." components are
// dropped too, so "../vendor/x.c" is classified like "vendor/x.c": callers
// pass paths relative to the working directory, not only to a repository
// root. A trailing separator marks the path as a directory. The empty path
// yields no components.
func Normalize(p string) (segments []string, isDir bool) {
	p = strings.ReplaceAll(p, `\`, "/")
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		p = p[2:]
	}
	if p == "" {
		return nil, false
	}

	isDir = strings.HasSuffix(p, "/")
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return nil, false
	}
	return strings.Split(cleaned, "/"), isDir
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
