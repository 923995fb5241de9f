// Package linguist detects the language of source files from their path and
// content, and tells vendored third-party paths apart from project code.
//
// The package-level functions use the definition dataset embedded in the
// binary. It is loaded on first use; a malformed embedded dataset is a build
// defect and makes the first call panic. Use store.New with a dataset from
// definitions.LoadDir to work with an external dataset and get errors back
// instead.
package linguist

import (
	"sync"

	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/types"
)

// Language is one entry of the definition dataset
type Language = types.Language

// Result is the outcome of Detect
type Result = detector.Result

var (
	initOnce sync.Once
	std      *detector.Detector
)

func defaultDetector() *detector.Detector {
	initOnce.Do(func() {
		s, err := store.Default()
		if err != nil {
			panic(err)
		}
		d, err := detector.New(s)
		if err != nil {
			panic(err)
		}
		std = d
	})
	return std
}

func defaultStore() *store.Store {
	return defaultDetector().Store()
}

// DetectByExtension returns the languages declaring the longest known
// extension of path, in dataset order. An unknown extension yields an empty
// result.
func DetectByExtension(path string) []*Language {
	return defaultStore().DetectByExtension(path)
}

// DetectByFilename returns the languages declaring the exact base name of
// path. Matching is case-sensitive.
func DetectByFilename(path string) []*Language {
	return defaultStore().DetectByFilename(path)
}

// Disambiguate picks among the languages sharing the extension of path by
// evaluating that extension's heuristic rules against content. It reports
// false when the extension has no heuristics.
func Disambiguate(path, content string) ([]string, bool) {
	return defaultStore().Disambiguate(path, content)
}

// IsVendored reports whether path is third-party code
func IsVendored(path string) bool {
	return defaultStore().IsVendored(path)
}

// Detect runs every strategy in turn and returns the narrowed result
func Detect(path string, content []byte) Result {
	return defaultDetector().Detect(path, content)
}

// Languages returns every known language in dataset order
func Languages() []*Language {
	return defaultStore().Languages()
}

// LanguageByName finds a language by its name or one of its aliases,
// ignoring case
func LanguageByName(name string) (*Language, bool) {
	return defaultStore().LanguageByAlias(name)
}

// Version returns the version of the embedded dataset
func Version() string {
	return defaultStore().Version()
}
