// Package store builds the immutable definition store: the language table
// indexed for exact lookups, the compiled heuristic groups and the vendored
// path classifier.
//
// A Store is built once, never mutated afterwards and is safe for any number
// of concurrent readers without locking.
package store

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/drshade/linguist/internal/definitions"
	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/types"
	"github.com/drshade/linguist/internal/vendored"
)

// Store is the read-only definition store
type Store struct {
	origin   string
	manifest definitions.Manifest

	languages     []*types.Language
	byName        map[string]*types.Language
	byAlias       map[string]*types.Language
	byExtension   map[string][]*types.Language
	byFilename    map[string][]*types.Language
	byInterpreter map[string][]*types.Language

	groups map[string]*heuristics.Group
	vendor *vendored.Classifier
}

type options struct {
	logger      *slog.Logger
	extraVendor []string
}

// Option configures New
type Option func(*options)

// WithLogger sets the logger used while building the store
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExtraVendorPatterns appends patterns after the dataset vendor patterns
func WithExtraVendorPatterns(patterns []string) Option {
	return func(o *options) {
		o.extraVendor = append(o.extraVendor, patterns...)
	}
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded dataset. It is built on
// first use; later calls return the same instance (or the same error).
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		ds, err := definitions.LoadEmbedded()
		if err != nil {
			defaultErr = &InitializationError{Source: definitions.EmbeddedOrigin, Reason: "failed to load dataset", Err: err}
			return
		}
		defaultStore, defaultErr = New(ds)
	})
	return defaultStore, defaultErr
}

// New validates ds and builds a store from it
func New(ds *definitions.Dataset, opts ...Option) (*Store, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		origin:        ds.Origin,
		manifest:      ds.Manifest,
		languages:     make([]*types.Language, 0, len(ds.Languages)),
		byName:        make(map[string]*types.Language, len(ds.Languages)),
		byAlias:       make(map[string]*types.Language),
		byExtension:   make(map[string][]*types.Language),
		byFilename:    make(map[string][]*types.Language),
		byInterpreter: make(map[string][]*types.Language),
		groups:        make(map[string]*heuristics.Group),
	}

	if err := s.indexLanguages(ds.Languages); err != nil {
		return nil, err
	}
	if err := s.compileHeuristics(ds.Heuristics); err != nil {
		return nil, err
	}

	vendor, err := vendored.New(ds.Vendor)
	if err != nil {
		return nil, initError(ds.Origin, definitions.VendorFile, "invalid vendor pattern", err)
	}
	if len(o.extraVendor) > 0 {
		if vendor, err = vendor.With(o.extraVendor); err != nil {
			return nil, initError(ds.Origin, "vendor options", "invalid vendor pattern", err)
		}
	}
	s.vendor = vendor

	o.logger.Debug("definition store built",
		"origin", s.origin,
		"version", s.manifest.Version,
		"languages", len(s.languages),
		"extensions", len(s.byExtension),
		"filenames", len(s.byFilename),
		"heuristic_groups", len(s.groups),
		"vendor_patterns", s.vendor.Len())

	return s, nil
}

func (s *Store) indexLanguages(langs []*types.Language) error {
	for _, lang := range langs {
		if lang == nil || lang.Name == "" {
			return initError(s.origin, definitions.LanguagesFile, "language without a name", nil)
		}
		if _, dup := s.byName[lang.Name]; dup {
			return initError(s.origin, definitions.LanguagesFile, fmt.Sprintf("duplicate language %q", lang.Name), nil)
		}

		s.languages = append(s.languages, lang)
		s.byName[lang.Name] = lang

		for _, ext := range lang.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return initError(s.origin, definitions.LanguagesFile, fmt.Sprintf("language %q: extension %q has no leading dot", lang.Name, ext), nil)
			}
			s.byExtension[ext] = appendOnce(s.byExtension[ext], lang)
		}
		for _, name := range lang.Filenames {
			s.byFilename[name] = appendOnce(s.byFilename[name], lang)
		}
		for _, interp := range lang.Interpreters {
			s.byInterpreter[interp] = appendOnce(s.byInterpreter[interp], lang)
		}
	}

	// Names take precedence over aliases of other languages
	for _, lang := range s.languages {
		s.byAlias[strings.ToLower(lang.Name)] = lang
	}
	for _, lang := range s.languages {
		for _, alias := range lang.Aliases {
			key := strings.ToLower(alias)
			if _, taken := s.byAlias[key]; !taken {
				s.byAlias[key] = lang
			}
		}
	}
	return nil
}

func (s *Store) compileHeuristics(h definitions.Heuristics) error {
	compiler := heuristics.NewCompiler(h.NamedPatterns)

	for i, d := range h.Disambiguations {
		rules, err := compiler.Rules(d.Rules)
		if err != nil {
			return initError(s.origin, definitions.HeuristicsFile, fmt.Sprintf("disambiguation %d %v", i, d.Extensions), err)
		}
		for _, r := range rules {
			if err := s.checkKnown(r.Languages); err != nil {
				return initError(s.origin, definitions.HeuristicsFile, fmt.Sprintf("disambiguation %d %v", i, d.Extensions), err)
			}
		}
		if d.Fallback != nil {
			if err := s.checkKnown(*d.Fallback); err != nil {
				return initError(s.origin, definitions.HeuristicsFile, fmt.Sprintf("disambiguation %d %v: fallback", i, d.Extensions), err)
			}
		}

		for _, ext := range d.Extensions {
			if _, dup := s.groups[ext]; dup {
				return initError(s.origin, definitions.HeuristicsFile, fmt.Sprintf("extension %q has more than one disambiguation", ext), nil)
			}

			var fallback []string
			if d.Fallback != nil {
				fallback = append([]string(nil), (*d.Fallback)...)
			} else {
				fallback = types.Names(s.byExtension[ext])
			}
			s.groups[ext] = &heuristics.Group{
				Extension: ext,
				Rules:     rules,
				Fallback:  fallback,
			}
		}
	}
	return nil
}

func (s *Store) checkKnown(names []string) error {
	for _, name := range names {
		if _, ok := s.byName[name]; !ok {
			return fmt.Errorf("unknown language %q", name)
		}
	}
	return nil
}

func appendOnce(list []*types.Language, lang *types.Language) []*types.Language {
	for _, l := range list {
		if l == lang {
			return list
		}
	}
	return append(list, lang)
}

// Origin returns where the dataset was loaded from
func (s *Store) Origin() string {
	return s.origin
}

// Version returns the dataset manifest version
func (s *Store) Version() string {
	return s.manifest.Version
}

// Manifest returns the dataset manifest
func (s *Store) Manifest() definitions.Manifest {
	return s.manifest
}

// Languages returns every language in declaration order
func (s *Store) Languages() []*types.Language {
	return append([]*types.Language(nil), s.languages...)
}

// Language returns the language with exactly this name
func (s *Store) Language(name string) (*types.Language, bool) {
	lang, ok := s.byName[name]
	return lang, ok
}

// LanguageByAlias finds a language by case-insensitive name or alias
func (s *Store) LanguageByAlias(alias string) (*types.Language, bool) {
	lang, ok := s.byAlias[strings.ToLower(strings.TrimSpace(alias))]
	return lang, ok
}

// Extensions returns every known extension, sorted
func (s *Store) Extensions() []string {
	exts := make([]string, 0, len(s.byExtension))
	for ext := range s.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// HeuristicGroupFor returns the heuristic group registered for ext
func (s *Store) HeuristicGroupFor(ext string) (*heuristics.Group, bool) {
	g, ok := s.groups[ext]
	return g, ok
}

// HeuristicExtensions returns the extensions that have a heuristic group, sorted
func (s *Store) HeuristicExtensions() []string {
	exts := make([]string, 0, len(s.groups))
	for ext := range s.groups {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// VendorPatterns returns the vendor patterns in evaluation order
func (s *Store) VendorPatterns() []vendored.Pattern {
	return s.vendor.Patterns()
}

// Vendor returns the vendored path classifier
func (s *Store) Vendor() *vendored.Classifier {
	return s.vendor
}

// IsVendored reports whether path matches a vendor pattern
func (s *Store) IsVendored(path string) bool {
	return s.vendor.IsVendored(path)
}
