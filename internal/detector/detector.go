// Package detector composes the detection strategies into a single
// pipeline: configured overrides, exact filename, shebang interpreter,
// extension, content heuristics and finally the go-enry Bayesian classifier.
// Each strategy only runs while more than one candidate remains.
package detector

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/types"
	"github.com/drshade/linguist/internal/vendored"
	"github.com/go-enry/go-enry/v2"
)

// Strategy names the step that produced a result
type Strategy string

const (
	StrategyNone        Strategy = ""
	StrategyOverride    Strategy = "override"
	StrategyFilename    Strategy = "filename"
	StrategyInterpreter Strategy = "shebang"
	StrategyExtension   Strategy = "extension"
	StrategyHeuristics  Strategy = "heuristics"
	StrategyClassifier  Strategy = "classifier"
)

// Result is the outcome of detecting one file
type Result struct {
	Path          string   `json:"path" yaml:"path"`
	Language      string   `json:"language,omitempty" yaml:"language,omitempty"`
	Candidates    []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Strategy      Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Vendored      bool     `json:"vendored" yaml:"vendored"`
	VendorPattern string   `json:"vendor_pattern,omitempty" yaml:"vendor_pattern,omitempty"`
	Binary        bool     `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// Known reports whether at least one candidate language was found
func (r Result) Known() bool {
	return r.Language != "" || len(r.Candidates) > 0
}

// Override forces Language for paths matching the Path glob. A glob without
// "/" is matched against the base name only.
type Override struct {
	Path     string `yaml:"path" toml:"path" json:"path"`
	Language string `yaml:"language" toml:"language" json:"language"`
}

// Detector runs the detection pipeline against a definition store.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	store      *store.Store
	vendor     *vendored.Classifier
	overrides  []Override
	classifier bool
	logger     *slog.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithOverrides adds path overrides, evaluated in order before any other strategy
func WithOverrides(overrides []Override) Option {
	return func(d *Detector) {
		d.overrides = append(d.overrides, overrides...)
	}
}

// WithVendor replaces the store's vendored classifier
func WithVendor(c *vendored.Classifier) Option {
	return func(d *Detector) {
		d.vendor = c
	}
}

// WithClassifier enables or disables the go-enry classifier step (enabled
// by default)
func WithClassifier(enabled bool) Option {
	return func(d *Detector) {
		d.classifier = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a detector. Override globs must be valid and name a language
// known to s (by name or alias); names are canonicalised.
func New(s *store.Store, opts ...Option) (*Detector, error) {
	d := &Detector{
		store:      s,
		vendor:     s.Vendor(),
		classifier: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	for i, o := range d.overrides {
		if o.Path == "" || !doublestar.ValidatePattern(o.Path) {
			return nil, fmt.Errorf("override %d: invalid path pattern %q", i, o.Path)
		}
		lang, ok := s.LanguageByAlias(o.Language)
		if !ok {
			return nil, fmt.Errorf("override %d: unknown language %q", i, o.Language)
		}
		d.overrides[i].Language = lang.Name
	}

	return d, nil
}

// Store returns the definition store used by the detector
func (d *Detector) Store() *store.Store {
	return d.store
}

// Detect classifies one file. content may be nil when only the path is
// known; content-based strategies are then skipped. Binary content is
// treated as absent.
func (d *Detector) Detect(p string, content []byte) Result {
	res := Result{Path: p}
	if pattern, ok := d.vendor.Match(p); ok {
		res.Vendored = true
		res.VendorPattern = pattern.String()
	}

	if lang, ok := d.override(p); ok {
		res.Language = lang
		res.Candidates = []string{lang}
		res.Strategy = StrategyOverride
		return res
	}

	if len(content) > heuristics.MaxContentBytes {
		content = content[:heuristics.MaxContentBytes]
	}
	if len(content) > 0 && enry.IsBinary(content) {
		res.Binary = true
		content = nil
	}

	candidates, strategy := d.candidates(p, content)
	if len(candidates) == 0 {
		return res
	}
	res.Strategy = strategy
	res.Candidates = candidates

	if len(candidates) > 1 && len(content) > 0 {
		if langs, ok := d.store.Disambiguate(p, string(content)); ok {
			if narrowed := intersect(candidates, langs); len(narrowed) > 0 && len(narrowed) < len(candidates) {
				res.Candidates = narrowed
				res.Strategy = StrategyHeuristics
			}
		}
	}

	if len(res.Candidates) > 1 && len(content) > 0 && d.classifier {
		if lang, _ := enry.GetLanguageByClassifier(content, res.Candidates); lang != "" && contains(res.Candidates, lang) {
			d.logger.Debug("classifier picked language", "path", p, "language", lang, "candidates", res.Candidates)
			res.Candidates = []string{lang}
			res.Strategy = StrategyClassifier
		}
	}

	if len(res.Candidates) == 1 {
		res.Language = res.Candidates[0]
	}
	return res
}

// candidates returns the languages of the first strategy that finds any
func (d *Detector) candidates(p string, content []byte) ([]string, Strategy) {
	if langs := d.store.DetectByFilename(p); len(langs) > 0 {
		return types.Names(langs), StrategyFilename
	}
	if langs := d.store.DetectByInterpreter(content); len(langs) > 0 {
		return types.Names(langs), StrategyInterpreter
	}
	if langs := d.store.DetectByExtension(p); len(langs) > 0 {
		return types.Names(langs), StrategyExtension
	}
	return nil, StrategyNone
}

func (d *Detector) override(p string) (string, bool) {
	if len(d.overrides) == 0 {
		return "", false
	}
	segments, _ := vendored.Normalize(p)
	if len(segments) == 0 {
		return "", false
	}
	rel := strings.Join(segments, "/")
	base := path.Base(rel)

	for _, o := range d.overrides {
		target := rel
		if !strings.Contains(o.Path, "/") {
			target = base
		}
		if ok, _ := doublestar.Match(o.Path, target); ok {
			return o.Language, true
		}
	}
	return "", false
}

func intersect(candidates, keep []string) []string {
	var out []string
	for _, c := range candidates {
		if contains(keep, c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
