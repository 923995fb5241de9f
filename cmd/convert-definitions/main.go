package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drshade/linguist/internal/definitions"
	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/types"
	"gopkg.in/yaml.v3"
)

// Converter turns an upstream github-linguist checkout (lib/linguist) into a
// dataset directory. Upstream regexes are Ruby (Onigmo) flavoured; rules
// whose expressions RE2 rejects are dropped and reported.
type Converter struct {
	sourceDir string
	targetDir string
	stats     map[string]int
	dropped   []string
}

// NewConverter creates a new converter instance
func NewConverter(sourceDir, targetDir string) *Converter {
	return &Converter{
		sourceDir: sourceDir,
		targetDir: targetDir,
		stats:     make(map[string]int),
	}
}

// Convert reads languages.yml and heuristics.yml from the source directory
// and returns the converted dataset. vendor patterns are taken as given:
// upstream vendor.yml holds Ruby regexes, not globs.
func (c *Converter) Convert(version string, vendor []string) (*definitions.Dataset, error) {
	languages, err := c.readLanguages(filepath.Join(c.sourceDir, definitions.LanguagesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read languages: %w", err)
	}
	c.stats["languages"] = len(languages)

	known := make(map[string]bool, len(languages))
	for _, lang := range languages {
		known[lang.Name] = true
	}

	h, err := c.readHeuristics(filepath.Join(c.sourceDir, definitions.HeuristicsFile), known)
	if err != nil {
		return nil, fmt.Errorf("failed to read heuristics: %w", err)
	}

	return &definitions.Dataset{
		Manifest: definitions.Manifest{
			Version: version,
			Source:  "github-linguist " + filepath.Base(filepath.Clean(c.sourceDir)),
		},
		Languages:  languages,
		Heuristics: h,
		Vendor:     vendor,
	}, nil
}

// readLanguages decodes the language table keeping declaration order.
// Fields the dataset does not carry (wrap, codemirror_mode, ...) are ignored.
func (c *Converter) readLanguages(path string) ([]*types.Language, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a mapping of language names", path)
	}

	root := doc.Content[0]
	languages := make([]*types.Language, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		lang := &types.Language{}
		if err := value.Decode(lang); err != nil {
			c.drop("language %q: %v", key.Value, err)
			continue
		}
		lang.Name = key.Value
		lang.Extensions = validExtensions(lang.Extensions)
		languages = append(languages, lang)
	}
	return languages, nil
}

func validExtensions(exts []string) []string {
	out := exts[:0]
	for _, e := range exts {
		if strings.HasPrefix(e, ".") && len(e) > 1 {
			out = append(out, e)
		}
	}
	return out
}

// readHeuristics keeps every rule RE2 can compile and whose languages exist
func (c *Converter) readHeuristics(path string, known map[string]bool) (definitions.Heuristics, error) {
	var h definitions.Heuristics
	content, err := os.ReadFile(path)
	if err != nil {
		return h, err
	}
	if err := yaml.Unmarshal(content, &h); err != nil {
		return h, err
	}

	h.NamedPatterns = c.filterNamedPatterns(h.NamedPatterns)
	compiler := heuristics.NewCompiler(h.NamedPatterns)

	kept := h.Disambiguations[:0]
	for _, d := range h.Disambiguations {
		rules := d.Rules[:0]
		for i, r := range d.Rules {
			if missing := unknownLanguages(r.Language, known); len(missing) > 0 {
				c.drop("%v rule %d: unknown languages %v", d.Extensions, i, missing)
				continue
			}
			if _, err := compiler.Predicate(r); err != nil {
				c.drop("%v rule %d (%v): %v", d.Extensions, i, []string(r.Language), err)
				continue
			}
			rules = append(rules, r)
		}
		c.stats["rules"] += len(rules)

		if d.Fallback != nil {
			if missing := unknownLanguages(*d.Fallback, known); len(missing) > 0 {
				c.drop("%v fallback: unknown languages %v", d.Extensions, missing)
				d.Fallback = nil
			}
		}
		if len(rules) == 0 {
			c.drop("%v: no usable rules", d.Extensions)
			continue
		}
		d.Rules = rules
		kept = append(kept, d)
	}
	h.Disambiguations = kept
	c.stats["disambiguations"] = len(kept)
	c.stats["named patterns"] = len(h.NamedPatterns)
	return h, nil
}

// filterNamedPatterns drops named patterns with an expression RE2 rejects.
// Rules referencing a dropped name are dropped later by the compiler.
func (c *Converter) filterNamedPatterns(named map[string]definitions.StringList) map[string]definitions.StringList {
	if len(named) == 0 {
		return nil
	}
	probe := heuristics.NewCompiler(nil)
	out := make(map[string]definitions.StringList, len(named))
	for name, exprs := range named {
		ok := true
		for _, expr := range exprs {
			if _, err := probe.Regexp(expr); err != nil {
				c.drop("named pattern %q: %v", name, err)
				ok = false
				break
			}
		}
		if ok {
			out[name] = exprs
		}
	}
	return out
}

func unknownLanguages(names []string, known map[string]bool) []string {
	var missing []string
	for _, n := range names {
		if !known[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

func (c *Converter) drop(format string, args ...interface{}) {
	c.dropped = append(c.dropped, fmt.Sprintf(format, args...))
}

// Write stores ds in the target directory and loads it back
func (c *Converter) Write(ds *definitions.Dataset) error {
	if err := definitions.WriteDir(ds, c.targetDir); err != nil {
		return err
	}
	written, err := definitions.LoadDir(c.targetDir)
	if err != nil {
		return fmt.Errorf("written dataset does not load: %w", err)
	}
	if _, err := store.New(written); err != nil {
		return fmt.Errorf("written dataset does not build: %w", err)
	}
	return nil
}

// PrintStats prints conversion statistics
func (c *Converter) PrintStats() {
	var keys []string
	for k := range c.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	log.Printf("Statistics:")
	for _, k := range keys {
		log.Printf("  %s: %d", k, c.stats[k])
	}
	log.Printf("  dropped: %d", len(c.dropped))
}

// PrintDropped lists everything left out of the dataset
func (c *Converter) PrintDropped() {
	for _, d := range c.dropped {
		log.Printf("- %s", d)
	}
}

func loadVendor(path string) ([]string, error) {
	if path == "" {
		ds, err := definitions.LoadEmbedded()
		if err != nil {
			return nil, err
		}
		return ds.Vendor, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var patterns []string
	if err := yaml.Unmarshal(content, &patterns); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return patterns, nil
}

func main() {
	var (
		sourceDir  = flag.String("source", "../linguist/lib/linguist", "Directory holding upstream languages.yml and heuristics.yml")
		targetDir  = flag.String("target", "internal/definitions/data", "Target dataset directory")
		version    = flag.String("version", "v1.0.0", "Dataset version written to manifest.yml")
		vendorFile = flag.String("vendor", "", "YAML list of vendored path globs (defaults to the embedded patterns)")
		dryRun     = flag.Bool("dry-run", false, "Convert and report without writing files")
		stats      = flag.Bool("stats", false, "Show conversion statistics")
		verbose    = flag.Bool("verbose", false, "List every dropped rule")
	)
	flag.Parse()

	log.Printf("Linguist Definitions Converter")
	log.Printf("Source: %s", *sourceDir)
	log.Printf("Target: %s", *targetDir)
	if *dryRun {
		log.Printf("DRY RUN MODE - No files will be written")
	}

	if err := definitions.CheckVersion(*version); err != nil {
		log.Fatalf("Invalid -version: %v", err)
	}

	vendor, err := loadVendor(*vendorFile)
	if err != nil {
		log.Fatalf("Failed to load vendor patterns: %v", err)
	}

	converter := NewConverter(*sourceDir, *targetDir)
	ds, err := converter.Convert(*version, vendor)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	if *verbose {
		converter.PrintDropped()
	}

	if !*dryRun {
		if err := converter.Write(ds); err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}
		log.Printf("Wrote %s", *targetDir)
	}

	if *stats {
		converter.PrintStats()
	}
}
