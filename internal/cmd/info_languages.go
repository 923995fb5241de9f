package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/types"
	"github.com/go-enry/go-enry/v2"
	"github.com/go-enry/go-enry/v2/data"
	"github.com/spf13/cobra"
)

var languagesFlags struct {
	category string
	compare  bool
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List all languages of the dataset",
	Long: `List all programming languages, data formats, markup, and prose languages of the
loaded dataset in declaration order. With --compare each language is looked up
in go-enry's copy of GitHub Linguist as well.`,
	RunE: runLanguages,
}

func init() {
	languagesCmd.Flags().StringVar(&languagesFlags.category, "type", "", "Only list languages of this type: programming, markup, data, prose, other")
	languagesCmd.Flags().BoolVar(&languagesFlags.compare, "compare", false, "Compare with go-enry's language data")
}

// EnryInfo is what go-enry knows about a language
type EnryInfo struct {
	Known      bool     `json:"known" yaml:"known"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// LanguageInfo holds information about a language from the dataset
type LanguageInfo struct {
	Name       string    `json:"name" yaml:"name"`
	Type       string    `json:"type" yaml:"type"`
	Color      string    `json:"color,omitempty" yaml:"color,omitempty"`
	Extensions []string  `json:"extensions" yaml:"extensions"`
	Filenames  []string  `json:"filenames,omitempty" yaml:"filenames,omitempty"`
	Enry       *EnryInfo `json:"enry,omitempty" yaml:"enry,omitempty"`
}

// LanguagesSummary holds summary statistics
type LanguagesSummary struct {
	Total  int            `json:"total" yaml:"total"`
	ByType map[string]int `json:"by_type" yaml:"by_type"`
}

// LanguagesResult is the output for the languages command
type LanguagesResult struct {
	Languages []LanguageInfo   `json:"languages" yaml:"languages"`
	Summary   LanguagesSummary `json:"summary" yaml:"summary"`
}

func (r *LanguagesResult) ToJSON() interface{} {
	return r
}

func (r *LanguagesResult) ToText(w io.Writer, st styles) {
	for _, lang := range r.Languages {
		name := fmt.Sprintf("%-30s", lang.Name)
		fmt.Fprintf(w, "%s %-12s %v", st.language(lang.Name)+name[len(lang.Name):], lang.Type, lang.Extensions)
		if lang.Enry != nil {
			fmt.Fprintf(w, " %s", st.note(describeEnry(lang)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nTotal: %d languages\n", r.Summary.Total)
	fmt.Fprintf(w, "By type: programming=%d, data=%d, markup=%d, prose=%d, other=%d\n",
		r.Summary.ByType["programming"], r.Summary.ByType["data"],
		r.Summary.ByType["markup"], r.Summary.ByType["prose"], r.Summary.ByType["other"])
}

// describeEnry summarizes differences with go-enry
func describeEnry(lang LanguageInfo) string {
	if !lang.Enry.Known {
		return "[enry: unknown]"
	}
	var diffs []string
	if lang.Enry.Type != lang.Type {
		diffs = append(diffs, "type "+lang.Enry.Type)
	}
	if lang.Color != "" && !strings.EqualFold(lang.Enry.Color, lang.Color) {
		diffs = append(diffs, "color "+lang.Enry.Color)
	}
	if len(diffs) == 0 {
		return "[enry: same]"
	}
	return "[enry: " + strings.Join(diffs, ", ") + "]"
}

func runLanguages(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	result, err := buildLanguagesResult(s, languagesFlags.category, languagesFlags.compare)
	if err != nil {
		return err
	}
	return Output(result)
}

func buildLanguagesResult(s *store.Store, category string, compare bool) (*LanguagesResult, error) {
	var filter *types.Category
	if category != "" {
		c, err := types.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter = &c
	}

	var enryExtensions map[string][]string
	if compare {
		enryExtensions = extensionsByLanguage()
	}

	languages := make([]LanguageInfo, 0, len(s.Languages()))
	byType := make(map[string]int)

	for _, lang := range s.Languages() {
		if filter != nil && lang.Category != *filter {
			continue
		}
		info := LanguageInfo{
			Name:       lang.Name,
			Type:       lang.Category.String(),
			Color:      lang.Color,
			Extensions: append([]string{}, lang.Extensions...),
			Filenames:  lang.Filenames,
		}
		if compare {
			exts, known := enryExtensions[lang.Name]
			info.Enry = &EnryInfo{Known: known}
			if known {
				info.Enry.Type = types.CategoryFromEnry(enry.GetLanguageType(lang.Name)).String()
				info.Enry.Color = enry.GetColor(lang.Name)
				info.Enry.Extensions = exts
			}
		}
		languages = append(languages, info)
		byType[info.Type]++
	}

	return &LanguagesResult{
		Languages: languages,
		Summary: LanguagesSummary{
			Total:  len(languages),
			ByType: byType,
		},
	}, nil
}

// extensionsByLanguage inverts go-enry's extension table
func extensionsByLanguage() map[string][]string {
	out := make(map[string][]string)
	for ext, langs := range data.LanguagesByExtension {
		for _, l := range langs {
			out[l] = append(out[l], ext)
		}
	}
	for _, exts := range out {
		sort.Strings(exts)
	}
	return out
}
