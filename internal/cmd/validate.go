package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/drshade/linguist/internal/definitions"
	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/validation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate a dataset directory",
	Long: `Validate loads a dataset directory (manifest.yml, languages.yml, heuristics.yml
and vendor.yml) the way --definitions does: every file is checked against its
schema, then every regular expression, language reference and vendor pattern
is compiled. Without an argument the embedded dataset is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidateResult is the output for the validate command
type ValidateResult struct {
	Origin         string   `json:"origin" yaml:"origin"`
	Valid          bool     `json:"valid" yaml:"valid"`
	Version        string   `json:"version,omitempty" yaml:"version,omitempty"`
	Languages      int      `json:"languages" yaml:"languages"`
	Extensions     int      `json:"extensions" yaml:"extensions"`
	HeuristicRules int      `json:"heuristic_groups" yaml:"heuristic_groups"`
	VendorPatterns int      `json:"vendor_patterns" yaml:"vendor_patterns"`
	Errors         []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func (r *ValidateResult) ToJSON() interface{} {
	return r
}

func (r *ValidateResult) ToText(w io.Writer, st styles) {
	if !r.Valid {
		fmt.Fprintf(w, "%s: invalid\n", r.Origin)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "%s: valid (version %s)\n", r.Origin, r.Version)
	fmt.Fprintf(w, "  languages:        %d\n", r.Languages)
	fmt.Fprintf(w, "  extensions:       %d\n", r.Extensions)
	fmt.Fprintf(w, "  heuristic groups: %d\n", r.HeuristicRules)
	fmt.Fprintf(w, "  vendor patterns:  %d\n", r.VendorPatterns)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := settings.DefinitionsDir
	if len(args) == 1 {
		dir = args[0]
	}
	result := buildValidateResult(dir)
	if err := Output(result); err != nil {
		return err
	}
	if !result.Valid {
		return errors.New("dataset is invalid")
	}
	return nil
}

// buildValidateResult loads and builds the dataset in dir, or the embedded
// one when dir is empty
func buildValidateResult(dir string) *ValidateResult {
	result := &ValidateResult{Origin: definitions.EmbeddedOrigin}

	var ds *definitions.Dataset
	var err error
	if dir == "" {
		ds, err = definitions.LoadEmbedded()
	} else {
		result.Origin = dir
		ds, err = definitions.LoadDir(dir)
	}
	if err != nil {
		result.Errors = describeError(err)
		return result
	}

	s, err := store.New(ds, store.WithLogger(logger))
	if err != nil {
		result.Errors = describeError(err)
		return result
	}

	result.Valid = true
	result.Version = s.Version()
	result.Languages = len(s.Languages())
	result.Extensions = len(s.Extensions())
	result.HeuristicRules = len(s.HeuristicExtensions())
	result.VendorPatterns = len(s.VendorPatterns())
	return result
}

// describeError lists schema violations one per line
func describeError(err error) []string {
	var verr validation.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) > 0 {
		out := make([]string, 0, len(verr.Errors))
		for _, e := range verr.Errors {
			out = append(out, verr.Schema+": "+e)
		}
		return out
	}
	return []string{err.Error()}
}
