package cmd

import (
	"fmt"
	"io"

	"github.com/drshade/linguist/internal/vendored"
	"github.com/go-enry/go-enry/v2"
	"github.com/spf13/cobra"
)

var vendoredCompare bool

var vendoredCmd = &cobra.Command{
	Use:   "vendored PATH...",
	Short: "Check whether paths are vendored",
	Long: `Vendored evaluates each path against the vendor patterns of the dataset,
followed by the "vendor" entries of .linguist.yml in the working directory.
Paths are not required to exist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVendored,
}

func init() {
	rootCmd.AddCommand(vendoredCmd)
	vendoredCmd.Flags().BoolVar(&vendoredCompare, "compare", false, "Also show go-enry's vendor verdict")
}

// VendoredPath is the verdict for one path
type VendoredPath struct {
	Path     string `json:"path" yaml:"path"`
	Vendored bool   `json:"vendored" yaml:"vendored"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enry     *bool  `json:"enry,omitempty" yaml:"enry,omitempty"`
}

// VendoredResult is the output for the vendored command
type VendoredResult struct {
	Paths []VendoredPath `json:"paths" yaml:"paths"`
}

func (r *VendoredResult) ToJSON() interface{} {
	return r
}

func (r *VendoredResult) ToText(w io.Writer, st styles) {
	for _, p := range r.Paths {
		line := p.Path + ": not vendored"
		if p.Vendored {
			line = fmt.Sprintf("%s: vendored %s", p.Path, st.note("("+p.Pattern+")"))
		}
		if p.Enry != nil {
			line += st.note(fmt.Sprintf(" [enry: %t]", *p.Enry))
		}
		fmt.Fprintln(w, line)
	}
}

func runVendored(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	classifier, err := vendorClassifier(s, cfg)
	if err != nil {
		return err
	}
	return Output(buildVendoredResult(classifier, args, vendoredCompare))
}

func buildVendoredResult(c *vendored.Classifier, paths []string, compare bool) *VendoredResult {
	result := &VendoredResult{Paths: make([]VendoredPath, 0, len(paths))}
	for _, p := range paths {
		entry := VendoredPath{Path: p}
		if pattern, ok := c.Match(p); ok {
			entry.Vendored = true
			entry.Pattern = pattern.String()
		}
		if compare {
			v := enry.IsVendor(p)
			entry.Enry = &v
		}
		result.Paths = append(result.Paths, entry)
	}
	return result
}
