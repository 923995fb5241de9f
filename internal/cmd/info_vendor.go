package cmd

import (
	"fmt"
	"io"

	"github.com/drshade/linguist/internal/vendored"
	"github.com/spf13/cobra"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "List vendored path patterns",
	Long:  `List the vendored path patterns in evaluation order: the dataset patterns first, then the "vendor" entries of .linguist.yml in the working directory.`,
	RunE:  runVendor,
}

// VendorPatternsResult is the output for the vendor command
type VendorPatternsResult struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
	Count    int      `json:"count" yaml:"count"`
}

func (r *VendorPatternsResult) ToJSON() interface{} {
	return r
}

func (r *VendorPatternsResult) ToText(w io.Writer, st styles) {
	for _, p := range r.Patterns {
		fmt.Fprintln(w, p)
	}
	fmt.Fprintf(w, "\nTotal: %d patterns\n", r.Count)
}

func runVendor(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	c, err := vendorClassifier(s, cfg)
	if err != nil {
		return err
	}
	return Output(buildVendorPatternsResult(c))
}

func buildVendorPatternsResult(c *vendored.Classifier) *VendorPatternsResult {
	patterns := c.Patterns()
	result := &VendorPatternsResult{Patterns: make([]string, 0, len(patterns)), Count: len(patterns)}
	for _, p := range patterns {
		result.Patterns = append(result.Patterns, p.String())
	}
	return result
}
