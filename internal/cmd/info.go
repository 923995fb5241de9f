package cmd

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about languages, heuristics, and vendor patterns",
	Long:  `Display the contents of the loaded dataset: the language table, the content heuristics per extension and the vendored path patterns.`,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.AddCommand(languagesCmd)
	infoCmd.AddCommand(heuristicsCmd)
	infoCmd.AddCommand(vendorCmd)
}
