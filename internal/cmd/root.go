package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/drshade/linguist/internal/config"
	"github.com/spf13/cobra"
)

var (
	settings *config.Settings
	logger   = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "linguist",
	Short: "Detect programming languages in files",
	Long: `Linguist detects the language of files by exact filename, file extension
and content heuristics, and tells vendored third-party paths apart from
project code.

Settings can also be given as LINGUIST_* environment variables or in a .env
file in the working directory.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: configure,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	settings = config.LoadSettings()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settings.Format, "format", settings.Format, "Output format: text, json, or yaml")
	flags.StringVarP(&settings.OutputFile, "output", "o", settings.OutputFile, "Output file path (default: stdout)")
	flags.BoolVar(&settings.PrettyPrint, "pretty", settings.PrettyPrint, "Pretty print JSON output")
	flags.BoolVar(&settings.NoColor, "no-color", settings.NoColor, "Disable coloured text output")
	flags.StringVar(&settings.DefinitionsDir, "definitions", settings.DefinitionsDir, "Load the dataset from this directory instead of the embedded one")

	// Logging flags - use defaults from environment variables
	flags.String("log-level", settings.LogLevel.String(), "Log level: debug, info, warn, error")
	flags.StringVar(&settings.LogFormat, "log-format", settings.LogFormat, "Log format: text or json")
	flags.StringVar(&settings.LogFile, "log-file", settings.LogFile, "Log file path (default: stderr)")
}

// configure applies the logging flags and validates settings before any
// subcommand runs
func configure(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("log-level") {
		value, _ := cmd.Flags().GetString("log-level")
		level, err := config.ParseLogLevel(value)
		if err != nil {
			return err
		}
		settings.LogLevel = level
	}

	// -o - means stdout
	if settings.OutputFile == "-" {
		settings.OutputFile = ""
	}
	settings.Format = config.NormalizeFormat(settings.Format)

	logger = settings.ConfigureLogger()
	return settings.Validate()
}
