package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/drshade/linguist/internal/config"
	"github.com/drshade/linguist/internal/progress"
	"github.com/drshade/linguist/internal/scanner"
	"github.com/spf13/cobra"
)

var scanFlags struct {
	configFile   string
	verbose      bool
	tree         bool
	traceTimings bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Detect the language of every file in a directory",
	Long: `Scan walks one or more directories and detects the language of every file.
Files matched by .gitignore, --exclude or the "exclude" entries of the
project's .linguist.yml are skipped.

Examples:
  linguist scan /path/to/project
  linguist scan --exclude "**/testdata/**" --exclude "*.log" .
  linguist scan --format json -o result.json .
  linguist scan --config scan.yml`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFlags.configFile, "config", "", "Scan configuration file (YAML or JSON) or inline JSON")
	scanCmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (supports glob patterns, can be specified multiple times)")
	scanCmd.Flags().IntVar(&settings.Workers, "workers", settings.Workers, "Number of files detected in parallel")
	scanCmd.Flags().BoolVar(&settings.NoClassifier, "no-classifier", settings.NoClassifier, "Skip the go-enry classifier for files heuristics cannot decide")
	scanCmd.Flags().BoolVarP(&scanFlags.verbose, "verbose", "v", false, "Show progress with simple output")
	scanCmd.Flags().BoolVarP(&scanFlags.tree, "debug", "d", false, "Show progress with tree structure (cannot be used with --verbose)")
	scanCmd.Flags().BoolVar(&scanFlags.traceTimings, "trace-timings", false, "Show timing information for each directory (requires --verbose or --debug)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFlags.verbose && scanFlags.tree {
		return fmt.Errorf("cannot use --verbose and --debug together")
	}

	scanConfig, err := config.LoadScanConfig(scanFlags.configFile)
	if err != nil {
		return err
	}
	scanConfig.MergeWithSettings(settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = scanConfig.GetScanPaths()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	output := &ScanOutput{}
	for _, path := range paths {
		result, err := scanPath(ctx, strings.TrimSpace(path), scanConfig)
		if err != nil {
			return err
		}
		output.Results = append(output.Results, result)
	}
	return Output(output)
}

// scanPath scans one root with its project config merged into scanConfig
func scanPath(ctx context.Context, path string, scanConfig *config.ScanConfigFile) (*scanner.Result, error) {
	project, err := loadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	merged := scanConfig.GetMergedConfig(project)

	d, err := newDetector(merged)
	if err != nil {
		return nil, err
	}

	excludes := merged.MergeExcludes(settings.ExcludePatterns)
	logger.Debug("Initializing scanner", "path", path, "exclude_patterns", excludes, "workers", settings.Workers)

	s, err := scanner.NewScanner(path, d,
		scanner.WithExcludes(excludes),
		scanner.WithWorkers(settings.Workers),
		scanner.WithProgress(newProgress()),
		scanner.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Scanning: %s\n", path)
	return s.Scan(ctx)
}

// newProgress returns the reporter selected by --verbose / --debug, or nil
func newProgress() *progress.Progress {
	var prog *progress.Progress
	switch {
	case scanFlags.tree:
		prog = progress.New(true, progress.NewTreeHandler(os.Stderr))
	case scanFlags.verbose:
		prog = progress.New(true, progress.NewSimpleHandler(os.Stderr))
	default:
		return nil
	}
	if scanFlags.traceTimings {
		prog.EnableTimings()
	}
	return prog
}

// ScanOutput is the output for the scan command
type ScanOutput struct {
	Results []*scanner.Result
}

// ToJSON returns a single result unwrapped
func (o *ScanOutput) ToJSON() interface{} {
	if len(o.Results) == 1 {
		return o.Results[0]
	}
	return o.Results
}

func (o *ScanOutput) ToText(w io.Writer, st styles) {
	for i, r := range o.Results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if len(o.Results) > 1 {
			fmt.Fprintf(w, "== %s\n", r.Root)
		}
		for _, f := range r.Files {
			vendored := ""
			if f.Vendored {
				vendored = " " + st.note("[vendored]")
			}
			switch {
			case f.Language != "":
				fmt.Fprintf(w, "%s: %s %s%s\n", f.Path, st.language(f.Language), st.note("(by "+string(f.Strategy)+")"), vendored)
			case len(f.Candidates) > 0:
				fmt.Fprintf(w, "%s: %s %s%s\n", f.Path, st.languages(f.Candidates), st.note("(by "+string(f.Strategy)+")"), vendored)
			default:
				fmt.Fprintf(w, "%s: Unknown%s\n", f.Path, vendored)
			}
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "%s: error: %s\n", e.Path, e.Error)
		}
		fmt.Fprintf(w, "\n%d files, %d directories, %d skipped\n", len(r.Files), r.Directories, len(r.Skipped))
	}
}
