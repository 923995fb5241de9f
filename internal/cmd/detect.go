package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/types"
	"github.com/spf13/cobra"
)

// Detection methods
const (
	MethodExtension = "extension"
	MethodFilename  = "filename"
	MethodContent   = "content"
)

var detectFlags struct {
	extension bool
	filename  bool
	content   bool
	all       bool
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Detect the language of files",
	Long: `Detect prints the languages each file may be written in, once per detection
method that found something, and marks vendored paths.

Without a method flag every method is used. Content detection reads the file;
extension and filename detection only look at the path.

Examples:
  linguist detect src/main.rs include/util.h
  linguist detect -e lib/*.js
  linguist detect --format json Makefile`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().BoolVarP(&detectFlags.extension, "by-extension", "e", false, "Detect by file extension")
	detectCmd.Flags().BoolVarP(&detectFlags.filename, "by-filename", "f", false, "Detect by exact filename")
	detectCmd.Flags().BoolVarP(&detectFlags.content, "by-content", "c", false, "Detect by content heuristics")
	detectCmd.Flags().BoolVarP(&detectFlags.all, "all", "a", false, "Use all detection methods (default when none is given)")
}

// methodSet selects the detection methods to run
type methodSet struct {
	extension bool
	filename  bool
	content   bool
}

// selectMethods: --all wins, then any explicit method, otherwise everything
func selectMethods(extension, filename, content, all bool) methodSet {
	if all || (!extension && !filename && !content) {
		return methodSet{extension: true, filename: true, content: true}
	}
	return methodSet{extension: extension, filename: filename, content: content}
}

// MethodMatch lists the languages one method found
type MethodMatch struct {
	Method    string   `json:"method" yaml:"method"`
	Languages []string `json:"languages" yaml:"languages"`
}

// FileDetection is the detect output for one file
type FileDetection struct {
	Path          string           `json:"path" yaml:"path"`
	Matches       []MethodMatch    `json:"matches" yaml:"matches"`
	Detected      *detector.Result `json:"detected,omitempty" yaml:"detected,omitempty"`
	Vendored      bool             `json:"vendored" yaml:"vendored"`
	VendorPattern string           `json:"vendor_pattern,omitempty" yaml:"vendor_pattern,omitempty"`
	Error         string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// DetectResult is the output for the detect command
type DetectResult struct {
	Files []FileDetection `json:"files" yaml:"files"`
}

func (r *DetectResult) ToJSON() interface{} {
	return r
}

func (r *DetectResult) ToText(w io.Writer, st styles) {
	for _, f := range r.Files {
		if f.Error != "" {
			continue
		}
		vendored := ""
		if f.Vendored {
			vendored = " " + st.note("[vendored]")
		}
		if len(f.Matches) == 0 {
			fmt.Fprintf(w, "%s: Unknown%s\n", f.Path, vendored)
			continue
		}
		for _, m := range f.Matches {
			fmt.Fprintf(w, "%s: %s %s%s\n", f.Path, st.languages(m.Languages), st.note("(by "+m.Method+")"), vendored)
		}
	}
}

// Failed reports whether every file failed
func (r *DetectResult) Failed() bool {
	for _, f := range r.Files {
		if f.Error == "" {
			return false
		}
	}
	return len(r.Files) > 0
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	d, err := newDetector(cfg)
	if err != nil {
		return err
	}

	methods := selectMethods(detectFlags.extension, detectFlags.filename, detectFlags.content, detectFlags.all)
	result := buildDetectResult(d, args, methods)
	for _, f := range result.Files {
		if f.Error != "" {
			logger.Error("Error processing file", "path", f.Path, "error", f.Error)
		}
	}

	if err := Output(result); err != nil {
		return err
	}
	if result.Failed() {
		return errors.New("no file could be processed")
	}
	return nil
}

func buildDetectResult(d *detector.Detector, paths []string, methods methodSet) *DetectResult {
	result := &DetectResult{Files: make([]FileDetection, 0, len(paths))}
	for _, p := range paths {
		result.Files = append(result.Files, detectFile(d, p, methods))
	}
	return result
}

// detectFile runs the selected methods on one path. The file is only read
// when content detection is selected; failing to read it fails the file.
func detectFile(d *detector.Detector, p string, methods methodSet) FileDetection {
	s := d.Store()
	out := FileDetection{Path: p, Matches: []MethodMatch{}}

	var content []byte
	if methods.content {
		var err error
		if content, err = readHead(p, heuristics.MaxContentBytes); err != nil {
			out.Error = err.Error()
			return out
		}
	}

	if methods.extension {
		if langs := s.DetectByExtension(p); len(langs) > 0 {
			out.Matches = append(out.Matches, MethodMatch{Method: MethodExtension, Languages: types.Names(langs)})
		}
	}
	if methods.filename {
		if langs := s.DetectByFilename(p); len(langs) > 0 {
			out.Matches = append(out.Matches, MethodMatch{Method: MethodFilename, Languages: types.Names(langs)})
		}
	}
	if methods.content {
		if langs, ok := s.Disambiguate(p, string(content)); ok && len(langs) > 0 {
			out.Matches = append(out.Matches, MethodMatch{Method: MethodContent, Languages: langs})
		}
	}

	res := d.Detect(p, content)
	out.Vendored = res.Vendored
	out.VendorPattern = res.VendorPattern
	if methods.content {
		out.Detected = &res
	}
	return out
}

// readHead reads at most limit bytes from the start of a regular file
func readHead(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return io.ReadAll(io.LimitReader(f, limit))
}
