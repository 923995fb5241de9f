package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/drshade/linguist/internal/config"
	"github.com/drshade/linguist/internal/store"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Outputter interface for commands with structured output
type Outputter interface {
	// ToJSON returns the data structure for JSON/YAML marshaling
	ToJSON() interface{}
	// ToText writes human-readable text format
	ToText(w io.Writer, st styles)
}

// Output writes o in the configured format to stdout or the output file
func Output(o Outputter) error {
	return OutputTo(os.Stdout, o, settings.Format, settings.OutputFile)
}

// OutputTo writes o to stdout, or to outputFile when set
func OutputTo(stdout io.Writer, o Outputter, format string, outputFile string) error {
	var data []byte
	var err error

	switch format {
	case config.FormatJSON:
		if settings.PrettyPrint {
			data, err = json.MarshalIndent(o.ToJSON(), "", "  ")
		} else {
			data, err = json.Marshal(o.ToJSON())
		}
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		data = append(data, '\n')
	case config.FormatYAML:
		data, err = yaml.Marshal(o.ToJSON())
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	default: // text
		if outputFile == "" {
			o.ToText(stdout, newStyles(stdout))
			return nil
		}
		var buf bytes.Buffer
		o.ToText(&buf, newStyles(&buf))
		data = buf.Bytes()
	}

	if outputFile == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	// Always show confirmation to user (like curl -o)
	fmt.Fprintf(os.Stderr, "Results written to %s\n", outputFile)
	return nil
}

// styles renders language names in their dataset colour. Colour is only
// used when writing to a terminal and --no-color is not set.
type styles struct {
	enabled bool
	store   *store.Store
	dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	enabled := false
	if f, ok := w.(*os.File); ok && !settings.NoColor {
		enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	st := styles{enabled: enabled, dim: lipgloss.NewStyle()}
	if !enabled {
		return st
	}
	st.store, _ = loadStore()
	st.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return st
}

// language renders a language name
func (st styles) language(name string) string {
	if !st.enabled || st.store == nil {
		return name
	}
	lang, ok := st.store.Language(name)
	if !ok || lang.Color == "" {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(lang.Color)).Render(name)
}

// languages renders a comma separated list of language names
func (st styles) languages(names []string) string {
	var b bytes.Buffer
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(st.language(name))
	}
	return b.String()
}

// note renders secondary text such as strategies and markers
func (st styles) note(s string) string {
	if !st.enabled {
		return s
	}
	return st.dim.Render(s)
}
