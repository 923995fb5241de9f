package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"log/slog"

	"github.com/joho/godotenv"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Settings holds the command line configuration
type Settings struct {
	// Output settings
	OutputFile  string // Empty = stdout
	Format      string
	PrettyPrint bool
	NoColor     bool

	// Dataset
	DefinitionsDir string // Empty = embedded dataset

	// Scan behavior
	ExcludePatterns []string
	Workers         int
	NoClassifier    bool // Skip the go-enry classifier step

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		OutputFile:      "",
		Format:          FormatText,
		PrettyPrint:     true,
		NoColor:         false,
		DefinitionsDir:  "",
		ExcludePatterns: []string{},
		Workers:         runtime.NumCPU(),
		NoClassifier:    false,
		LogLevel:        slog.LevelError, // only errors by default
		LogFormat:       "text",
		LogFile:         "",
	}
}

// NormalizeFormat lowercases and trims an output format name
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables already set are left alone; a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadSettings creates settings from defaults and applies environment variable overrides
func LoadSettings() *Settings {
	settings := DefaultSettings()

	if outputFile := os.Getenv("LINGUIST_OUTPUT"); outputFile != "" {
		settings.OutputFile = outputFile
	}

	if format := os.Getenv("LINGUIST_FORMAT"); format != "" {
		settings.Format = NormalizeFormat(format)
	}

	if pretty := os.Getenv("LINGUIST_PRETTY"); pretty != "" {
		settings.PrettyPrint = strings.ToLower(pretty) == "true"
	}

	if noColor := os.Getenv("NO_COLOR"); noColor != "" {
		settings.NoColor = true
	}

	if dir := os.Getenv("LINGUIST_DEFINITIONS"); dir != "" {
		settings.DefinitionsDir = dir
	}

	if excludePatterns := os.Getenv("LINGUIST_EXCLUDE"); excludePatterns != "" {
		settings.ExcludePatterns = splitList(excludePatterns)
	}

	if workers := os.Getenv("LINGUIST_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			settings.Workers = n
		}
	}

	if noClassifier := os.Getenv("LINGUIST_NO_CLASSIFIER"); noClassifier != "" {
		settings.NoClassifier = strings.ToLower(noClassifier) == "true"
	}

	// Logging settings
	if logLevel := os.Getenv("LINGUIST_LOG_LEVEL"); logLevel != "" {
		if level, err := ParseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := os.Getenv("LINGUIST_LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := os.Getenv("LINGUIST_LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	return settings
}

// splitList splits a comma separated list, dropping blank entries
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseLogLevel converts string log level to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger sets up the logger based on settings
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Fallback to stderr if file can't be opened
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{
		Level: s.LogLevel,
	}

	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// Validate checks if settings are valid
func (s *Settings) Validate() error {
	switch s.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json, yaml", s.Format)
	}
	if s.Workers < 1 {
		return fmt.Errorf("invalid worker count %d: must be at least 1", s.Workers)
	}
	if s.DefinitionsDir != "" {
		info, err := os.Stat(s.DefinitionsDir)
		if err != nil {
			return fmt.Errorf("definitions directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("definitions directory %s is not a directory", s.DefinitionsDir)
		}
	}
	return nil
}
