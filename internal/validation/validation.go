package validation

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed *.json
var schemaFS embed.FS

// Schema file names
const (
	ManifestSchema   = "manifest.schema.json"
	LanguagesSchema  = "languages.schema.json"
	HeuristicsSchema = "heuristics.schema.json"
	VendorSchema     = "vendor.schema.json"
	ConfigSchema     = "linguist-config.schema.json"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// ValidationError represents a schema validation error
type ValidationError struct {
	Schema string
	Errors []string
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// schema compiles an embedded schema once and caches it
func schema(schemaName string) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[schemaName]; ok {
		return s, nil
	}

	schemaData, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	s, err := jsonschema.CompileString(schemaName, string(schemaData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", schemaName, err)
	}
	compiled[schemaName] = s
	return s, nil
}

// ValidateJSON validates a decoded document against an embedded JSON schema.
// data must be built from plain maps, slices and scalars (as produced by
// yaml.v3 or encoding/json decoding into interface{}).
func ValidateJSON(schemaName string, data interface{}) error {
	s, err := schema(schemaName)
	if err != nil {
		return err
	}

	err = s.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return ValidationError{Schema: schemaName, Errors: []string{err.Error()}}
	}
	return ValidationError{Schema: schemaName, Errors: collectMessages(validationErr)}
}

// collectMessages flattens the cause tree into leaf messages prefixed with
// the instance location they refer to
func collectMessages(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, err.Message)}
	}

	var messages []string
	for _, cause := range err.Causes {
		messages = append(messages, collectMessages(cause)...)
	}
	return messages
}

// ValidateYAML validates YAML content against an embedded JSON schema
func ValidateYAML(schemaName string, yamlContent []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(yamlContent, &data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return ValidateJSON(schemaName, data)
}

// ValidateYAMLFile validates a YAML file on disk against an embedded JSON schema
func ValidateYAMLFile(schemaName string, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return ValidateYAML(schemaName, content)
}

// ListAvailableSchemas returns the embedded schema file names, sorted
func ListAvailableSchemas() ([]string, error) {
	entries, err := schemaFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	var schemas []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			schemas = append(schemas, entry.Name())
		}
	}
	sort.Strings(schemas)

	return schemas, nil
}
