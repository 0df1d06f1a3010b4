package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/filterkit/internal/document"
	"github.com/roach88/filterkit/internal/querysql"
)

// Scenario defines a filter document and the outcome it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect selects the SQL dialect for sql/params expectations.
	// Defaults to sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Document is the inline filter document.
	Document yaml.Node `yaml:"document,omitempty"`

	// DocumentFile references a document file instead of inlining it.
	// Relative paths resolve against the scenario file's directory.
	DocumentFile string `yaml:"document_file,omitempty"`

	// Expect lists the expected outcome.
	Expect Expect `yaml:"expect"`

	// Doc is the parsed document. LoadScenario fills it in; scenarios built
	// in code may set it directly.
	Doc *document.Document `yaml:"-"`
}

// Expect specifies the expected outcome. Unset fields are not checked.
type Expect struct {
	// Modifiers is the expected IR in wire format. An explicit empty list
	// expects an empty query.
	Modifiers []any `yaml:"modifiers,omitempty"`

	// SQL is the expected compiled statement.
	SQL string `yaml:"sql,omitempty"`

	// Params are the expected statement parameters.
	Params []any `yaml:"params,omitempty"`

	// Error is a substring of the expected build or compile error.
	Error string `yaml:"error,omitempty"`

	// Portable is the expected portability verdict.
	Portable *bool `yaml:"portable,omitempty"`
}

func (e Expect) isEmpty() bool {
	return e.Modifiers == nil && e.SQL == "" && e.Params == nil && e.Error == "" && e.Portable == nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, path)
}

// ParseScenario parses scenario YAML. path locates the scenario for error
// positions and for resolving document_file.
func ParseScenario(data []byte, path string) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var doc *document.Document
	var err error
	if scenario.DocumentFile != "" {
		docPath := scenario.DocumentFile
		if !filepath.IsAbs(docPath) {
			docPath = filepath.Join(filepath.Dir(path), docPath)
		}
		doc, err = document.LoadFile(docPath)
	} else {
		doc, err = document.DecodeYAMLNode(&scenario.Document, document.NewSource(path, data))
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	scenario.Doc = doc

	return &scenario, nil
}

// LoadScenarios loads every .yaml/.yml scenario under dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasInline := s.Document.Kind != 0
	switch {
	case hasInline && s.DocumentFile != "":
		return fmt.Errorf("document and document_file are mutually exclusive")
	case !hasInline && s.DocumentFile == "":
		return fmt.Errorf("document or document_file is required")
	}

	if s.Dialect != "" {
		if _, err := querysql.ParseDialect(s.Dialect); err != nil {
			return err
		}
	}

	if s.Expect.isEmpty() {
		return fmt.Errorf("expect must state at least one of modifiers, sql, params, error, portable")
	}
	if (s.Expect.SQL != "" || s.Expect.Params != nil) && s.Expect.Error != "" {
		return fmt.Errorf("expect.error cannot be combined with sql or params")
	}

	return nil
}
