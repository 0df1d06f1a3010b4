package document

import (
	"fmt"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors the document layout; steps stay as nodes so each one
// keeps its source position.
type yamlDocument struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Table       string      `yaml:"table"`
	Strict      bool        `yaml:"strict"`
	Steps       []yaml.Node `yaml:"steps"`
}

// ParseYAML parses a YAML (or JSON) document. filename is used for positions.
func ParseYAML(data []byte, filename string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	if root.Kind == 0 {
		return nil, &CompileError{Field: "document", Message: "empty document"}
	}
	return DecodeYAMLNode(&root, NewSource(filename, data))
}

// DecodeYAMLNode decodes a document from an already parsed node. src maps
// node lines and columns back to positions; it may be nil.
func DecodeYAMLNode(node *yaml.Node, src *Source) (*Document, error) {
	var raw yamlDocument
	if err := node.Decode(&raw); err != nil {
		return nil, &CompileError{Field: "document", Message: err.Error(), Pos: src.Pos(node.Line, node.Column)}
	}

	raws := make([]rawStep, len(raw.Steps))
	for i := range raw.Steps {
		n := &raw.Steps[i]
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("steps[%d]", i),
				Message: err.Error(),
				Pos:     src.Pos(n.Line, n.Column),
			}
		}
		raws[i] = rawStep{value: v, pos: src.Pos(n.Line, n.Column)}
	}

	steps, err := parseSteps("steps", raws)
	if err != nil {
		return nil, err
	}

	return &Document{
		Name:        raw.Name,
		Description: raw.Description,
		Table:       raw.Table,
		Strict:      raw.Strict,
		Steps:       steps,
	}, nil
}

// Source converts YAML line/column pairs into token positions so YAML and
// CUE errors print the same way.
type Source struct {
	file       *token.File
	lineStarts []int
	size       int
}

// NewSource indexes data for position lookups.
func NewSource(filename string, data []byte) *Source {
	f := token.NewFile(filename, 0, len(data))
	f.SetLinesForContent(data)

	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Source{file: f, lineStarts: starts, size: len(data)}
}

// Pos returns the position of a 1-based line and column, or token.NoPos.
func (s *Source) Pos(line, column int) token.Pos {
	if s == nil || line < 1 || line > len(s.lineStarts) || column < 1 {
		return token.NoPos
	}
	offset := s.lineStarts[line-1] + column - 1
	if offset > s.size {
		return token.NoPos
	}
	return s.file.Pos(offset, token.NoRelPos)
}
