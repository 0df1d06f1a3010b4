package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parse dispatches on the filename extension.
func Parse(data []byte, filename string) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml", ".json":
		return ParseYAML(data, filename)
	case ".cue":
		return ParseCUE(data, filename)
	default:
		return nil, fmt.Errorf("unsupported document extension %q (want .yaml, .yml, .json or .cue)", ext)
	}
}

// LoadFile reads and parses a document file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, path)
}

// IsDocumentFile reports whether path has a document extension.
func IsDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".cue":
		return true
	default:
		return false
	}
}
