package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

// Parser turns one tabular file into headers and raw records.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader) (*dataset.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates no registered parser accepts the file name.
var ErrUnsupported = errors.New("unsupported file format")

// ParseFile opens path and parses it with the parser selected by its name.
func ParseFile(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Parse(filepath.Base(path), f)
}

// Parse selects a parser by filename and reads the table from r.
func Parse(filename string, r io.Reader) (*dataset.Table, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			t, err := p.Parse(r)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(htmlParser{})
}
