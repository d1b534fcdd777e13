// Package parsers reads source table dumps in CSV or JSON format.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// RowFunc receives one parsed row. Returning an error stops parsing.
type RowFunc func(entities.Row) error

// Parser streams rows out of a table dump.
type Parser interface {
	Parse(r io.Reader, fn RowFunc) error
	// Ext is the file extension of the dump format, with the leading dot.
	Ext() string
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	return ForFormat(strings.TrimPrefix(ext, "."))
}
