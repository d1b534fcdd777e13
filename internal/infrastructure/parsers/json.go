package parsers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// JSONParser parses rows from a JSON array of objects. Numbers keep their
// source text as json.Number.
type JSONParser struct{}

// Ext returns ".json".
func (p *JSONParser) Ext() string { return ".json" }

// Parse decodes the array one element at a time and calls fn for each.
func (p *JSONParser) Parse(r io.Reader, fn RowFunc) error {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("parsing JSON: expected array of rows, got %v", tok)
	}

	for i := 1; decoder.More(); i++ {
		var row entities.Row
		if err := decoder.Decode(&row); err != nil {
			return fmt.Errorf("parsing JSON row %d: %w", i, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}

	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
