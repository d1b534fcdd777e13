package parsers

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// CSVParser parses rows from a CSV dump whose first line names the columns.
// Every value is a string; empty cells are nil.
type CSVParser struct{}

// Ext returns ".csv".
func (p *CSVParser) Ext() string { return ".csv" }

// Parse reads CSV from the reader and calls fn for every data row.
func (p *CSVParser) Parse(r io.Reader, fn RowFunc) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := p.readHeader(reader)
	if err != nil {
		return err
	}

	lineNum := 1 // Header is line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		if err := fn(p.parseRecord(record, header)); err != nil {
			return err
		}
	}
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading CSV header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for i, col := range header {
		if col == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column: %s", col)
		}
		seen[col] = true
	}

	return header, nil
}

// parseRecord converts a CSV record to a Row. Missing trailing cells are nil.
func (p *CSVParser) parseRecord(record []string, header []string) entities.Row {
	row := make(entities.Row, len(header))
	for i, col := range header {
		if i < len(record) && record[i] != "" {
			row[col] = record[i]
		} else {
			row[col] = nil
		}
	}
	return row
}
