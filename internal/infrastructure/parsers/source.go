package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// DumpReader reads source tables from one dump file per table,
// <dir>/<table><ext>.
type DumpReader struct {
	dir    string
	parser Parser
}

// NewDumpReader creates a reader for the given format ("csv" or "json").
func NewDumpReader(dir, format string) (*DumpReader, error) {
	parser := ForFormat(format)
	if parser == nil {
		return nil, fmt.Errorf("unsupported dump format: %s (supported: csv, json)", format)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening dump directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dump path is not a directory: %s", dir)
	}
	return &DumpReader{dir: dir, parser: parser}, nil
}

// Path returns the dump file backing table.
func (d *DumpReader) Path(table string) string {
	return filepath.Join(d.dir, table+d.parser.Ext())
}

// StreamRows parses the table's dump file in order, checking ctx between rows.
func (d *DumpReader) StreamRows(ctx context.Context, table string, fn func(entities.Row) error) error {
	f, err := os.Open(d.Path(table))
	if err != nil {
		return fmt.Errorf("opening table dump: %w", err)
	}
	defer f.Close()

	return d.parser.Parse(f, func(row entities.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(row)
	})
}

// Close is a no-op; files are closed after each scan.
func (d *DumpReader) Close() error {
	return nil
}
