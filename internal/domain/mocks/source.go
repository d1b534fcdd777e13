// Package mocks provides in-memory implementations of the domain ports.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// SourceReader is a mock implementation of ports.SourceReader.
type SourceReader struct {
	Tables map[string][]entities.Row
	Err    error

	mu       sync.Mutex
	streamed []string
}

// NewSourceReader creates a new mock SourceReader.
func NewSourceReader() *SourceReader {
	return &SourceReader{Tables: make(map[string][]entities.Row)}
}

// StreamRows calls fn for every row of table.
func (m *SourceReader) StreamRows(ctx context.Context, table string, fn func(entities.Row) error) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.streamed = append(m.streamed, table)
	m.mu.Unlock()

	rows, ok := m.Tables[table]
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// Streamed returns the tables scanned so far, in order.
func (m *SourceReader) Streamed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.streamed...)
}

// Close closes the reader.
func (m *SourceReader) Close() error {
	return nil
}
