// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// SourceReader streams rows of the source database tables the entries were
// exported from. One pass per call, no transactions required.
type SourceReader interface {
	// StreamRows calls fn for every row of table in scan order.
	// Iteration stops at the first error returned by fn.
	StreamRows(ctx context.Context, table string, fn func(entities.Row) error) error

	// Close releases the underlying connection or files.
	Close() error
}
