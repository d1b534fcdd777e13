package ports

import (
	"context"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// EntryStore reads and rewrites exported entry records.
// A collection is the slugged content type directory; a name is the file
// base name without extension.
type EntryStore interface {
	// ListEntries returns the names of every entry of a collection, sorted.
	ListEntries(ctx context.Context, collection string) ([]string, error)

	// ReadEntry loads one entry. Returns entities.ErrEntryNotFound if absent.
	ReadEntry(ctx context.Context, collection, name string) (entities.Record, error)

	// WriteEntry replaces the whole entry file with record.
	WriteEntry(ctx context.Context, collection, name string, record entities.Record) error
}

// IndexStore persists helper indices.
type IndexStore interface {
	// SaveIndex writes the index for key, overwriting any previous one.
	SaveIndex(ctx context.Context, key entities.IndexKey, idx entities.ForeignKeyIndex) error

	// LoadIndex reads the index for key. Returns entities.ErrIndexNotFound if absent.
	LoadIndex(ctx context.Context, key entities.IndexKey) (entities.ForeignKeyIndex, error)
}
