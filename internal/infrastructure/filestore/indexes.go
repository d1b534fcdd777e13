package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/naming"
)

// DefaultIndexCacheSize is the number of decoded indices kept in memory.
const DefaultIndexCacheSize = 64

// IndexStore keeps helper indices as JSON files in one directory. Decoded
// indices are cached; callers must treat loaded indices as read-only.
type IndexStore struct {
	dir   string
	cache *lru.Cache[entities.IndexKey, entities.ForeignKeyIndex]
}

// NewIndexStore creates an index store in dir caching up to cacheSize
// indices (DefaultIndexCacheSize when not positive).
func NewIndexStore(dir string, cacheSize int) (*IndexStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultIndexCacheSize
	}
	cache, err := lru.New[entities.IndexKey, entities.ForeignKeyIndex](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating index cache: %w", err)
	}
	return &IndexStore{dir: dir, cache: cache}, nil
}

// Path returns the file holding the index for key.
func (s *IndexStore) Path(key entities.IndexKey) string {
	return filepath.Join(s.dir, naming.IndexFileName(key.PrimaryID, key.RelatedModel))
}

// SaveIndex writes the index file, creating the helpers directory if absent.
func (s *IndexStore) SaveIndex(ctx context.Context, key entities.IndexKey, idx entities.ForeignKeyIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating helpers directory: %w", err)
	}

	if idx == nil {
		idx = entities.ForeignKeyIndex{}
	}
	data, err := encodeJSON(idx)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	s.cache.Remove(key)
	return writeAtomic(s.Path(key), data)
}

// LoadIndex reads the index for key, from cache when possible.
func (s *IndexStore) LoadIndex(ctx context.Context, key entities.IndexKey) (entities.ForeignKeyIndex, error) {
	if idx, ok := s.cache.Get(key); ok {
		return idx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrIndexNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}

	var idx entities.ForeignKeyIndex
	if err := decodeJSON(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", path, err)
	}
	if idx == nil {
		idx = entities.ForeignKeyIndex{}
	}

	s.cache.Add(key, idx)
	return idx, nil
}
