package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

const entryExt = ".json"

// EntryStore keeps one JSON file per entry under <root>/<collection>/.
type EntryStore struct {
	root string
}

// NewEntryStore creates an entry store rooted at dir.
func NewEntryStore(dir string) *EntryStore {
	return &EntryStore{root: dir}
}

// Path returns the file holding an entry.
func (s *EntryStore) Path(collection, name string) string {
	return filepath.Join(s.root, collection, name+entryExt)
}

// ListEntries returns the base names of every entry file of collection,
// sorted. A missing collection directory has no entries.
func (s *EntryStore) ListEntries(ctx context.Context, collection string) ([]string, error) {
	if err := checkName("collection", collection); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.Join(s.root, collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading entries directory: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := de.Name()
		if de.IsDir() || strings.HasPrefix(n, ".") || filepath.Ext(n) != entryExt {
			continue
		}
		names = append(names, strings.TrimSuffix(n, entryExt))
	}
	sort.Strings(names)
	return names, nil
}

// ReadEntry loads one entry file.
func (s *EntryStore) ReadEntry(ctx context.Context, collection, name string) (entities.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName("entry", name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(collection, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, entities.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading entry file: %w", err)
	}

	var record entities.Record
	if err := decodeJSON(data, &record); err != nil {
		return nil, fmt.Errorf("decoding entry %s/%s: %w", collection, name, err)
	}
	if record == nil {
		record = entities.Record{}
	}
	return record, nil
}

// WriteEntry atomically replaces the entry file with record.
func (s *EntryStore) WriteEntry(ctx context.Context, collection, name string, record entities.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName("entry", name); err != nil {
		return err
	}

	data, err := encodeJSON(record)
	if err != nil {
		return fmt.Errorf("encoding entry %s/%s: %w", collection, name, err)
	}

	path := s.Path(collection, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating entries directory: %w", err)
	}
	return writeAtomic(path, data)
}
