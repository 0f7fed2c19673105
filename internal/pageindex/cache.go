// Package pageindex caches generated location indexes on disk, one JSON
// file per document. Index generation is expensive (EPUB location lists are
// produced by the renderer, PDF page lists by a background task), so the
// result is cached per document and only regenerated when missing or
// corrupt.
package pageindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// ErrNotCached reports a cache miss. Corrupt entries are reported the same
// way: the caller regenerates silently in either case.
var ErrNotCached = errors.New("page index not cached")

// Cache stores location indexes under a directory.
type Cache struct {
	dir string
}

// NewCache creates a page-index cache at the specified directory.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get loads the cached index for a document. A missing or unreadable entry
// yields ErrNotCached.
func (c *Cache) Get(documentID string) (*reading.LocationIndex, error) {
	raw, err := os.ReadFile(c.indexPath(documentID))
	if err != nil {
		return nil, ErrNotCached
	}

	var index reading.LocationIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		// Corrupt entry: drop it so the next Put starts clean
		os.Remove(c.indexPath(documentID))
		return nil, ErrNotCached
	}
	return &index, nil
}

// Put stores the index for a document, replacing any previous entry. The
// write goes through a temp file and rename so readers never see a partial
// index.
func (c *Cache) Put(documentID string, index *reading.LocationIndex) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(c.dir, "index_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(raw); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, c.indexPath(documentID))
}

// Invalidate removes the cached index for a document.
func (c *Cache) Invalidate(documentID string) error {
	err := os.Remove(c.indexPath(documentID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) indexPath(documentID string) string {
	return filepath.Join(c.dir, "index_"+documentID+".json")
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}
