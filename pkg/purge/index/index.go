// Package index provides Badger DB-backed storage mapping original file
// paths to their location in quarantine.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// Key prefixes for different data types
const (
	prefixRecord = "q:" // source path -> Record
	prefixMeta   = "m:" // metadata
)

// Schema versions:
// 1 - Initial version (records keyed by source path)
const CurrentSchemaVersion = 1

const schemaKey = prefixMeta + "__schema__"

// ErrNotFound is returned when a source path has no record.
var ErrNotFound = errors.New("no quarantine record for path")

// Record describes one quarantined file.
type Record struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	MovedAt     time.Time `json:"moved_at"`
	RunID       string    `json:"run_id,omitempty"`
}

// Schema holds database schema information.
type Schema struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Index is the quarantine index backed by Badger DB.
type Index struct {
	db *badger.DB
}

// Open opens or creates an index at the given directory.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}

	idx := &Index{db: db}
	if idx.Schema() == nil {
		if err := idx.setSchema(&Schema{Version: CurrentSchemaVersion, UpdatedAt: time.Now().UTC()}); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return idx, nil
}

// Close closes the index.
func (x *Index) Close() error {
	return x.db.Close()
}

// Schema returns the stored schema, or nil if not set.
func (x *Index) Schema() *Schema {
	var schema *Schema

	_ = x.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			schema = &Schema{}
			return json.Unmarshal(val, schema)
		})
	})

	return schema
}

func (x *Index) setSchema(schema *Schema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	return x.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaKey), data)
	})
}

func recordKey(source string) []byte {
	return []byte(prefixRecord + filepath.Clean(source))
}

// Add stores the moves of one run. A later move of the same source path
// replaces the earlier record.
func (x *Index) Add(runID string, moves []types.MoveRecord) error {
	if len(moves) == 0 {
		return nil
	}

	wb := x.db.NewWriteBatch()
	defer wb.Cancel()

	for _, m := range moves {
		rec := Record{
			Source:      filepath.Clean(m.Source),
			Destination: m.Destination,
			Size:        m.Size,
			ModTime:     m.ModTime,
			MovedAt:     m.MovedAt,
			RunID:       runID,
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := wb.Set(recordKey(rec.Source), data); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Get retrieves the record for an exact source path.
func (x *Index) Get(source string) (*Record, error) {
	var rec Record

	err := x.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(source))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Locate returns the records whose source lies at or beneath prefix, in key
// order. If limit is 0 or negative, all matches are returned.
func (x *Index) Locate(prefix string, limit int) ([]Record, error) {
	clean := filepath.Clean(prefix)
	var results []Record

	err := x.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(prefixRecord + clean)
		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			source := string(it.Item().Key()[len(prefixRecord):])
			if !IsPathUnderRoot(source, clean) {
				continue
			}

			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return nil // Skip invalid records
				}
				results = append(results, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return results, err
}

// Remove deletes the record for a source path.
func (x *Index) Remove(source string) error {
	return x.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(source))
	})
}

// Count returns the number of records and their total size.
func (x *Index) Count() (files, bytes int64, err error) {
	err = x.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRecord)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				files++
				bytes += rec.Size
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return files, bytes, err
}

// Clear removes every record, leaving the schema in place. It is called
// after the quarantine has been reclaimed.
func (x *Index) Clear() error {
	return x.db.DropPrefix([]byte(prefixRecord))
}

// IsPathUnderRoot checks if path is under root.
func IsPathUnderRoot(path, root string) bool {
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)
	if cleanPath == cleanRoot {
		return true
	}
	if !strings.HasSuffix(cleanRoot, string(filepath.Separator)) {
		cleanRoot += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath, cleanRoot)
}

// Prune removes records whose quarantined file no longer exists according
// to exists, and returns how many were removed. It is run after a reclaim,
// which may leave some files behind.
func (x *Index) Prune(exists func(path string) bool) (int, error) {
	var stale [][]byte

	err := x.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRecord)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil || !exists(rec.Destination) {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return 0, err
	}

	wb := x.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// FileExists reports whether path can be lstat'ed. It is the usual
// argument to Prune.
func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
