package quarantine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/purge/pkg/purge/types"
)

// Reclaimer permanently empties a quarantine directory.
type Reclaimer struct {
	// OnFailure is called for every entry that could not be removed.
	OnFailure func(*types.ReclaimItemError)

	removeFile func(string) error
	removeAll  func(string) error
}

// NewReclaimer returns a Reclaimer reporting failures to onFailure, which may be nil.
func NewReclaimer(onFailure func(*types.ReclaimItemError)) *Reclaimer {
	return &Reclaimer{
		OnFailure:  onFailure,
		removeFile: os.Remove,
		removeAll:  os.RemoveAll,
	}
}

// Clear removes every entry inside dir, keeping dir itself. Files and
// symbolic links are unlinked; directories are removed recursively. A
// failing entry is reported and counted and the remaining entries are still
// processed. Clear returns a *types.ReclaimError only when dir cannot be
// read at all.
func (r *Reclaimer) Clear(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, &types.ReclaimError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return 0, &types.ReclaimError{Dir: dir, Err: fmt.Errorf("not a directory: %w", fs.ErrNotExist)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, &types.ReclaimError{Dir: dir, Err: err}
	}

	failures := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// DirEntry types come from lstat, so a symlink to a directory is
		// unlinked rather than followed.
		var rmErr error
		if entry.IsDir() {
			rmErr = r.removeAll(path)
		} else {
			rmErr = r.removeFile(path)
		}

		if rmErr != nil {
			failures++
			if r.OnFailure != nil {
				r.OnFailure(&types.ReclaimItemError{Path: path, Err: rmErr})
			}
		}
	}

	return failures, nil
}

// Clear empties dir with a Reclaimer that reports failures to onFailure.
func Clear(dir string, onFailure func(*types.ReclaimItemError)) (int, error) {
	return NewReclaimer(onFailure).Clear(dir)
}
