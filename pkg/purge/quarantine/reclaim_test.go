package quarantine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")
	writeFile(t, filepath.Join(dir, "b.pdf"), "b")
	writeFile(t, filepath.Join(dir, "c.pdf"), "c")
	writeFile(t, filepath.Join(dir, "ROOT", "home", "d.pdf"), "d")
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir)

	var reported []*types.ReclaimItemError
	failures, err := Clear(dir, func(e *types.ReclaimItemError) { reported = append(reported, e) })
	require.NoError(t, err)

	assert.Zero(t, failures)
	assert.Empty(t, reported)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "quarantine directory exists and is empty")
}

func TestClear_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir)

	locked := filepath.Join(dir, "b.pdf")
	r := NewReclaimer(nil)
	var reported []*types.ReclaimItemError
	r.OnFailure = func(e *types.ReclaimItemError) { reported = append(reported, e) }
	r.removeFile = func(path string) error {
		if path == locked {
			return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
		}
		return os.Remove(path)
	}

	failures, err := r.Clear(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	require.Len(t, reported, 1)
	assert.Equal(t, locked, reported[0].Path)
	assert.ErrorIs(t, reported[0], fs.ErrPermission)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.pdf", entries[0].Name())
}

func TestClear_SymlinkNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated rights on windows")
	}

	outside := t.TempDir()
	keep := filepath.Join(outside, "keep.pdf")
	writeFile(t, keep, "keep")

	dir := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	failures, err := Clear(dir, nil)
	require.NoError(t, err)
	assert.Zero(t, failures)

	_, err = os.Stat(keep)
	assert.NoError(t, err, "target of a symlink survives")
}

func TestClear_MissingDirectory(t *testing.T) {
	_, err := Clear(filepath.Join(t.TempDir(), "nope"), nil)

	var reclaimErr *types.ReclaimError
	require.True(t, errors.As(err, &reclaimErr))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestClear_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")

	_, err := Clear(file, nil)
	var reclaimErr *types.ReclaimError
	assert.True(t, errors.As(err, &reclaimErr))
}
