package quarantine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/purge/pkg/purge/types"
)

// Move relocates the file at src to dst, creating dst's parent directories.
// An existing dst is never replaced: the move fails with a
// *types.CollisionError and src is left untouched. When src and dst are on
// different devices the file is copied and the source removed; if the
// source cannot be removed the copy is discarded so the file exists in
// exactly one place.
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	err := renameNoReplace(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return &types.CollisionError{Source: src, Destination: dst}
	case isCrossDevice(err):
		return copyAcross(src, dst)
	default:
		return err
	}
}

// renameChecked renames src to dst after verifying dst is free. It is the
// fallback where no atomic no-replace rename exists.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fs.ErrExist
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

// copyAcross copies src to a newly created dst, preserving permission bits
// and modification time, then removes src.
func copyAcross(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	info, err := in.Stat()
	if err != nil {
		_ = in.Close()
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		_ = in.Close()
		if errors.Is(err, fs.ErrExist) {
			return &types.CollisionError{Source: src, Destination: dst}
		}
		return err
	}

	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	closeInErr := in.Close()
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("copying to quarantine: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("closing quarantine copy: %w", err)
	}
	if closeInErr != nil {
		err = closeInErr
		return err
	}

	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserving modification time: %w", err)
	}

	if err = os.Remove(src); err != nil {
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}
