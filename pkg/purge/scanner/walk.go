package scanner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/jamesainslie/purge/pkg/purge/classify"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// walkRoot traverses one root unless the root itself is excluded.
func (s *Scanner) walkRoot(ctx context.Context, root string) {
	if classify.IsExcludedDirectory(root, s.exclude) {
		s.opts.Logger.Debug("root excluded", "root", root)
		return
	}
	s.walkDir(ctx, root)
}

// walkDir visits dir pre-order: prune excluded subdirectories, report the
// directory, process its files, then descend. Entries are handled in
// lexical order, so the event stream is deterministic for an unchanged tree.
func (s *Scanner) walkDir(ctx context.Context, dir string) {
	entries, err := s.readDir(dir)
	if err != nil {
		s.emit(event.Event{Tag: failureTag(err), Path: dir, Err: err})
		return
	}

	var subdirs []string
	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if classify.IsExcludedDirectory(path, s.exclude) || classify.MatchesPattern(entry.Name(), s.opts.ExcludePatterns) {
				continue
			}
			subdirs = append(subdirs, path)
		case entry.Type().IsRegular():
			files = append(files, path)
		}
		// Symlinks, devices, sockets and pipes are ignored.
	}

	s.emit(event.Event{Tag: event.TagScan, Path: dir})

	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		s.processFile(path)
	}

	for _, sub := range subdirs {
		if ctx.Err() != nil {
			return
		}
		s.walkDir(ctx, sub)
	}
}

// processFile classifies one regular file and, when it qualifies, moves it
// into quarantine.
func (s *Scanner) processFile(path string) {
	ext := classify.Extension(path)
	if _, ok := s.extensions[ext]; !ok {
		return
	}

	info, err := s.stat(path)
	if err != nil {
		statErr := &types.StatError{Path: path, Err: err}
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.emit(event.Event{Tag: event.TagGone, Path: path})
		default:
			s.emit(event.Event{Tag: failureTag(err), Path: path, Err: statErr})
		}
		return
	}

	modTime := info.ModTime()
	age := classify.AgeDays(modTime, s.now)

	if !classify.IsQualifyingFile(ext, s.extensions, modTime, s.opts.RetentionDays, s.now) {
		s.emit(event.Event{Tag: event.TagSkip, Path: path, AgeDays: age, HasAge: true})
		return
	}

	s.emit(event.Event{Tag: event.TagMatch, Path: path, AgeDays: age, HasAge: true})
	if s.opts.DryRun {
		return
	}

	dest, err := quarantine.BuildDestination(s.opts.QuarantineDir, path)
	if err != nil {
		s.emit(event.Event{Tag: event.TagError, Op: event.OpMove, Path: path, Err: err})
		return
	}

	if err := s.opts.Mover(path, dest); err != nil {
		moveErr := &types.MoveError{Source: path, Destination: dest, Err: err}
		if errors.Is(err, types.ErrCollision) {
			s.opts.Logger.Warn("quarantine collision", "source", path, "destination", dest)
		}
		s.emit(event.Event{Tag: failureTag(err), Op: event.OpMove, Path: path, Err: moveErr})
		return
	}

	rec := types.MoveRecord{
		Source:      path,
		Destination: dest,
		Size:        info.Size(),
		ModTime:     modTime,
		AgeDays:     age,
		MovedAt:     s.opts.Now(),
	}
	s.report.Moves = append(s.report.Moves, rec)
	s.report.BytesMoved += rec.Size

	s.emit(event.Event{Tag: event.TagMove, Path: path, Destination: dest, AgeDays: age, HasAge: true})
}
