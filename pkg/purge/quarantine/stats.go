package quarantine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// VolumeStats summarises the quarantined files that came from one volume.
type VolumeStats struct {
	Tag   string `json:"tag" yaml:"tag"`
	Files int64  `json:"files" yaml:"files"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Stats is an inventory of a quarantine directory.
type Stats struct {
	Root    string        `json:"root" yaml:"root"`
	Files   int64         `json:"files" yaml:"files"`
	Dirs    int64         `json:"dirs" yaml:"dirs"`
	Bytes   int64         `json:"bytes" yaml:"bytes"`
	Volumes []VolumeStats `json:"volumes" yaml:"volumes"`
	Errors  int64         `json:"errors" yaml:"errors"`
}

// Inventory walks dir in parallel and totals the files it holds, broken down
// by volume tag. Unreadable entries are counted in Errors and skipped.
// A missing dir yields empty stats.
func Inventory(ctx context.Context, dir string) (*Stats, error) {
	stats := &Stats{Root: dir, Volumes: []VolumeStats{}}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return nil, err
	}

	var files, dirs, bytes, errCount atomic.Int64
	var mu sync.Mutex
	perVolume := make(map[string]*VolumeStats)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			errCount.Add(1)
			return nil
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			dirs.Add(1)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errCount.Add(1)
			return nil
		}

		size := info.Size()
		files.Add(1)
		bytes.Add(size)

		tag := volumeOf(dir, path)
		mu.Lock()
		vs, ok := perVolume[tag]
		if !ok {
			vs = &VolumeStats{Tag: tag}
			perVolume[tag] = vs
		}
		vs.Files++
		vs.Bytes += size
		mu.Unlock()

		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.Files = files.Load()
	stats.Dirs = dirs.Load()
	stats.Bytes = bytes.Load()
	stats.Errors = errCount.Load()

	for _, vs := range perVolume {
		stats.Volumes = append(stats.Volumes, *vs)
	}
	sort.Slice(stats.Volumes, func(i, j int) bool {
		return stats.Volumes[i].Tag < stats.Volumes[j].Tag
	})

	return stats, nil
}

// volumeOf returns the first path segment of path below root.
func volumeOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	tag, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return tag
}
