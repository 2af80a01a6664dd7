// Package volume enumerates the storage roots a scan starts from and reports
// how full they are.
package volume

import (
	"path/filepath"
	"sort"

	"github.com/jamesainslie/purge/pkg/purge/classify"
)

// Root is an attached storage root.
type Root struct {
	// Path is the directory traversal starts from, e.g. "/" or `C:\`.
	Path string `json:"path" yaml:"path"`

	// Device is the backing device or drive type, when known.
	Device string `json:"device,omitempty" yaml:"device,omitempty"`

	// FSType is the filesystem type, when known.
	FSType string `json:"fs_type,omitempty" yaml:"fs_type,omitempty"`
}

// Usage is a disk usage snapshot in bytes.
type Usage struct {
	Total uint64 `json:"total" yaml:"total"`
	Used  uint64 `json:"used" yaml:"used"`
	Free  uint64 `json:"free" yaml:"free"`
}

// Table is one reading of the mount table.
type Table struct {
	// Roots are the mounted filesystems that can hold user files.
	Roots []Root

	// Pseudo are the mount points of kernel and memory filesystems such as
	// /proc, /sys and tmpfs mounts.
	Pseudo []string
}

// Snapshot reads the mount table.
func Snapshot() (Table, error) {
	return snapshot()
}

// List returns the storage roots attached right now. The result is a
// snapshot; volumes that come or go later are not tracked.
func List() ([]Root, error) {
	t, err := snapshot()
	if err != nil {
		return nil, err
	}
	return t.Roots, nil
}

// Excluded returns the mount points of pseudo filesystems. Traversal from a
// real root must not enter them. It returns nil when the mount table cannot
// be read.
func Excluded() []string {
	t, err := snapshot()
	if err != nil {
		return nil
	}
	return t.Pseudo
}

// DiskUsage reports total, used and free bytes for the filesystem holding
// path. The second result is false when usage is unavailable.
func DiskUsage(path string) (Usage, bool) {
	return diskUsage(path)
}

// ScanRoots reduces paths to the set a traversal needs: cleaned, made
// unique, and with any root nested inside another root dropped, since
// walking the outer root already reaches it. Order is lexical.
func ScanRoots(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		c := filepath.Clean(p)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	sort.Strings(cleaned)

	out := make([]string, 0, len(cleaned))
	for _, p := range cleaned {
		if classify.IsExcludedDirectory(p, out) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Paths returns the Path of every root.
func Paths(roots []Root) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.Path
	}
	return out
}
