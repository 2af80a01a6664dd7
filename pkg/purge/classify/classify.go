// Package classify decides which directories are pruned from a scan and
// which files qualify for quarantine. Every function is pure: nothing here
// touches the filesystem.
package classify

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/IGLOU-EU/go-wildcard"
)

// secondsPerDay is the length of one retention day.
const secondsPerDay = 86400

// IsExcludedDirectory reports whether dir is one of excludes or lies beneath
// one of them. Matching is by whole path segments, so "/data/foo" does not
// exclude "/data/foobar". Entries on a different volume never match.
// Both dir and excludes are expected to be absolute.
func IsExcludedDirectory(dir string, excludes []string) bool {
	for _, ex := range excludes {
		if isUnder(dir, ex) {
			return true
		}
	}
	return false
}

// isUnder reports whether path equals prefix or is a descendant of it.
func isUnder(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	path = canonical(path)
	prefix = canonical(prefix)

	if filepath.VolumeName(path) != filepath.VolumeName(prefix) {
		return false
	}

	rel, err := filepath.Rel(prefix, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// MatchesPattern reports whether a directory's base name matches any of the
// wildcard patterns ("*" and "?"). Empty patterns never match.
func MatchesPattern(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if wildcard.Match(p, name) {
			return true
		}
	}
	return false
}

// IsQualifyingFile reports whether a file with the given extension and
// modification time is due for quarantine. The extension must be in
// selected and the file must be strictly older than the retention window:
// a file modified exactly retentionDays ago does not qualify.
func IsQualifyingFile(ext string, selected map[string]struct{}, modTime time.Time, retentionDays int, now time.Time) bool {
	if _, ok := selected[ext]; !ok {
		return false
	}
	return modTime.Before(Cutoff(now, retentionDays))
}

// Cutoff returns the instant before which files are outside the retention window.
func Cutoff(now time.Time, retentionDays int) time.Time {
	return now.Add(-time.Duration(retentionDays) * secondsPerDay * time.Second)
}

// AgeDays returns floor((now - modTime) / 1 day). Files with a modification
// time in the future have a negative age.
func AgeDays(modTime, now time.Time) int {
	return int(math.Floor(now.Sub(modTime).Seconds() / secondsPerDay))
}

// Extension returns the lowercased extension of a file name including the
// leading dot. Leading dots belong to the name, so ".bashrc" has no
// extension while ".config.pdf" has ".pdf".
func Extension(name string) string {
	return strings.ToLower(RawExtension(name))
}

// RawExtension is Extension without case folding.
func RawExtension(name string) string {
	base := filepath.Base(name)
	trimmed := strings.TrimLeft(base, ".")
	return filepath.Ext(trimmed)
}

// ExtensionSet builds a lookup set from a list of extensions, lowercasing
// each entry.
func ExtensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return set
}
