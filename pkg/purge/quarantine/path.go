// Package quarantine owns the quarantine tree: where a file goes when it is
// quarantined, how it gets there without clobbering anything, and how the
// tree is emptied again.
package quarantine

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/purge/pkg/purge/classify"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// DigestLength is the number of hex characters of the source path digest
// appended to quarantined file names.
const DigestLength = 8

// rootTag names the volume directory used for sources without a drive or
// share, i.e. every source on a POSIX system.
const rootTag = "ROOT"

// BuildDestination maps an absolute source path to its location inside
// quarantineRoot:
//
//	{quarantineRoot}/{volumeTag}/{parent dirs}/{stem}__{digest}{ext}
//
// The mapping is deterministic, so the same source always lands in the same
// place. Distinct sources map to distinct destinations unless their digests
// collide and they share a parent directory and name; the mover refuses to
// overwrite in that case.
func BuildDestination(quarantineRoot, source string) (string, error) {
	if !filepath.IsAbs(source) {
		return "", &types.PathError{Path: source, Reason: "path is not absolute"}
	}

	clean := filepath.Clean(source)
	vol := filepath.VolumeName(clean)
	rel := strings.TrimLeft(clean[len(vol):], `/\`)
	if rel == "" {
		return "", &types.PathError{Path: source, Reason: "path names a volume root"}
	}

	dir, name := filepath.Split(rel)
	ext := classify.RawExtension(name)
	stem := strings.TrimSuffix(name, ext)

	return filepath.Join(quarantineRoot, VolumeTag(vol), dir, stem+"__"+Digest(clean)+ext), nil
}

// VolumeTag converts a volume name into a directory name: "C:" becomes "C",
// `\\host\share` becomes "UNC_host_share", and the empty volume becomes "ROOT".
func VolumeTag(volume string) string {
	switch {
	case volume == "":
		return rootTag
	case strings.HasPrefix(volume, `\\`) || strings.HasPrefix(volume, "//"):
		trimmed := strings.Trim(volume, `/\`)
		trimmed = strings.NewReplacer(`\`, "_", "/", "_", ":", "", "?", "").Replace(trimmed)
		return "UNC_" + strings.Trim(trimmed, "_")
	default:
		return strings.ReplaceAll(volume, ":", "")
	}
}

// Digest returns the first DigestLength hex characters of the SHA-256 of path.
func Digest(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:DigestLength]
}
