//go:build windows

package classify

import (
	"path/filepath"
	"strings"
)

// canonical cleans p and folds case, since NTFS and FAT paths compare
// case-insensitively.
func canonical(p string) string {
	return strings.ToLower(filepath.Clean(p))
}
