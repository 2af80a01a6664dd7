//go:build !windows

package classify

import "path/filepath"

// canonical cleans p.
func canonical(p string) string {
	return filepath.Clean(p)
}
