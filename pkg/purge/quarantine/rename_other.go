//go:build !linux

package quarantine

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
