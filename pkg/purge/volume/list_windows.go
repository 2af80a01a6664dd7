//go:build windows

package volume

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

var driveTypes = map[uint32]string{
	windows.DRIVE_REMOVABLE: "removable",
	windows.DRIVE_FIXED:     "fixed",
	windows.DRIVE_REMOTE:    "remote",
	windows.DRIVE_CDROM:     "cdrom",
	windows.DRIVE_RAMDISK:   "ramdisk",
}

func snapshot() (Table, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return Table{}, err
	}

	var roots []Root
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		path := string(rune('A'+i)) + `:\`

		// Drives without media are reported but cannot be opened.
		if _, err := os.Stat(path); err != nil {
			continue
		}

		root := Root{Path: path}
		if p, err := windows.UTF16PtrFromString(path); err == nil {
			root.Device = driveTypes[windows.GetDriveType(p)]
		}
		roots = append(roots, root)
	}
	if len(roots) == 0 {
		return Table{}, errors.New("no accessible drives")
	}
	return Table{Roots: roots}, nil
}
