//go:build darwin || freebsd

package volume

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func snapshot() (Table, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return Table{Roots: []Root{{Path: "/"}}}, nil
	}

	// Mounts can appear between the two calls; the slack absorbs them.
	buf := make([]unix.Statfs_t, n+8)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return Table{}, fmt.Errorf("reading mount table: %w", err)
	}

	entries := make([]Root, 0, n)
	for _, st := range buf[:n] {
		entries = append(entries, Root{
			Path:   unix.ByteSliceToString(st.Mntonname[:]),
			Device: unix.ByteSliceToString(st.Mntfromname[:]),
			FSType: unix.ByteSliceToString(st.Fstypename[:]),
		})
	}

	t := splitMounts(entries)
	if len(t.Roots) == 0 {
		return Table{}, errors.New("no mounted filesystems")
	}
	return t, nil
}
