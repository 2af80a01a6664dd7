//go:build linux || darwin || freebsd

package volume

import "golang.org/x/sys/unix"

func diskUsage(path string) (Usage, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Usage{}, false
	}

	bsize := uint64(st.Bsize)
	total := uint64(st.Blocks) * bsize
	free := uint64(st.Bfree) * bsize
	return Usage{
		Total: total,
		Used:  total - free,
		Free:  uint64(st.Bavail) * bsize,
	}, true
}
