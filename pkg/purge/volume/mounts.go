package volume

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// pseudoFilesystems are mount types that hold no user files. The BSD and
// Darwin names (devfs, fdescfs, procfs, linprocfs, linsysfs) share the table.
var pseudoFilesystems = map[string]struct{}{
	"autofs": {}, "binfmt_misc": {}, "bpf": {}, "cgroup": {}, "cgroup2": {},
	"configfs": {}, "debugfs": {}, "devfs": {}, "devpts": {}, "devtmpfs": {},
	"efivarfs": {}, "fdescfs": {}, "fusectl": {}, "hugetlbfs": {}, "linprocfs": {},
	"linsysfs": {}, "mqueue": {}, "nsfs": {}, "proc": {}, "procfs": {},
	"pstore": {}, "ramfs": {}, "rpc_pipefs": {}, "securityfs": {}, "selinuxfs": {},
	"squashfs": {}, "sysfs": {}, "tmpfs": {}, "tracefs": {},
}

// IsPseudo reports whether fsType names a filesystem that holds no user files.
func IsPseudo(fsType string) bool {
	_, ok := pseudoFilesystems[fsType]
	return ok
}

// splitMounts separates real filesystems from pseudo ones. Mount points are
// de-duplicated, first entry wins, and table order is kept.
func splitMounts(entries []Root) Table {
	var t Table
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Path]; dup {
			continue
		}
		seen[e.Path] = struct{}{}

		if IsPseudo(e.FSType) {
			t.Pseudo = append(t.Pseudo, e.Path)
			continue
		}
		t.Roots = append(t.Roots, e)
	}
	return t
}

// readMountTable reads a /proc/self/mounts style table.
func readMountTable(r io.Reader) Table {
	var entries []Root
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, Root{Path: unescapeMount(fields[1]), Device: fields[0], FSType: fields[2]})
	}
	return splitMounts(entries)
}

// parseMounts returns the mount points of real filesystems in a mount table.
func parseMounts(r io.Reader) []Root {
	return readMountTable(r).Roots
}

// unescapeMount decodes the octal escapes (\040 for space and friends) the
// kernel uses in mount tables.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
