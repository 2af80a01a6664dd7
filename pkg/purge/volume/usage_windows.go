//go:build windows

package volume

import "golang.org/x/sys/windows"

func diskUsage(path string) (Usage, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Usage{}, false
	}

	var available, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &available, &total, &totalFree); err != nil {
		return Usage{}, false
	}
	return Usage{Total: total, Used: total - totalFree, Free: available}, true
}
