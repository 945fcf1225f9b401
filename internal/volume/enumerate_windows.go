//go:build windows

package volume

import (
	"context"
	"strings"

	"golang.org/x/sys/windows"
)

// allDrivesMask covers the 26 possible drive letters, used when the bitmask
// query is unavailable and every letter has to be probed.
const allDrivesMask = 1<<26 - 1

func enumerate(ctx context.Context) ([]Volume, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil || mask == 0 {
		mask = allDrivesMask
	}

	var vols []Volume
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := probeDrive(string(rune('A'+i)) + `:\`)
		if !ok {
			continue
		}
		vols = append(vols, v)
	}
	return vols, nil
}

// probeDrive inspects one drive root. Drives without a mounted filesystem
// (empty card-reader slots, disconnected network shares) report false.
func probeDrive(root string) (Volume, bool) {
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return Volume{}, false
	}

	kind := Kind(windows.GetDriveType(rootPtr))
	if kind == KindUnknown || kind == KindNoRoot {
		return Volume{}, false
	}

	var (
		labelBuf  [windows.MAX_PATH + 1]uint16
		fsBuf     [windows.MAX_PATH + 1]uint16
		maxCompLn uint32
		fsFlags   uint32
	)
	err = windows.GetVolumeInformation(rootPtr,
		&labelBuf[0], uint32(len(labelBuf)),
		nil, &maxCompLn, &fsFlags,
		&fsBuf[0], uint32(len(fsBuf)))
	if err != nil {
		return Volume{}, false
	}
	fs := windows.UTF16ToString(fsBuf[:])
	if fs == "" {
		return Volume{}, false
	}

	var free, total, totalFree uint64
	// Size queries can fail on optical media; the volume is still usable.
	_ = windows.GetDiskFreeSpaceEx(rootPtr, &free, &total, &totalFree)

	return Volume{
		DeviceID:   strings.TrimSuffix(root, `\`),
		Label:      windows.UTF16ToString(labelBuf[:]),
		Kind:       kind,
		Filesystem: fs,
		TotalBytes: total,
		FreeBytes:  totalFree,
	}, true
}
