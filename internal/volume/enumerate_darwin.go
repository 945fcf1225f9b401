//go:build darwin

package volume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// volumesDir is where macOS mounts every volume. The boot volume shows up
// as a symlink to /.
const volumesDir = "/Volumes"

func enumerate(ctx context.Context) ([]Volume, error) {
	entries, err := os.ReadDir(volumesDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", volumesDir, err)
	}

	var vols []Volume
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mount := filepath.Join(volumesDir, entry.Name())
		var st unix.Statfs_t
		if err := unix.Statfs(mount, &st); err != nil {
			continue
		}

		kind := KindRemovable
		if entry.Type()&os.ModeSymlink != 0 {
			// Symlinked entries point at internal volumes (the boot disk).
			kind = KindFixed
		}

		bsize := uint64(st.Bsize)
		vols = append(vols, Volume{
			DeviceID:   mount,
			Label:      entry.Name(),
			Kind:       kind,
			Filesystem: unix.ByteSliceToString(st.Fstypename[:]),
			TotalBytes: st.Blocks * bsize,
			FreeBytes:  st.Bavail * bsize,
		})
	}
	return vols, nil
}
