//go:build linux

package volume

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// lsblk columns probed for every block device. -P prints KEY="VALUE" pairs,
// -b sizes in bytes, -n drops the header.
const lsblkColumns = "NAME,LABEL,FSTYPE,TYPE,MOUNTPOINT,SIZE,FSAVAIL,RM"

func enumerate(ctx context.Context) ([]Volume, error) {
	out, err := exec.CommandContext(ctx, "lsblk", "-Pbn", "-o", lsblkColumns).Output()
	if err != nil {
		return nil, fmt.Errorf("lsblk: %w", err)
	}

	var vols []Volume
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := parseLsblkPairs(line)
		v, ok := volumeFromLsblk(fields)
		if !ok {
			continue
		}
		vols = append(vols, v)
	}
	return vols, nil
}

func volumeFromLsblk(fields map[string]string) (Volume, bool) {
	mount := fields["MOUNTPOINT"]
	fstype := fields["FSTYPE"]
	if mount == "" || mount == "[SWAP]" || fstype == "" {
		return Volume{}, false
	}

	kind := KindFixed
	switch {
	case fields["RM"] == "1":
		kind = KindRemovable
	case fields["TYPE"] == "rom":
		kind = KindOptical
	}

	total, _ := strconv.ParseUint(fields["SIZE"], 10, 64)
	free, _ := strconv.ParseUint(fields["FSAVAIL"], 10, 64)

	return Volume{
		DeviceID:   mount,
		Label:      fields["LABEL"],
		Kind:       kind,
		Filesystem: fstype,
		TotalBytes: total,
		FreeBytes:  free,
	}, true
}

// parseLsblkPairs splits one `KEY="VALUE" KEY="VALUE"` line. Values carry
// \xNN hex escapes for quotes and other special bytes.
func parseLsblkPairs(line string) map[string]string {
	fields := make(map[string]string)
	rest := line
	for {
		eq := strings.Index(rest, `="`)
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(rest[:eq])
		rest = rest[eq+2:]
		end := strings.Index(rest, `"`)
		if end < 0 {
			break
		}
		fields[key] = unescapeLsblk(rest[:end])
		rest = rest[end+1:]
	}
	return fields
}

func unescapeLsblk(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if i+3 < len(s) && s[i] == '\\' && s[i+1] == 'x' {
			if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 4
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
