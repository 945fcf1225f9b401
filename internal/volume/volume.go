// Package volume queries the operating system's logical-disk inventory and
// resolves volumes by their human-assigned labels. Volumes are owned by the
// OS; everything here is read-only.
package volume

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a logical volume the way the OS reports it. The numeric
// values match the Windows drive-type codes so the enumerator can use them
// directly.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoRoot
	KindRemovable
	KindFixed
	KindNetwork
	KindOptical
	KindRAMDisk
)

func (k Kind) String() string {
	switch k {
	case KindNoRoot:
		return "No Root Directory"
	case KindRemovable:
		return "Removable Disk"
	case KindFixed:
		return "Local Disk"
	case KindNetwork:
		return "Network Drive"
	case KindOptical:
		return "Compact Disc"
	case KindRAMDisk:
		return "RAM Disk"
	default:
		return "Unknown"
	}
}

// ParseKind maps a configuration token to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "removable":
		return KindRemovable, nil
	case "fixed", "local":
		return KindFixed, nil
	case "network":
		return KindNetwork, nil
	case "optical", "cdrom":
		return KindOptical, nil
	default:
		return KindUnknown, fmt.Errorf("unknown volume kind %q", s)
	}
}

// Volume is a snapshot of one mounted logical volume.
type Volume struct {
	// DeviceID is the OS-assigned designator: a drive letter such as "E:"
	// on Windows, the mount path elsewhere. It can change across mounts of
	// the same physical device.
	DeviceID string

	Label      string
	Kind       Kind
	Filesystem string
	TotalBytes uint64
	FreeBytes  uint64
}

var (
	// ErrNotFound reports that no mounted volume carries the requested
	// label. Recoverable: the caller may retry after the user reconnects
	// the device.
	ErrNotFound = errors.New("no volume with matching label")

	// ErrAborted reports that the user declined to retry a lookup. The
	// resolution result is unset.
	ErrAborted = errors.New("volume lookup aborted by user")

	// ErrUnsupported is returned by the system enumerator on platforms
	// without an inventory backend.
	ErrUnsupported = errors.New("volume enumeration is not supported on this platform")
)

// Enumerator lists the currently mounted volumes. Only volumes carrying a
// mounted filesystem are reported; empty card-reader slots and disconnected
// shares are skipped.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]Volume, error)
}

// systemEnumerator queries the host OS. The per-platform enumerate
// implementations live in the enumerate_*.go files.
type systemEnumerator struct{}

// NewSystemEnumerator returns the host OS inventory backend.
func NewSystemEnumerator() Enumerator { return systemEnumerator{} }

func (systemEnumerator) Enumerate(ctx context.Context) ([]Volume, error) {
	return enumerate(ctx)
}

// kindFilter keeps only volumes of the configured kinds.
type kindFilter struct {
	next  Enumerator
	kinds []Kind
}

// FilterKinds wraps an Enumerator so that only volumes of the given kinds
// are reported. With no kinds it returns the wrapped Enumerator unchanged.
func FilterKinds(e Enumerator, kinds ...Kind) Enumerator {
	if len(kinds) == 0 {
		return e
	}
	return kindFilter{next: e, kinds: kinds}
}

func (f kindFilter) Enumerate(ctx context.Context) ([]Volume, error) {
	vols, err := f.next.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	kept := vols[:0]
	for _, v := range vols {
		for _, k := range f.kinds {
			if v.Kind == k {
				kept = append(kept, v)
				break
			}
		}
	}
	return kept, nil
}
