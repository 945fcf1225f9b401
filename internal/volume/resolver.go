package volume

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Resolver answers label lookups against a volume inventory.
type Resolver struct {
	// CaseInsensitive makes label comparison ignore case. NewResolver sets
	// it to the host convention: Windows labels compare case-insensitively,
	// POSIX labels do not.
	CaseInsensitive bool

	enum Enumerator
}

// NewResolver returns a Resolver reading from enum with the host OS
// comparison convention.
func NewResolver(enum Enumerator) *Resolver {
	return &Resolver{
		CaseInsensitive: runtime.GOOS == "windows",
		enum:            enum,
	}
}

// Resolve snapshots the inventory and returns the volume whose label equals
// label exactly. The first match in enumeration order wins when several
// volumes share a label. No match yields ErrNotFound; the query itself has
// no side effects.
func (r *Resolver) Resolve(ctx context.Context, label string) (Volume, error) {
	vols, err := r.enum.Enumerate(ctx)
	if err != nil {
		return Volume{}, fmt.Errorf("enumerating volumes: %w", err)
	}
	for _, v := range vols {
		if r.labelsEqual(v.Label, label) {
			return v, nil
		}
	}
	return Volume{}, fmt.Errorf("volume %q: %w", label, ErrNotFound)
}

func (r *Resolver) labelsEqual(a, b string) bool {
	if r.CaseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// EqualLabels compares two labels with the host OS convention.
func EqualLabels(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// RetryFunc asks whether a failed lookup should be attempted again. It
// blocks on the user, so the loop around it is user-gated rather than
// time-gated.
type RetryFunc func() (bool, error)

// Locate resolves label, consulting retry on every miss until the volume
// shows up or the user declines. A nil retry means a single attempt. The
// loop has no attempt limit; only the user (or ctx) ends it. Aborting
// returns ErrAborted with the result unset.
func Locate(ctx context.Context, r *Resolver, label string, retry RetryFunc) (Volume, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Volume{}, err
		}
		v, err := r.Resolve(ctx, label)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Volume{}, err
		}
		if retry == nil {
			return Volume{}, err
		}
		again, perr := retry()
		if perr != nil {
			return Volume{}, fmt.Errorf("retry prompt: %w", perr)
		}
		if !again {
			return Volume{}, ErrAborted
		}
	}
}
