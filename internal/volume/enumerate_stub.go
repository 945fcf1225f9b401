//go:build !windows && !linux && !darwin

package volume

import "context"

func enumerate(ctx context.Context) ([]Volume, error) {
	return nil, ErrUnsupported
}
