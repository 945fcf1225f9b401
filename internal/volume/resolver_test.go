package volume

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnumerator serves canned inventories; Set swaps the inventory so
// tests can simulate a device being plugged in or pulled.
type fakeEnumerator struct {
	mu   sync.Mutex
	vols []Volume
	err  error
}

func (f *fakeEnumerator) Enumerate(ctx context.Context) ([]Volume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Volume, len(f.vols))
	copy(out, f.vols)
	return out, nil
}

func (f *fakeEnumerator) Set(vols ...Volume) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vols = vols
}

func sdCard() Volume {
	return Volume{
		DeviceID:   "E:",
		Label:      "SD-Card",
		Kind:       KindRemovable,
		Filesystem: "FAT32",
		TotalBytes: 32 << 30,
		FreeBytes:  12 << 30,
	}
}

func TestResolverResolve(t *testing.T) {
	t.Run("matching label resolves on first attempt", func(t *testing.T) {
		enum := &fakeEnumerator{}
		enum.Set(Volume{DeviceID: "C:", Label: "System", Kind: KindFixed}, sdCard())

		v, err := NewResolver(enum).Resolve(context.Background(), "SD-Card")
		require.NoError(t, err)
		assert.Equal(t, "E:", v.DeviceID)
		assert.Equal(t, KindRemovable, v.Kind)
	})

	t.Run("no match yields ErrNotFound", func(t *testing.T) {
		enum := &fakeEnumerator{}
		enum.Set(sdCard())

		_, err := NewResolver(enum).Resolve(context.Background(), "Backup")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty inventory yields ErrNotFound", func(t *testing.T) {
		enum := &fakeEnumerator{}

		_, err := NewResolver(enum).Resolve(context.Background(), "SD-Card")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("enumeration failure is not ErrNotFound", func(t *testing.T) {
		enum := &fakeEnumerator{err: errors.New("query failed")}

		_, err := NewResolver(enum).Resolve(context.Background(), "SD-Card")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("first of several matches wins", func(t *testing.T) {
		enum := &fakeEnumerator{}
		first := sdCard()
		second := sdCard()
		second.DeviceID = "F:"
		enum.Set(first, second)

		v, err := NewResolver(enum).Resolve(context.Background(), "SD-Card")
		require.NoError(t, err)
		assert.Equal(t, "E:", v.DeviceID)
	})

	t.Run("case folding follows the configured convention", func(t *testing.T) {
		enum := &fakeEnumerator{}
		enum.Set(sdCard())

		sensitive := NewResolver(enum)
		sensitive.CaseInsensitive = false
		_, err := sensitive.Resolve(context.Background(), "sd-card")
		assert.ErrorIs(t, err, ErrNotFound)

		folding := NewResolver(enum)
		folding.CaseInsensitive = true
		v, err := folding.Resolve(context.Background(), "sd-card")
		require.NoError(t, err)
		assert.Equal(t, "E:", v.DeviceID)
	})
}

func TestLocate(t *testing.T) {
	t.Run("found volume needs no prompt", func(t *testing.T) {
		enum := &fakeEnumerator{}
		enum.Set(sdCard())
		prompted := false

		v, err := Locate(context.Background(), NewResolver(enum), "SD-Card", func() (bool, error) {
			prompted = true
			return false, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "E:", v.DeviceID)
		assert.False(t, prompted, "retry prompt must not appear for a resolved volume")
	})

	t.Run("prompt is offered before aborting", func(t *testing.T) {
		enum := &fakeEnumerator{}
		prompts := 0

		_, err := Locate(context.Background(), NewResolver(enum), "SD-Card", func() (bool, error) {
			prompts++
			return false, nil
		})
		assert.ErrorIs(t, err, ErrAborted)
		assert.Equal(t, 1, prompts)
	})

	t.Run("retrying picks up a late arrival", func(t *testing.T) {
		enum := &fakeEnumerator{}
		attempts := 0

		v, err := Locate(context.Background(), NewResolver(enum), "SD-Card", func() (bool, error) {
			attempts++
			if attempts == 2 {
				// The user plugged the card in before answering.
				enum.Set(sdCard())
			}
			return true, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "E:", v.DeviceID)
		assert.Equal(t, 2, attempts)
	})

	t.Run("nil retry means a single attempt", func(t *testing.T) {
		enum := &fakeEnumerator{}

		_, err := Locate(context.Background(), NewResolver(enum), "SD-Card", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("prompt failure aborts the loop", func(t *testing.T) {
		enum := &fakeEnumerator{}
		broken := errors.New("stdin closed")

		_, err := Locate(context.Background(), NewResolver(enum), "SD-Card", func() (bool, error) {
			return false, broken
		})
		assert.ErrorIs(t, err, broken)
	})

	t.Run("enumeration errors do not trigger the prompt", func(t *testing.T) {
		enum := &fakeEnumerator{err: errors.New("query failed")}
		prompted := false

		_, err := Locate(context.Background(), NewResolver(enum), "SD-Card", func() (bool, error) {
			prompted = true
			return true, nil
		})
		require.Error(t, err)
		assert.False(t, prompted)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		enum := &fakeEnumerator{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Locate(ctx, NewResolver(enum), "SD-Card", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFilterKinds(t *testing.T) {
	enum := &fakeEnumerator{}
	enum.Set(
		Volume{DeviceID: "C:", Label: "System", Kind: KindFixed},
		sdCard(),
		Volume{DeviceID: "Z:", Label: "nas", Kind: KindNetwork},
	)

	t.Run("keeps only requested kinds", func(t *testing.T) {
		vols, err := FilterKinds(enum, KindRemovable, KindNetwork).Enumerate(context.Background())
		require.NoError(t, err)
		require.Len(t, vols, 2)
		assert.Equal(t, "E:", vols[0].DeviceID)
		assert.Equal(t, "Z:", vols[1].DeviceID)
	})

	t.Run("no kinds means no filtering", func(t *testing.T) {
		vols, err := FilterKinds(enum).Enumerate(context.Background())
		require.NoError(t, err)
		assert.Len(t, vols, 3)
	})
}

func TestParseKind(t *testing.T) {
	for token, want := range map[string]Kind{
		"removable": KindRemovable,
		"fixed":     KindFixed,
		"local":     KindFixed,
		"Network":   KindNetwork,
		" optical ": KindOptical,
	} {
		k, err := ParseKind(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, k, token)
	}

	_, err := ParseKind("floppy")
	assert.Error(t, err)
}
