//go:build !windows

package setup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	base := t.TempDir()
	store := newFileStore("Fotocop", base)

	info := InstallInfo{
		DisplayName:     "Fotocop",
		Version:         "1.2.1",
		Publisher:       "Elmeric",
		InstallLocation: "/opt/fotocop",
		UninstallString: `"/opt/fotocop/fotocop-setup" uninstall`,
		EstimatedKB:     2048,
	}
	require.NoError(t, store.Write(info))
	assert.FileExists(t, filepath.Join(base, "fotocop", "install-info.json"))

	got, err := store.Probe()
	require.NoError(t, err)
	assert.Equal(t, info, got)

	require.NoError(t, store.Remove())
	_, err = store.Probe()
	assert.Error(t, err)

	// Removing an absent record is not an error.
	require.NoError(t, store.Remove())
}
