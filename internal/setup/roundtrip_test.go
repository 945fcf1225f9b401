//go:build !windows

package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmeric/fotocop/internal/logging"
)

// The full transaction through the real metadata store and launcher entry:
// install from staging, uninstall, and nothing of it survives.
func TestInstallUninstallRoundTrip(t *testing.T) {
	logging.ConfigureTestLogging(t)
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	staging := stagePayload(t)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "fotocop"), []byte("#!/bin/sh\n"), 0755))

	root := filepath.Join(t.TempDir(), "Fotocop")
	store := newFileStore("Fotocop", t.TempDir())
	shortcuts := &desktopEntryShortcuts{appName: "Fotocop"}

	ins := &Installer{
		Staging:   staging,
		Root:      root,
		Manifest:  "install.log",
		Info:      InstallInfo{DisplayName: "Fotocop", Version: "1.2.1", Publisher: "Elmeric"},
		Meta:      store,
		Shortcuts: shortcuts,
		Log:       log.Logger,
	}
	_, err := ins.Run(context.Background())
	require.NoError(t, err)

	info, err := store.Probe()
	require.NoError(t, err)
	assert.Equal(t, root, info.InstallLocation)

	entryPath, err := shortcuts.entryPath()
	require.NoError(t, err)
	assert.FileExists(t, entryPath)

	u := &Uninstaller{
		Root:      root,
		Manifest:  "install.log",
		Meta:      store,
		Shortcuts: shortcuts,
		Log:       log.Logger,
	}
	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Failed())

	assert.NoDirExists(t, root)
	assert.NoFileExists(t, entryPath)
	_, err = store.Probe()
	assert.Error(t, err)
}
