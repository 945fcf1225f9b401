package setup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmeric/fotocop/internal/logging"
)

type fakeMeta struct {
	written  []InstallInfo
	removed  int
	failWith error
}

func (f *fakeMeta) Write(info InstallInfo) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.written = append(f.written, info)
	return nil
}

func (f *fakeMeta) Remove() error {
	f.removed++
	return nil
}

func (f *fakeMeta) Probe() (InstallInfo, error) {
	if len(f.written) == 0 {
		return InstallInfo{}, errors.New("not registered")
	}
	return f.written[len(f.written)-1], nil
}

type fakeShortcuts struct {
	created  []string
	removed  int
	failWith error
}

func (f *fakeShortcuts) Create(installRoot string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.created = append(f.created, installRoot)
	return nil
}

func (f *fakeShortcuts) Remove() error {
	f.removed++
	return nil
}

func stagePayload(t *testing.T) string {
	t.Helper()
	staging := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "app.exe"), []byte("binary"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "data", "models"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "data", "models", "faces.dat"), []byte("weights"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "readme.txt"), []byte("hello"), 0644))
	return staging
}

func newInstaller(staging, root string) *Installer {
	return &Installer{
		Staging:  staging,
		Root:     root,
		Manifest: "install.log",
		Info: InstallInfo{
			DisplayName: "Fotocop",
			Version:     "1.2.1",
			Publisher:   "Elmeric",
		},
		Log: log.Logger,
	}
}

func TestInstallerRun(t *testing.T) {
	logging.ConfigureTestLogging(t)

	t.Run("copies the payload and registers it", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")
		meta := &fakeMeta{}
		shortcuts := &fakeShortcuts{}

		ins := newInstaller(staging, root)
		ins.Meta = meta
		ins.Shortcuts = shortcuts

		result, err := ins.Run(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Failed())

		assert.FileExists(t, filepath.Join(root, "app.exe"))
		assert.FileExists(t, filepath.Join(root, "data", "models", "faces.dat"))
		assert.FileExists(t, filepath.Join(root, "readme.txt"))

		data, err := os.ReadFile(filepath.Join(root, "install.log"))
		require.NoError(t, err)
		assert.Equal(t, "app.exe\r\ndata\r\nreadme.txt\r\n", string(data))

		require.Len(t, meta.written, 1)
		assert.Equal(t, root, meta.written[0].InstallLocation)
		assert.NotZero(t, meta.written[0].EstimatedKB)
		assert.Equal(t, []string{root}, shortcuts.created)
	})

	t.Run("preserves file permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not meaningful on windows")
		}
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")

		_, err := newInstaller(staging, root).Run(context.Background())
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(root, "app.exe"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	})

	t.Run("registration failure rolls back a fresh root", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")

		ins := newInstaller(staging, root)
		ins.Meta = &fakeMeta{failWith: errors.New("store sealed")}

		result, err := ins.Run(context.Background())
		require.Error(t, err)
		assert.NotEmpty(t, result.Failed())
		assert.NoDirExists(t, root)
	})

	t.Run("rollback keeps a pre-existing root and its stray files", func(t *testing.T) {
		staging := stagePayload(t)
		root := t.TempDir()
		stray := filepath.Join(root, "user-notes.txt")
		require.NoError(t, os.WriteFile(stray, []byte("mine"), 0644))

		ins := newInstaller(staging, root)
		ins.Meta = &fakeMeta{failWith: errors.New("store sealed")}

		_, err := ins.Run(context.Background())
		require.Error(t, err)

		assert.DirExists(t, root)
		assert.FileExists(t, stray)
		assert.NoFileExists(t, filepath.Join(root, "app.exe"))
		assert.NoFileExists(t, filepath.Join(root, "install.log"))
	})

	t.Run("shortcut failure is a warning, not a rollback", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")

		ins := newInstaller(staging, root)
		ins.Shortcuts = &fakeShortcuts{failWith: errors.New("no desktop")}

		result, err := ins.Run(context.Background())
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(root, "app.exe"))

		var warned bool
		for _, step := range result.Steps {
			if step.Name == "shortcuts" && step.Status == StatusWarning {
				warned = true
			}
		}
		assert.True(t, warned)
	})

	t.Run("dry run touches nothing", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")
		meta := &fakeMeta{}

		ins := newInstaller(staging, root)
		ins.Meta = meta
		ins.DryRun = true

		result, err := ins.Run(context.Background())
		require.NoError(t, err)

		assert.NoDirExists(t, root)
		assert.Empty(t, meta.written)
		for _, step := range result.Steps[1:] {
			assert.Equal(t, StatusSkipped, step.Status, step.Name)
		}
	})

	t.Run("staging equal to root is refused", func(t *testing.T) {
		dir := t.TempDir()
		_, err := newInstaller(dir, dir).Run(context.Background())
		assert.ErrorContains(t, err, "same path")
	})

	t.Run("root inside staging is refused", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(staging, "Fotocop")

		_, err := newInstaller(staging, root).Run(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, "contain")
		assert.NoDirExists(t, root)
	})

	t.Run("staging inside root is refused", func(t *testing.T) {
		root := t.TempDir()
		staging := filepath.Join(root, "stage")
		require.NoError(t, os.MkdirAll(staging, 0755))

		_, err := newInstaller(staging, root).Run(context.Background())
		assert.ErrorContains(t, err, "contain")
	})

	t.Run("missing staging directory", func(t *testing.T) {
		staging := filepath.Join(t.TempDir(), "nope")
		root := filepath.Join(t.TempDir(), "Fotocop")
		_, err := newInstaller(staging, root).Run(context.Background())
		require.Error(t, err)
		assert.NoDirExists(t, root)
	})

	t.Run("cancelled context rolls back", func(t *testing.T) {
		staging := stagePayload(t)
		root := filepath.Join(t.TempDir(), "Fotocop")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newInstaller(staging, root).Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.NoDirExists(t, root)
	})
}

func TestCopyEntrySymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}

	staging := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "app"), []byte("binary"), 0755))
	require.NoError(t, os.Symlink("app", filepath.Join(staging, "latest")))

	dst := t.TempDir()
	require.NoError(t, copyEntry(context.Background(), filepath.Join(staging, "latest"), filepath.Join(dst, "latest")))

	link, err := os.Readlink(filepath.Join(dst, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "app", link)
}

func TestCopyEntryLargeFile(t *testing.T) {
	payload := make([]byte, 2*copyChunkSize+123)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	src := filepath.Join(t.TempDir(), "library.dat")
	require.NoError(t, os.WriteFile(src, payload, 0644))

	dst := filepath.Join(t.TempDir(), "library.dat")
	require.NoError(t, copyEntry(context.Background(), src, dst))

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, copied))
}

func TestDirSizeKB(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 1000), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), make([]byte, 500), 0644))

	// 1500 bytes round up to 2 KB.
	assert.Equal(t, uint32(2), DirSizeKB(dir))
	assert.Equal(t, uint32(0), DirSizeKB(t.TempDir()))
}
