package setup

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Installer copies a staging directory into the install root, records the
// install manifest first, and registers the installation. A failure after the
// root was touched rolls everything back so a failed install leaves no trace.
type Installer struct {
	Staging   string
	Root      string
	Manifest  string
	Info      InstallInfo
	Meta      MetadataStore
	Shortcuts ShortcutManager
	DryRun    bool
	Log       zerolog.Logger
}

func (ins *Installer) Run(ctx context.Context) (*Result, error) {
	result := newResult()
	defer result.finish()

	staging, root, err := ins.resolvePaths()
	if err != nil {
		result.add("validate", ins.Root, StatusFailed, err.Error())
		return result, err
	}
	result.add("validate", root, StatusOK, "")

	if ins.DryRun {
		return ins.dryRun(result, staging, root)
	}

	rootCreated := false
	if _, err := os.Stat(root); os.IsNotExist(err) {
		rootCreated = true
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		result.add("prepare root", root, StatusFailed, err.Error())
		return result, fmt.Errorf("failed to create install root %s: %w", root, err)
	}
	result.add("prepare root", root, StatusOK, "")

	// The manifest goes in before any payload so an interrupted copy is
	// still uninstallable.
	entries, err := WriteManifest(staging, root, ins.Manifest)
	if err != nil {
		result.add("write manifest", ins.Manifest, StatusFailed, err.Error())
		ins.rollback(root, nil, rootCreated)
		return result, err
	}
	result.add("write manifest", ins.Manifest, StatusOK, fmt.Sprintf("%d entries", len(entries)))
	ins.Log.Info().Str("root", root).Int("entries", len(entries)).Msg("install manifest recorded")

	var copied []string
	for _, name := range entries {
		select {
		case <-ctx.Done():
			result.add("copy", name, StatusFailed, ctx.Err().Error())
			ins.rollback(root, copied, rootCreated)
			return result, ctx.Err()
		default:
		}

		if err := copyEntry(ctx, filepath.Join(staging, name), filepath.Join(root, name)); err != nil {
			result.add("copy", name, StatusFailed, err.Error())
			ins.rollback(root, copied, rootCreated)
			return result, fmt.Errorf("failed to copy %s: %w", name, err)
		}
		copied = append(copied, name)
		result.add("copy", name, StatusOK, "")
		ins.Log.Debug().Str("entry", name).Msg("copied")
	}

	if ins.Meta != nil {
		info := ins.Info
		info.InstallLocation = root
		info.EstimatedKB = DirSizeKB(root)
		if err := ins.Meta.Write(info); err != nil {
			result.add("register", info.DisplayName, StatusFailed, err.Error())
			ins.rollback(root, copied, rootCreated)
			return result, fmt.Errorf("failed to register installation: %w", err)
		}
		result.add("register", info.DisplayName, StatusOK, "")
	} else {
		result.add("register", "", StatusSkipped, "disabled")
	}

	if ins.Shortcuts != nil {
		// Shortcuts are cosmetic: a failure here does not undo the install.
		if err := ins.Shortcuts.Create(root); err != nil {
			result.add("shortcuts", "", StatusWarning, err.Error())
			ins.Log.Warn().Err(err).Msg("failed to create shortcuts")
		} else {
			result.add("shortcuts", "", StatusOK, "")
		}
	} else {
		result.add("shortcuts", "", StatusSkipped, "disabled")
	}

	ins.Log.Info().Str("root", root).Int("entries", len(copied)).Msg("install complete")
	return result, nil
}

func (ins *Installer) resolvePaths() (staging, root string, err error) {
	if err := ValidateInstallRoot(ins.Root); err != nil {
		return "", "", err
	}

	staging, err = filepath.Abs(ins.Staging)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve staging directory %s: %w", ins.Staging, err)
	}
	root, err = filepath.Abs(ins.Root)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve install root %s: %w", ins.Root, err)
	}

	if staging == root {
		return "", "", fmt.Errorf("staging directory and install root are the same path %s", root)
	}
	// A root nested in the staging area would be copied into itself without
	// end; the reverse would let uninstall take the staging area with it.
	if contains(staging, root) || contains(root, staging) {
		return "", "", fmt.Errorf("staging directory %s and install root %s must not contain one another", staging, root)
	}

	info, err := os.Stat(staging)
	if err != nil {
		return "", "", fmt.Errorf("failed to read staging directory %s: %w", staging, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("staging path %s is not a directory", staging)
	}

	return staging, root, nil
}

func (ins *Installer) dryRun(result *Result, staging, root string) (*Result, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		result.add("write manifest", ins.Manifest, StatusFailed, err.Error())
		return result, fmt.Errorf("failed to read staging directory %s: %w", staging, err)
	}

	result.add("write manifest", filepath.Join(root, ins.Manifest), StatusSkipped, "dry-run")
	for _, entry := range entries {
		result.add("copy", entry.Name(), StatusSkipped, "dry-run")
	}
	result.add("register", "", StatusSkipped, "dry-run")
	result.add("shortcuts", "", StatusSkipped, "dry-run")

	ins.Log.Info().Str("root", root).Int("entries", len(entries)).Msg("dry-run, nothing copied")
	return result, nil
}

// rollback removes everything this run created, newest first.
func (ins *Installer) rollback(root string, copied []string, rootCreated bool) {
	ins.Log.Warn().Str("root", root).Msg("install failed, rolling back")

	for i := len(copied) - 1; i >= 0; i-- {
		target := filepath.Join(root, copied[i])
		if err := os.RemoveAll(target); err != nil {
			ins.Log.Warn().Err(err).Str("target", target).Msg("rollback failed to remove entry")
		}
	}

	manifest := filepath.Join(root, ins.Manifest)
	if err := os.Remove(manifest); err != nil && !os.IsNotExist(err) {
		ins.Log.Warn().Err(err).Str("target", manifest).Msg("rollback failed to remove manifest")
	}

	if rootCreated {
		if err := os.Remove(root); err != nil && !os.IsNotExist(err) {
			ins.Log.Warn().Err(err).Str("target", root).Msg("rollback left the install root behind")
		}
	}
}

// DirSizeKB walks root and returns the payload size in kilobytes, rounded
// up and clamped to the uint32 range the registry expects.
func DirSizeKB(root string) uint32 {
	var total uint64
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if info, err := entry.Info(); err == nil && info.Size() > 0 {
			total += uint64(info.Size())
		}
		return nil
	})

	kb := (total + 1023) / 1024
	if kb > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(kb)
}
