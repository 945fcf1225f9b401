package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Uninstaller removes an installation by replaying the install manifest in
// reverse. A missing manifest aborts before anything is touched; a failed
// entry removal is logged and the run continues with the remaining entries.
type Uninstaller struct {
	Root      string
	Manifest  string
	Meta      MetadataStore
	Shortcuts ShortcutManager
	DryRun    bool
	Log       zerolog.Logger
}

func (u *Uninstaller) Run(ctx context.Context) (*Result, error) {
	result := newResult()
	defer result.finish()

	// Same guard as the install side: a planted manifest must not turn a
	// protected directory into a removal target.
	if err := ValidateInstallRoot(u.Root); err != nil {
		result.add("validate", u.Root, StatusFailed, err.Error())
		return result, err
	}

	root, err := filepath.Abs(u.Root)
	if err != nil {
		result.add("validate", u.Root, StatusFailed, err.Error())
		return result, fmt.Errorf("failed to resolve install root %s: %w", u.Root, err)
	}
	result.add("validate", root, StatusOK, "")
	manifest := filepath.Join(root, u.Manifest)

	entries, err := ReadManifest(root, u.Manifest)
	if err != nil {
		result.add("read manifest", manifest, StatusFailed, err.Error())
		return result, err
	}
	result.add("read manifest", manifest, StatusOK, fmt.Sprintf("%d entries", len(entries)))

	if u.DryRun {
		return u.dryRun(result, root, entries)
	}

	var errs *multierror.Error

	// Entries come off in reverse of the recorded order.
	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		name := entries[i]
		status, detail := u.removeEntry(root, name)
		result.add("remove", name, status, detail)
		if status == StatusFailed {
			errs = multierror.Append(errs, fmt.Errorf("remove %s: %s", name, detail))
		}
	}

	if err := os.Remove(manifest); err != nil && !os.IsNotExist(err) {
		result.add("remove manifest", manifest, StatusFailed, err.Error())
		errs = multierror.Append(errs, fmt.Errorf("remove manifest: %w", err))
	} else {
		result.add("remove manifest", manifest, StatusOK, "")
	}

	// Non-recursive on purpose: anything the user added to the root stays,
	// and so does the root itself.
	if err := os.Remove(root); err != nil {
		if os.IsNotExist(err) {
			result.add("remove root", root, StatusSkipped, "already absent")
		} else {
			result.add("remove root", root, StatusWarning, err.Error())
			u.Log.Warn().Err(err).Str("root", root).Msg("install root not removed, leaving in place")
		}
	} else {
		result.add("remove root", root, StatusOK, "")
	}

	if u.Meta != nil {
		if err := u.Meta.Remove(); err != nil {
			result.add("unregister", "", StatusFailed, err.Error())
			errs = multierror.Append(errs, fmt.Errorf("unregister: %w", err))
		} else {
			result.add("unregister", "", StatusOK, "")
		}
	} else {
		result.add("unregister", "", StatusSkipped, "disabled")
	}

	if u.Shortcuts != nil {
		if err := u.Shortcuts.Remove(); err != nil {
			result.add("remove shortcuts", "", StatusFailed, err.Error())
			errs = multierror.Append(errs, fmt.Errorf("remove shortcuts: %w", err))
		} else {
			result.add("remove shortcuts", "", StatusOK, "")
		}
	} else {
		result.add("remove shortcuts", "", StatusSkipped, "disabled")
	}

	if err := errs.ErrorOrNil(); err != nil {
		u.Log.Warn().Int("failed", len(result.Failed())).Msg("uninstall finished with failures")
		return result, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}

	u.Log.Info().Str("root", root).Int("entries", len(entries)).Msg("uninstall complete")
	return result, nil
}

// removeEntry deletes one recorded entry under root. Directories go
// recursively, entries already gone are skipped so a repeated removal pass
// is harmless.
func (u *Uninstaller) removeEntry(root, name string) (StepStatus, string) {
	if err := validateEntryName(name); err != nil {
		return StatusFailed, err.Error()
	}
	target := filepath.Join(root, name)

	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusSkipped, "already absent"
		}
		return StatusFailed, err.Error()
	}

	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil {
		u.Log.Warn().Err(err).Str("target", target).Msg("failed to remove entry, continuing")
		return StatusFailed, err.Error()
	}

	u.Log.Debug().Str("target", target).Msg("removed")
	return StatusOK, ""
}

func (u *Uninstaller) dryRun(result *Result, root string, entries []string) (*Result, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		result.add("remove", entries[i], StatusSkipped, "dry-run")
	}
	result.add("remove manifest", filepath.Join(root, u.Manifest), StatusSkipped, "dry-run")
	result.add("remove root", root, StatusSkipped, "dry-run")
	result.add("unregister", "", StatusSkipped, "dry-run")
	result.add("remove shortcuts", "", StatusSkipped, "dry-run")

	u.Log.Info().Str("root", root).Int("entries", len(entries)).Msg("dry-run, nothing removed")
	return result, nil
}
