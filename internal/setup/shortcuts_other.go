//go:build !windows

package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NewShortcutManager returns the platform shortcut manager for appName.
// Linux gets a freedesktop launcher entry; other platforms have no
// shortcut convention to serve.
func NewShortcutManager(appName string, desktop bool) ShortcutManager {
	if runtime.GOOS != "linux" {
		return noopShortcuts{}
	}
	return &desktopEntryShortcuts{appName: appName}
}

type noopShortcuts struct{}

func (noopShortcuts) Create(string) error { return nil }
func (noopShortcuts) Remove() error       { return nil }

// desktopEntryShortcuts writes a .desktop launcher for the installed binary
// into the user's applications directory.
type desktopEntryShortcuts struct {
	appName string
}

func (s *desktopEntryShortcuts) entryPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot locate the applications directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "applications", strings.ToLower(s.appName)+".desktop"), nil
}

func (s *desktopEntryShortcuts) Create(installRoot string) error {
	binary := filepath.Join(installRoot, strings.ToLower(s.appName))
	if _, err := os.Stat(binary); err != nil {
		if os.IsNotExist(err) {
			// The payload ships no launchable binary, nothing to link.
			return nil
		}
		return err
	}

	path, err := s.entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create applications directory: %w", err)
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Terminal=false
Categories=Graphics;Photography;
`, s.appName, binary)

	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}

	return nil
}

func (s *desktopEntryShortcuts) Remove() error {
	path, err := s.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove desktop entry: %w", err)
	}
	return nil
}
