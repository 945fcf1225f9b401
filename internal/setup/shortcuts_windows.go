//go:build windows

package setup

import (
	"fmt"
	"os"
	"path/filepath"
)

// startMenuShortcuts places the launcher shortcut shipped with the payload
// into the user's Start Menu and optionally onto the desktop.
type startMenuShortcuts struct {
	appName string
	desktop bool
}

// NewShortcutManager returns the platform shortcut manager for appName.
func NewShortcutManager(appName string, desktop bool) ShortcutManager {
	return &startMenuShortcuts{appName: appName, desktop: desktop}
}

func (s *startMenuShortcuts) linkName() string {
	return s.appName + ".lnk"
}

func (s *startMenuShortcuts) programsDir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		var err error
		appData, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot locate the Start Menu: %w", err)
		}
	}
	return filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", s.appName), nil
}

func (s *startMenuShortcuts) Create(installRoot string) error {
	source := filepath.Join(installRoot, s.linkName())
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			// The payload ships no shortcut, nothing to place.
			return nil
		}
		return err
	}

	programs, err := s.programsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(programs, 0755); err != nil {
		return fmt.Errorf("failed to create Start Menu folder: %w", err)
	}
	if err := copyFile(source, filepath.Join(programs, s.linkName()), 0644); err != nil {
		return err
	}

	if s.desktop {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot locate the desktop: %w", err)
		}
		if err := copyFile(source, filepath.Join(home, "Desktop", s.linkName()), 0644); err != nil {
			return err
		}
	}

	return nil
}

// Remove cleans both placements regardless of the current configuration so
// an uninstall catches shortcuts created under earlier settings.
func (s *startMenuShortcuts) Remove() error {
	programs, err := s.programsDir()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(programs); err != nil {
		return fmt.Errorf("failed to remove Start Menu folder: %w", err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		link := filepath.Join(home, "Desktop", s.linkName())
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove desktop shortcut: %w", err)
		}
	}

	return nil
}
