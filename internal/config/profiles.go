package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ApplyProfile applies a named setup profile to the configuration.
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "standard":
		cfg.Install.RegisterUninstall = true
		cfg.Install.CreateShortcuts = true
		cfg.Install.DesktopShortcut = false
	case "portable":
		// Leave no trace outside the install root.
		cfg.Install.RegisterUninstall = false
		cfg.Install.CreateShortcuts = false
		cfg.Install.DesktopShortcut = false
	case "silent":
		cfg.Logging.Console = false
		if cfg.Logging.File == "" {
			cfg.Logging.File = filepath.Join(os.TempDir(), "fotocop-setup.log")
		}
		cfg.Reporting.Enabled = true
	default:
		return fmt.Errorf("unknown profile: %s", profile)
	}
	return nil
}
