package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateInstallRoot refuses roots whose removal would be catastrophic:
// filesystem and volume roots, the user's home directory itself, and the
// shared system directories. Subdirectories of these are fine.
func ValidateInstallRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("install root must not be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve install root %s: %w", root, err)
	}
	clean := filepath.Clean(abs)

	// "/" on unix, "C:\" on Windows.
	if clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return fmt.Errorf("install root %s is a volume root", clean)
	}

	if home, err := os.UserHomeDir(); err == nil && clean == filepath.Clean(home) {
		return fmt.Errorf("install root %s is the home directory", clean)
	}

	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "SystemRoot"} {
		if dir := os.Getenv(env); dir != "" && clean == filepath.Clean(dir) {
			return fmt.Errorf("install root %s is a protected system directory", clean)
		}
	}

	return nil
}

// contains reports whether path lies at or below dir. Both arguments must be
// absolute.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validateEntryName vets a manifest entry before it is joined to the install
// root. Only plain names directly under the root are removable.
func validateEntryName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid manifest entry %q", name)
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("manifest entry %q is not a plain name", name)
	}
	return nil
}
