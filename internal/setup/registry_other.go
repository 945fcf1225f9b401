//go:build !windows

package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsElevated reports whether the process can write machine-wide state such
// as a system-wide install root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// fileStore keeps the install metadata as a JSON file under the user config
// directory, standing in for the registry uninstall key.
type fileStore struct {
	path string
}

// NewMetadataStore returns the platform metadata store for appName.
func NewMetadataStore(appName string) MetadataStore {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return newFileStore(appName, base)
}

func newFileStore(appName, baseDir string) *fileStore {
	return &fileStore{
		path: filepath.Join(baseDir, strings.ToLower(appName), "install-info.json"),
	}
}

func (s *fileStore) Write(info InstallInfo) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal install metadata: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write install metadata: %w", err)
	}

	return nil
}

func (s *fileStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove install metadata: %w", err)
	}
	// Drop the parent directory too once it is empty.
	_ = os.Remove(filepath.Dir(s.path))
	return nil
}

func (s *fileStore) Probe() (InstallInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return InstallInfo{}, fmt.Errorf("install metadata at %s: %w", s.path, err)
	}

	var info InstallInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return InstallInfo{}, fmt.Errorf("failed to parse install metadata: %w", err)
	}

	return info, nil
}
