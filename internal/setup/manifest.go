package setup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteManifest records the top-level entries of stagingDir, one name per
// CRLF-terminated line, into the manifest file inside installRoot. The
// manifest is written before any payload is copied so a later uninstall can
// rely on it even if the copy is interrupted. Returns the recorded names in
// directory order.
func WriteManifest(stagingDir, installRoot, manifestName string) ([]string, error) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory %s: %w", stagingDir, err)
	}

	names := make([]string, 0, len(entries))
	var buf bytes.Buffer
	for _, entry := range entries {
		name := entry.Name()
		if name == manifestName {
			return nil, fmt.Errorf("staging directory contains %s, which collides with the install manifest", manifestName)
		}
		if strings.ContainsAny(name, "\r\n") {
			return nil, fmt.Errorf("entry name %q contains a line terminator and cannot be recorded", name)
		}
		buf.WriteString(name)
		buf.WriteString("\r\n")
		names = append(names, name)
	}

	path := filepath.Join(installRoot, manifestName)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write install manifest %s: %w", path, err)
	}

	return names, nil
}

// ReadManifest loads the recorded entry names from the manifest inside
// installRoot. Line terminators are stripped, LF-only files are tolerated,
// empty lines are skipped. A missing manifest reports ErrRecordMissing.
func ReadManifest(installRoot, manifestName string) ([]string, error) {
	path := filepath.Join(installRoot, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("install manifest %s: %w", path, ErrRecordMissing)
		}
		return nil, fmt.Errorf("failed to read install manifest %s: %w", path, err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSuffix(line, "\r")
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}
