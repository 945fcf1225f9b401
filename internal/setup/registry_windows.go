//go:build windows

package setup

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// IsElevated reports whether the process can write machine-wide state such
// as the HKLM uninstall key.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

const uninstallKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\`

// registryStore keeps the uninstall entry under HKLM where Add/Remove
// Programs looks for it.
type registryStore struct {
	appName string
}

// NewMetadataStore returns the platform metadata store for appName.
func NewMetadataStore(appName string) MetadataStore {
	return &registryStore{appName: appName}
}

func (s *registryStore) keyPath() string {
	return uninstallKeyPath + s.appName
}

func (s *registryStore) Write(info InstallInfo) error {
	// WOW64_64KEY so 64-bit systems see the entry in the native view.
	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, s.keyPath(), registry.ALL_ACCESS|registry.WOW64_64KEY)
	if err != nil {
		return fmt.Errorf("failed to create uninstall key: %w", err)
	}
	defer k.Close()

	values := map[string]string{
		"DisplayName":     info.DisplayName,
		"DisplayVersion":  info.Version,
		"Publisher":       info.Publisher,
		"InstallLocation": info.InstallLocation,
		"UninstallString": info.UninstallString,
		"InstallDate":     time.Now().Format("20060102"),
	}
	if info.DisplayIcon != "" {
		values["DisplayIcon"] = info.DisplayIcon
	}

	for name, value := range values {
		if err := k.SetStringValue(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	dwords := map[string]uint32{
		"NoModify":      1,
		"NoRepair":      1,
		"EstimatedSize": info.EstimatedKB,
	}
	for name, value := range dwords {
		if err := k.SetDWordValue(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	return nil
}

func (s *registryStore) Remove() error {
	err := registry.DeleteKey(registry.LOCAL_MACHINE, s.keyPath())
	if err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("failed to delete uninstall key: %w", err)
	}
	return nil
}

func (s *registryStore) Probe() (InstallInfo, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, s.keyPath(), registry.QUERY_VALUE)
	if err != nil {
		return InstallInfo{}, fmt.Errorf("uninstall key for %s: %w", s.appName, err)
	}
	defer k.Close()

	var info InstallInfo
	info.DisplayName, _, _ = k.GetStringValue("DisplayName")
	info.Version, _, _ = k.GetStringValue("DisplayVersion")
	info.Publisher, _, _ = k.GetStringValue("Publisher")
	info.InstallLocation, _, _ = k.GetStringValue("InstallLocation")
	info.UninstallString, _, _ = k.GetStringValue("UninstallString")
	info.DisplayIcon, _, _ = k.GetStringValue("DisplayIcon")
	if size, _, err := k.GetIntegerValue("EstimatedSize"); err == nil {
		info.EstimatedKB = uint32(size)
	}

	return info, nil
}
