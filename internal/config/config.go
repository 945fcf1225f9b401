// Package config loads and validates the YAML configuration shared by all
// fotocop-setup commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Elmeric/fotocop/internal/volume"
)

// Config is the full configuration. All sections have workable defaults;
// a missing config file is not an error.
type Config struct {
	Device struct {
		Label        string   `yaml:"label"`
		Kinds        []string `yaml:"kinds"`
		PollInterval string   `yaml:"poll_interval"`
	} `yaml:"device"`

	Install struct {
		AppName           string `yaml:"app_name"`
		Publisher         string `yaml:"publisher"`
		Version           string `yaml:"version"`
		ManifestName      string `yaml:"manifest_name"`
		RegisterUninstall bool   `yaml:"register_uninstall"`
		CreateShortcuts   bool   `yaml:"create_shortcuts"`
		DesktopShortcut   bool   `yaml:"desktop_shortcut"`
	} `yaml:"install"`

	Logging struct {
		Level   string `yaml:"level"`
		File    string `yaml:"file"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"reporting"`
}

const (
	minPollInterval = 500 * time.Millisecond
	maxPollInterval = time.Minute
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}

	cfg.Device.Label = "SD-Card"
	cfg.Device.Kinds = []string{"removable", "fixed", "network"}
	cfg.Device.PollInterval = "2s"

	cfg.Install.AppName = "Fotocop"
	cfg.Install.Publisher = "Elmeric"
	cfg.Install.Version = "1.2.1"
	cfg.Install.ManifestName = "install.log"
	cfg.Install.RegisterUninstall = true
	cfg.Install.CreateShortcuts = true
	cfg.Install.DesktopShortcut = false

	cfg.Logging.Level = "info"
	cfg.Logging.File = ""
	cfg.Logging.Console = true

	cfg.Reporting.Enabled = false
	cfg.Reporting.Dir = "./reports"

	return cfg
}

// Load reads the configuration from path. An empty path or a missing file
// falls back to Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Unmarshal over the defaults so absent keys keep their values.
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks every section for usable values.
func Validate(config *Config) error {
	for _, kind := range config.Device.Kinds {
		if _, err := ParseKindToken(kind); err != nil {
			return err
		}
	}

	if config.Device.PollInterval != "" {
		interval, err := time.ParseDuration(config.Device.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll interval %q: %w", config.Device.PollInterval, err)
		}
		if interval < minPollInterval || interval > maxPollInterval {
			return fmt.Errorf("poll interval must be between %s and %s, got %s",
				minPollInterval, maxPollInterval, interval)
		}
	}

	if strings.TrimSpace(config.Install.AppName) == "" {
		return fmt.Errorf("install app_name must not be empty")
	}

	name := config.Install.ManifestName
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("install manifest_name must not be empty")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("invalid manifest_name %q: must be a plain file name", name)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Reporting.Enabled && strings.TrimSpace(config.Reporting.Dir) == "" {
		return fmt.Errorf("reporting dir must not be empty when reporting is enabled")
	}

	return nil
}

// Save writes the configuration to path, creating parent directories.
func Save(config *Config, path string) error {
	if err := Validate(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetPollInterval returns the configured watcher interval, 2s when unset or
// unparseable.
func (config *Config) GetPollInterval() time.Duration {
	if config.Device.PollInterval == "" {
		return 2 * time.Second
	}

	interval, err := time.ParseDuration(config.Device.PollInterval)
	if err != nil {
		return 2 * time.Second
	}

	return interval
}

// DeviceKinds maps the configured kind tokens to volume kinds. Validate has
// already vetted the tokens, so unparseable ones are skipped.
func (config *Config) DeviceKinds() []volume.Kind {
	kinds := make([]volume.Kind, 0, len(config.Device.Kinds))
	for _, token := range config.Device.Kinds {
		kind, err := ParseKindToken(token)
		if err != nil {
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

// ParseKindToken vets one device kind configuration token.
func ParseKindToken(token string) (volume.Kind, error) {
	kind, err := volume.ParseKind(token)
	if err != nil {
		return kind, fmt.Errorf("invalid device kind %q (use removable, fixed or network)", token)
	}
	return kind, nil
}
