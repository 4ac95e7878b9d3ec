package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/ui/preferences"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	DefaultSeconds *int  `yaml:"default_seconds,omitempty"`
	Notifications  *bool `yaml:"notifications,omitempty"`
	StartMinimized bool  `yaml:"start_minimized"`
}

// LoadSettings reads user preferences from YAML in the user config directory.
// If the file does not exist, defaults are returned unchanged.
func LoadSettings(appName string, defaults preferences.Settings) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return defaults, err
	}
	return LoadSettingsFrom(configPath, defaults)
}

// LoadSettingsFrom reads user preferences from the given file.
func LoadSettingsFrom(configPath string, defaults preferences.Settings) (preferences.Settings, error) {
	settings := defaults
	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML in the user config directory.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsTo(configPath, settings)
}

// SaveSettingsTo writes user preferences to the given file.
func SaveSettingsTo(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	seconds := int(settings.DefaultDuration / time.Second)
	notifications := settings.Notifications
	fileData := yamlSettings{
		DefaultSeconds: &seconds,
		Notifications:  &notifications,
		StartMinimized: settings.StartMinimized,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the preferences file location for the application.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if seconds := fileData.DefaultSeconds; seconds != nil && *seconds >= 0 && *seconds <= model.MaxSeconds {
		settings.DefaultDuration = time.Duration(*seconds) * time.Second
	}
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}
	settings.StartMinimized = fileData.StartMinimized
}
