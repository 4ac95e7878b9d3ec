package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LISDEAD/beep/internal/ui/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFrom_MissingFileReturnsDefaults(t *testing.T) {
	defaults := preferences.DefaultSettings()

	settings, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "settings.yaml"), defaults)

	require.NoError(t, err)
	assert.Equal(t, defaults, settings)
}

func TestSaveThenLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	saved := preferences.Settings{
		DefaultDuration: 25 * time.Minute,
		Notifications:   false,
		StartMinimized:  true,
	}

	require.NoError(t, SaveSettingsTo(path, saved))
	loaded, err := LoadSettingsFrom(path, preferences.DefaultSettings())

	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsFrom_IgnoresOutOfRangeDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_seconds: -5\n"), 0o644))

	settings, err := LoadSettingsFrom(path, preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, settings.DefaultDuration)
	assert.True(t, settings.Notifications, "absent key keeps the default")

	require.NoError(t, os.WriteFile(path, []byte("default_seconds: 999999\n"), 0o644))
	settings, err = LoadSettingsFrom(path, preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, settings.DefaultDuration)

	require.NoError(t, os.WriteFile(path, []byte("default_seconds: 36028797018963998\n"), 0o644))
	settings, err = LoadSettingsFrom(path, preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, settings.DefaultDuration)
}

func TestLoadSettingsFrom_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_seconds: [1, 2\n"), 0o644))

	settings, err := LoadSettingsFrom(path, preferences.DefaultSettings())

	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoadSettings_ZeroDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	saved := preferences.DefaultSettings()
	saved.DefaultDuration = 0

	require.NoError(t, SaveSettingsTo(path, saved))
	loaded, err := LoadSettingsFrom(path, preferences.DefaultSettings())

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), loaded.DefaultDuration)
}
