package preferences

import (
	"time"

	"github.com/LISDEAD/beep/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	DefaultDuration time.Duration
	Notifications   bool
	StartMinimized  bool
}

// DefaultSettings returns default settings for Beep.
func DefaultSettings() Settings {
	return Settings{
		DefaultDuration: model.DefaultDuration,
		Notifications:   true,
		StartMinimized:  false,
	}
}

// FromTimerConfig seeds settings from the application configuration.
func FromTimerConfig(config model.TimerConfig) Settings {
	settings := DefaultSettings()
	if config.Duration >= 0 {
		settings.DefaultDuration = config.Duration
	}
	settings.Notifications = config.Notification.Enabled
	return settings
}

// Apply overlays the settings onto a timer configuration.
func (settings Settings) Apply(config model.TimerConfig) model.TimerConfig {
	config.Duration = settings.DefaultDuration
	config.Notification.Enabled = settings.Notifications
	return config
}
