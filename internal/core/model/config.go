package model

import "time"

// DefaultDuration is the countdown length used when nothing else is configured.
const DefaultDuration = 60 * time.Second

// NotificationConfig defines what is shown when a countdown completes.
type NotificationConfig struct {
	Enabled bool
	Title   string
	Body    string
}

// TimerConfig contains runtime settings for the countdown engine.
type TimerConfig struct {
	Duration     time.Duration
	TickInterval time.Duration
	Notification NotificationConfig
}

// DefaultNotification returns the completion message.
func DefaultNotification() NotificationConfig {
	return NotificationConfig{
		Enabled: true,
		Title:   "Countdown finished",
		Body:    "The time you set is up!",
	}
}

// Seconds returns the configured duration as whole seconds, never negative.
func (config TimerConfig) Seconds() int {
	if config.Duration <= 0 {
		return 0
	}
	return int(config.Duration / time.Second)
}
