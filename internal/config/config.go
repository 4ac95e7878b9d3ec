package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BEEP_TIMER_DEFAULT_SECONDS.
const EnvPrefix = "BEEP"

// Config holds the complete application configuration.
type Config struct {
	Timer        TimerConfig        `mapstructure:"timer"        yaml:"timer"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
	Log          LogConfig          `mapstructure:"log"          yaml:"log"`
	API          APIConfig          `mapstructure:"api"          yaml:"api"`
	Metrics      MetricsConfig      `mapstructure:"metrics"      yaml:"metrics"`
}

// TimerConfig holds countdown settings.
type TimerConfig struct {
	DefaultSeconds int           `mapstructure:"default_seconds" yaml:"default_seconds"`
	TickInterval   time.Duration `mapstructure:"tick_interval"   yaml:"tick_interval"`
}

// NotificationConfig holds the completion notification settings.
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Title   string `mapstructure:"title"   yaml:"title"`
	Body    string `mapstructure:"body"    yaml:"body"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// APIConfig holds the local control API configuration.
type APIConfig struct {
	Enabled           bool          `mapstructure:"enabled"             yaml:"enabled"`
	ListenAddr        string        `mapstructure:"listen_addr"         yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        yaml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        yaml:"idle_timeout"`
}

// MetricsConfig holds metrics configuration. Metrics are served by the API server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// Load reads configuration from the optional YAML file and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	notification := model.DefaultNotification()

	v.SetDefault("timer.default_seconds", int(model.DefaultDuration/time.Second))
	v.SetDefault("timer.tick_interval", "1s")

	v.SetDefault("notification.enabled", notification.Enabled)
	v.SetDefault("notification.title", notification.Title)
	v.SetDefault("notification.body", notification.Body)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.listen_addr", "127.0.0.1:7361")
	v.SetDefault("api.read_header_timeout", "5s")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for values the application cannot run with.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Timer.DefaultSeconds < 0 {
		errs = append(errs, fmt.Errorf("timer.default_seconds must not be negative, got %d", cfg.Timer.DefaultSeconds))
	}
	if cfg.Timer.DefaultSeconds > model.MaxSeconds {
		errs = append(errs, fmt.Errorf("timer.default_seconds must be at most %d, got %d", model.MaxSeconds, cfg.Timer.DefaultSeconds))
	}
	if cfg.Timer.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("timer.tick_interval must be positive, got %s", cfg.Timer.TickInterval))
	}
	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	if cfg.API.Enabled && strings.TrimSpace(cfg.API.ListenAddr) == "" {
		errs = append(errs, errors.New("api.listen_addr is required when the api is enabled"))
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", cfg.Metrics.Path))
	}

	return errors.Join(errs...)
}

// TimerConfig converts the configuration for the countdown engine.
func (cfg *Config) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		Duration:     time.Duration(cfg.Timer.DefaultSeconds) * time.Second,
		TickInterval: cfg.Timer.TickInterval,
		Notification: model.NotificationConfig{
			Enabled: cfg.Notification.Enabled,
			Title:   cfg.Notification.Title,
			Body:    cfg.Notification.Body,
		},
	}
}
