package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/LISDEAD/beep/internal/config"
	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/logging"
	"github.com/LISDEAD/beep/internal/platform"
	"github.com/LISDEAD/beep/internal/storage"
	"github.com/LISDEAD/beep/internal/ui/preferences"
	"github.com/spf13/cobra"
)

const (
	appName = "Beep"
	appID   = "io.github.lisdead.beep"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type runOptions struct {
	configFile string
	headless   bool
	duration   *int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	options := &runOptions{}

	rootCmd := &cobra.Command{
		Use:           "beep",
		Short:         "Desktop countdown timer",
		Long:          "Beep counts down from a chosen duration and notifies you when the time is up.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, options)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&options.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")

	rootCmd.Flags().String("duration", "", "countdown duration: seconds, mm:ss or a Go duration such as 2m")
	rootCmd.Flags().BoolVar(&options.headless, "headless", false, "run without a window: start at once and exit when the time is up")
	rootCmd.Flags().String("api-addr", "", "enable the local HTTP API on this address")
	rootCmd.Flags().Bool("metrics", false, "expose prometheus metrics on the HTTP API")

	return rootCmd
}

func runApp(cmd *cobra.Command, options *runOptions) error {
	cfg, err := config.Load(options.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg, options); err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("version", Version).
		Str("git_commit", GitCommit).
		Str("go_version", runtime.Version()).
		Msg("Build information")

	log.Info().
		Str("config_file", options.configFile).
		Int("default_seconds", cfg.Timer.DefaultSeconds).
		Bool("api_enabled", cfg.API.Enabled).
		Str("api_addr", cfg.API.ListenAddr).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Bool("headless", options.headless).
		Msg("Configuration loaded")

	if cfg.Metrics.Enabled && !cfg.API.Enabled {
		log.Warn().Msg("metrics are enabled but the HTTP API is not, nothing will serve them")
	}

	ctx := cmd.Context()
	lock, err := platform.AcquireInstanceLock(ctx, appName)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	defaults := preferences.FromTimerConfig(cfg.TimerConfig())
	settings, err := storage.LoadSettings(appName, defaults)
	if err != nil {
		log.Warn().Err(err).Msg("preferences not loaded, using defaults")
		settings = defaults
	}
	timer := timerConfig(cfg, settings, options)

	if options.headless {
		application := NewApp(cfg, timer, platform.NewNotifier(appName), log)
		defer application.Close()
		return runHeadless(ctx, application)
	}
	return runGUI(ctx, cfg, settings, timer, log)
}

// applyFlags overrides configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config, options *runOptions) error {
	if cmd.Flag("log-level").Changed {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flag("log-pretty").Changed {
		cfg.Log.Pretty, _ = cmd.Flags().GetBool("log-pretty")
	}
	if cmd.Flag("api-addr").Changed {
		cfg.API.ListenAddr, _ = cmd.Flags().GetString("api-addr")
		cfg.API.Enabled = true
	}
	if cmd.Flag("metrics").Changed {
		cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
	}
	if cmd.Flag("duration").Changed {
		text, _ := cmd.Flags().GetString("duration")
		seconds, err := model.ParseSeconds(text)
		if err != nil {
			return fmt.Errorf("--duration: %w", err)
		}
		options.duration = &seconds
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// timerConfig merges the configuration file, saved preferences and the
// --duration flag, later sources winning.
func timerConfig(cfg *config.Config, settings preferences.Settings, options *runOptions) model.TimerConfig {
	timer := settings.Apply(cfg.TimerConfig())
	if options.duration != nil {
		timer.Duration = secondsToDuration(*options.duration)
	}
	return timer
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "Beep\n")
	fmt.Fprintf(out, "Version:    %s\n", Version)
	fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
