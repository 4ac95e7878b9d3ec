package main

import (
	"context"

	"github.com/LISDEAD/beep/internal/config"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/storage"
	"github.com/LISDEAD/beep/internal/ui/animation"
	"github.com/LISDEAD/beep/internal/ui/preferences"
	"github.com/LISDEAD/beep/internal/ui/timerview"
	"github.com/LISDEAD/beep/internal/ui/tray"
	"github.com/LISDEAD/beep/resources"
	"github.com/rs/zerolog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const viewBuffer = 32

func runGUI(ctx context.Context, cfg *config.Config, settings preferences.Settings, timer model.TimerConfig, log zerolog.Logger) error {
	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconApp))

	// The engine always asks for a notification; the gate follows the preferences.
	notifier := newGatedNotifier(timerview.NewNotifier(fyneApp), settings.Notifications)
	timer.Notification.Enabled = true

	application := NewApp(cfg, timer, notifier, log)
	defer application.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	application.Start(ctx)

	desktopApp, hasTray := fyneApp.(desktop.App)
	view := timerview.New(fyneApp, application.hub, timerview.Config{
		HideOnClose: hasTray,
		Animation:   animation.DefaultConfig(),
	}, log)

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) error {
		if err := storage.SaveSettings(appName, updated); err != nil {
			log.Error().Err(err).Msg("preferences not saved")
			return err
		}
		notifier.SetEnabled(updated.Notifications)

		// A new default only replaces a countdown that has not been touched.
		current := view.Snapshot()
		if current.Phase == countdown.PhaseIdle && current.Remaining == current.Total {
			if err := application.hub.Configure(int(updated.DefaultDuration.Seconds())); err != nil {
				return err
			}
		}
		log.Info().Dur("default_duration", updated.DefaultDuration).Bool("notifications", updated.Notifications).Msg("preferences saved")
		return nil
	})

	if hasTray {
		var trayManager *tray.Manager
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnToggle: func() {
				var err error
				if trayManager.Snapshot().Phase == countdown.PhaseRunning {
					err = application.hub.Pause()
				} else {
					err = application.hub.Start()
				}
				if err != nil {
					log.Warn().Err(err).Msg("tray command failed")
				}
			},
			OnReset: func() {
				if err := application.hub.Reset(); err != nil {
					log.Warn().Err(err).Msg("tray command failed")
				}
			},
			OnShow:        view.Show,
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(resources.MustIcon(resources.IconApp))
		view.OnSnapshot(func(snapshot countdown.Snapshot) {
			trayManager.SetSnapshot(snapshot)
			desktopApp.SetSystemTrayIcon(trayIcon(snapshot.Phase))
		})
	}

	go view.Run(ctx, application.hub.Subscribe(viewBuffer))
	view.Sync()

	if !settings.StartMinimized || !hasTray {
		view.Show()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(fyneApp.Quit)
		case <-done:
		}
	}()

	fyneApp.Run()
	close(done)
	return nil
}

func trayIcon(phase countdown.Phase) fyne.Resource {
	switch phase {
	case countdown.PhaseRunning:
		return resources.MustIcon(resources.IconRunning)
	case countdown.PhasePaused:
		return resources.MustIcon(resources.IconPaused)
	default:
		return resources.MustIcon(resources.IconApp)
	}
}
