package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/LISDEAD/beep/internal/api"
	"github.com/LISDEAD/beep/internal/config"
	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/metrics"
	"github.com/rs/zerolog"
)

const metricsBuffer = 64

// App wires the countdown engine to its observers: the bridge, metrics and the HTTP API.
type App struct {
	log     zerolog.Logger
	hub     *bridge.Bridge
	engine  *countdown.Engine
	metrics *metrics.Metrics
	server  *api.Server
}

// NewApp builds the application core. Nothing runs until Start.
func NewApp(cfg *config.Config, timer model.TimerConfig, notifier countdown.Notifier, log zerolog.Logger) *App {
	hub := bridge.New(log)
	engine := countdown.New(timer, countdown.Options{
		Publisher: hub,
		Notifier:  notifier,
		Logger:    log,
	})

	application := &App{
		log:    log.With().Str("component", "app").Logger(),
		hub:    hub,
		engine: engine,
	}

	var controller bridge.Controller = engine
	if cfg.Metrics.Enabled {
		application.metrics = metrics.New(hub)
		controller = metrics.Instrument(engine, application.metrics)
		if snapshot, err := engine.Snapshot(); err == nil {
			application.metrics.ObserveSnapshot(snapshot)
		}
	}
	hub.Bind(controller)

	if cfg.API.Enabled {
		application.server = api.NewServer(cfg.API, log)
		application.server.RegisterTimerRoutes(hub)
		if application.metrics != nil {
			application.server.Mount(cfg.Metrics.Path, application.metrics.Handler())
		}
	}

	return application
}

// Start launches the metrics collector and the HTTP API until ctx is done.
func (application *App) Start(ctx context.Context) {
	if application.metrics != nil {
		go application.metrics.Run(ctx, application.hub.Subscribe(metricsBuffer))
	}
	if application.server != nil {
		go func() {
			if err := application.server.Start(ctx); err != nil {
				application.log.Error().Err(err).Msg("HTTP API server failed")
			}
		}()
	}
}

// Close stops the countdown and closes every subscription.
func (application *App) Close() {
	if err := application.engine.Close(); err != nil {
		application.log.Warn().Err(err).Msg("engine close failed")
	}
	application.hub.Close()
}

// gatedNotifier lets the preferences window switch notifications on and off
// while the engine is running.
type gatedNotifier struct {
	next    countdown.Notifier
	enabled atomic.Bool
}

func newGatedNotifier(next countdown.Notifier, enabled bool) *gatedNotifier {
	notifier := &gatedNotifier{next: next}
	notifier.enabled.Store(enabled)
	return notifier
}

func (notifier *gatedNotifier) SetEnabled(enabled bool) {
	notifier.enabled.Store(enabled)
}

func (notifier *gatedNotifier) Notify(ctx context.Context, title, body string) error {
	if !notifier.enabled.Load() {
		return nil
	}
	return notifier.next.Notify(ctx, title, body)
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
