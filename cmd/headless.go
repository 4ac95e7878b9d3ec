package main

import (
	"context"
	"time"

	"github.com/LISDEAD/beep/internal/core/countdown"
)

const (
	headlessBuffer = 16
	notifyGrace    = 15 * time.Second
)

// runHeadless starts the countdown at once, logs every update and returns after
// completion or when ctx is done.
func runHeadless(ctx context.Context, application *App) error {
	log := application.log.With().Str("mode", "headless").Logger()

	subscription := application.hub.Subscribe(headlessBuffer)
	defer subscription.Unsubscribe()
	application.Start(ctx)

	if err := application.hub.Start(); err != nil {
		return err
	}
	snapshot, err := application.hub.Snapshot()
	if err != nil {
		return err
	}
	if snapshot.Phase != countdown.PhaseRunning {
		log.Warn().Int("seconds", snapshot.Remaining).Msg("nothing to count down")
		return nil
	}
	log.Info().Int("seconds", snapshot.Total).Str("duration", snapshot.Label()).Msg("countdown started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("remaining", snapshot.Remaining).Msg("countdown interrupted")
			return nil
		case event, ok := <-subscription.Events():
			if !ok {
				return nil
			}
			snapshot = event.Snapshot()
			switch event.Type {
			case countdown.EventUpdate:
				log.Info().Int("remaining", event.Remaining).Str("label", snapshot.Label()).Msg("tick")
			case countdown.EventCompleted:
				log.Info().Msg("time is up")
				waitCtx, cancel := context.WithTimeout(context.Background(), notifyGrace)
				err := application.engine.WaitNotifications(waitCtx)
				cancel()
				if err != nil {
					log.Warn().Err(err).Msg("gave up waiting for the completion notification")
				}
				return nil
			}
		}
	}
}
