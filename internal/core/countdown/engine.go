package countdown

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/rs/zerolog"
)

const notifyTimeout = 10 * time.Second

// Publisher receives engine signals. Publish is called while the engine holds
// its state guard, so it must not block and must not call back into the engine.
type Publisher interface {
	Publish(event Event)
}

// Notifier delivers the completion notification to the user.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Options contains collaborators for the Engine.
type Options struct {
	Publisher Publisher
	Notifier  Notifier
	Logger    zerolog.Logger
}

type taskHandle struct {
	generation uint64
	cancel     context.CancelFunc
}

// Engine is the countdown state machine. It owns the timer state and the
// background tick task.
type Engine struct {
	guard        guard
	tickInterval time.Duration
	notification model.NotificationConfig
	publisher    Publisher
	notifier     Notifier
	log          zerolog.Logger

	total      int
	remaining  int
	phase      Phase
	handle     *taskHandle
	generation uint64

	pending sync.WaitGroup
	spawned atomic.Int64
	active  atomic.Int64
}

// New creates an idle Engine loaded with the configured duration.
func New(config model.TimerConfig, options Options) *Engine {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	publisher := options.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}

	seconds := config.Seconds()
	return &Engine{
		tickInterval: config.TickInterval,
		notification: config.Notification,
		publisher:    publisher,
		notifier:     options.Notifier,
		log:          options.Logger.With().Str("component", "countdown").Logger(),
		total:        seconds,
		remaining:    seconds,
		phase:        PhaseIdle,
	}
}

// Start begins or resumes the countdown. Starting a running timer, or one with
// nothing left to count, changes nothing.
func (engine *Engine) Start() error {
	var (
		ctx  context.Context
		task *taskHandle
	)
	err := engine.guard.do(func() {
		if engine.phase == PhaseRunning || engine.remaining <= 0 {
			return
		}
		ctx, task = engine.newHandleLocked()
		engine.phase = PhaseRunning
		engine.publishLocked(EventPhase)
	})
	if err != nil {
		return fmt.Errorf("start countdown: %w", err)
	}
	if task == nil {
		return nil
	}

	engine.spawned.Add(1)
	engine.log.Debug().Uint64("generation", task.generation).Msg("tick task spawned")
	go engine.run(ctx, task.generation)
	return nil
}

// Pause freezes a running countdown.
func (engine *Engine) Pause() error {
	err := engine.guard.do(func() {
		if engine.phase != PhaseRunning {
			return
		}
		engine.cancelLocked()
		engine.phase = PhasePaused
		engine.publishLocked(EventPhase)
	})
	if err != nil {
		return fmt.Errorf("pause countdown: %w", err)
	}
	return nil
}

// Reset stops any countdown and restores the full duration.
func (engine *Engine) Reset() error {
	err := engine.guard.do(func() {
		engine.cancelLocked()
		engine.remaining = engine.total
		engine.phase = PhaseIdle
		engine.publishLocked(EventUpdate)
	})
	if err != nil {
		return fmt.Errorf("reset countdown: %w", err)
	}
	return nil
}

// Configure replaces the total duration and returns the timer to idle.
func (engine *Engine) Configure(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("configure %d seconds: %w", seconds, ErrInvalidConfiguration)
	}
	err := engine.guard.do(func() {
		engine.cancelLocked()
		engine.total = seconds
		engine.remaining = seconds
		engine.phase = PhaseIdle
		engine.publishLocked(EventUpdate)
	})
	if err != nil {
		return fmt.Errorf("configure countdown: %w", err)
	}
	return nil
}

// Snapshot returns the current state.
func (engine *Engine) Snapshot() (Snapshot, error) {
	var snapshot Snapshot
	err := engine.guard.do(func() {
		snapshot = engine.snapshotLocked()
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("read countdown: %w", err)
	}
	return snapshot, nil
}

// Close stops the tick task at shutdown. A running countdown is left paused.
func (engine *Engine) Close() error {
	return engine.Pause()
}

func (engine *Engine) run(ctx context.Context, generation uint64) {
	engine.active.Add(1)
	defer engine.active.Add(-1)

	ticker := time.NewTicker(engine.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := engine.tick(generation)
			if err != nil {
				engine.log.Error().Err(err).Uint64("generation", generation).Msg("tick task stopped")
				return
			}
			if done {
				return
			}
		}
	}
}

// tick applies one advancement. It reports whether the task should exit.
func (engine *Engine) tick(generation uint64) (bool, error) {
	var stale, completed, notify bool
	err := engine.guard.do(func() {
		if engine.phase != PhaseRunning || engine.handle == nil || engine.handle.generation != generation {
			stale = true
			return
		}
		if engine.remaining > 0 {
			engine.remaining--
			engine.publishLocked(EventUpdate)
		}
		if engine.remaining == 0 {
			engine.cancelLocked()
			engine.phase = PhaseCompleted
			if engine.notifier != nil && engine.notification.Enabled {
				engine.pending.Add(1)
				notify = true
			}
			engine.publishLocked(EventCompleted)
			completed = true
		}
	})
	if err != nil {
		return true, err
	}
	if completed {
		engine.log.Info().Msg("countdown completed")
	}
	if notify {
		engine.notifyCompletion()
	}
	return stale || completed, nil
}

// WaitNotifications blocks until in-flight completion notifications have been
// handed to the notifier, or ctx is done.
func (engine *Engine) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		engine.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notifyCompletion must be paired with a pending.Add made under the guard.
func (engine *Engine) notifyCompletion() {
	title := engine.notification.Title
	body := engine.notification.Body

	go func() {
		defer engine.pending.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				engine.log.Error().Interface("panic", recovered).Msg("completion notifier panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := engine.notifier.Notify(ctx, title, body); err != nil {
			engine.log.Warn().Err(err).Msg("completion notification not delivered")
		}
	}()
}

func (engine *Engine) newHandleLocked() (context.Context, *taskHandle) {
	engine.generation++
	ctx, cancel := context.WithCancel(context.Background())
	engine.handle = &taskHandle{
		generation: engine.generation,
		cancel:     cancel,
	}
	return ctx, engine.handle
}

func (engine *Engine) cancelLocked() {
	if engine.handle == nil {
		return
	}
	engine.handle.cancel()
	engine.handle = nil
}

func (engine *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Total:     engine.total,
		Remaining: engine.remaining,
		Phase:     engine.phase,
	}
}

func (engine *Engine) publishLocked(eventType EventType) {
	engine.publisher.Publish(Event{
		Type:      eventType,
		Phase:     engine.phase,
		Remaining: engine.remaining,
		Total:     engine.total,
		At:        time.Now(),
	})
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
