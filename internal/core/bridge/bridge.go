// Package bridge connects the countdown engine to its observers. Engine signals
// fan out to subscribers without blocking the tick task, and subscriber commands
// are relayed back to the engine through the Controller interface.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotBound indicates a command arrived before an engine was attached.
var ErrNotBound = errors.New("bridge not bound to a timer")

// Controller is the command surface of the countdown engine.
type Controller interface {
	Start() error
	Pause() error
	Reset() error
	Configure(seconds int) error
	Snapshot() (countdown.Snapshot, error)
}

// Bridge is a publish/subscribe hub between the engine and its observers.
type Bridge struct {
	mu          sync.RWMutex
	controller  Controller
	subscribers map[uuid.UUID]*Subscription
	closed      bool
	dropped     atomic.Uint64
	log         zerolog.Logger
}

// New creates an unbound Bridge.
func New(logger zerolog.Logger) *Bridge {
	return &Bridge{
		subscribers: make(map[uuid.UUID]*Subscription),
		log:         logger.With().Str("component", "bridge").Logger(),
	}
}

// Bind attaches the engine that receives relayed commands.
func (bridge *Bridge) Bind(controller Controller) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.controller = controller
}

// Subscribe registers a new observer with the given channel buffer.
func (bridge *Bridge) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 1
	}
	subscription := &Subscription{
		id:     uuid.New(),
		ch:     make(chan countdown.Event, buffer),
		bridge: bridge,
	}

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.closed {
		close(subscription.ch)
		return subscription
	}
	bridge.subscribers[subscription.id] = subscription
	bridge.log.Debug().Str("subscription", subscription.id.String()).Int("buffer", buffer).Msg("observer attached")
	return subscription
}

// Publish delivers an event to every subscriber without blocking. A subscriber
// whose buffer is full loses its oldest queued event.
func (bridge *Bridge) Publish(event countdown.Event) {
	bridge.mu.RLock()
	defer bridge.mu.RUnlock()

	for _, subscription := range bridge.subscribers {
		if !subscription.deliver(event) {
			bridge.dropped.Add(1)
		}
	}
}

// Snapshot returns the engine's current state for a newly attached observer.
func (bridge *Bridge) Snapshot() (countdown.Snapshot, error) {
	controller, err := bridge.bound()
	if err != nil {
		return countdown.Snapshot{}, err
	}
	return controller.Snapshot()
}

// Start relays a start command.
func (bridge *Bridge) Start() error {
	controller, err := bridge.bound()
	if err != nil {
		return err
	}
	return controller.Start()
}

// Pause relays a pause command.
func (bridge *Bridge) Pause() error {
	controller, err := bridge.bound()
	if err != nil {
		return err
	}
	return controller.Pause()
}

// Reset relays a reset command.
func (bridge *Bridge) Reset() error {
	controller, err := bridge.bound()
	if err != nil {
		return err
	}
	return controller.Reset()
}

// Configure relays a new duration. Negative values never reach the engine.
func (bridge *Bridge) Configure(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("configure %d seconds: %w", seconds, countdown.ErrInvalidConfiguration)
	}
	controller, err := bridge.bound()
	if err != nil {
		return err
	}
	return controller.Configure(seconds)
}

// Subscribers returns the number of attached observers.
func (bridge *Bridge) Subscribers() int {
	bridge.mu.RLock()
	defer bridge.mu.RUnlock()
	return len(bridge.subscribers)
}

// Dropped returns how many events were discarded for slow observers.
func (bridge *Bridge) Dropped() uint64 {
	return bridge.dropped.Load()
}

// Close detaches and closes every subscription. Later subscriptions are closed
// immediately.
func (bridge *Bridge) Close() {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.closed {
		return
	}
	bridge.closed = true
	for id, subscription := range bridge.subscribers {
		close(subscription.ch)
		delete(bridge.subscribers, id)
	}
}

func (bridge *Bridge) bound() (Controller, error) {
	bridge.mu.RLock()
	defer bridge.mu.RUnlock()
	if bridge.controller == nil {
		return nil, ErrNotBound
	}
	return bridge.controller, nil
}

func (bridge *Bridge) remove(subscription *Subscription) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if _, ok := bridge.subscribers[subscription.id]; !ok {
		return
	}
	delete(bridge.subscribers, subscription.id)
	close(subscription.ch)
	bridge.log.Debug().Str("subscription", subscription.id.String()).Msg("observer detached")
}
