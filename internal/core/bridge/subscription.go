package bridge

import (
	"sync"

	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/google/uuid"
)

// Subscription is one observer's view of the engine signals.
type Subscription struct {
	id     uuid.UUID
	ch     chan countdown.Event
	bridge *Bridge
	once   sync.Once
}

// ID returns the subscription identifier.
func (subscription *Subscription) ID() string {
	return subscription.id.String()
}

// Events returns the channel of engine signals. It is closed on Unsubscribe or
// when the bridge closes.
func (subscription *Subscription) Events() <-chan countdown.Event {
	return subscription.ch
}

// Unsubscribe detaches the observer. Safe to call more than once and while an
// event is being published.
func (subscription *Subscription) Unsubscribe() {
	subscription.once.Do(func() {
		subscription.bridge.remove(subscription)
	})
}

// deliver enqueues without blocking, discarding the oldest queued event when
// the buffer is full. It reports false when an event was lost.
func (subscription *Subscription) deliver(event countdown.Event) bool {
	select {
	case subscription.ch <- event:
		return true
	default:
	}

	select {
	case <-subscription.ch:
	default:
	}

	select {
	case subscription.ch <- event:
	default:
	}
	return false
}
