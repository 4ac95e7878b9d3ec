package countdown

import (
	"fmt"
	"time"
)

// Phase represents the lifecycle state of the countdown.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
)

// EventType defines the type of engine signal.
type EventType string

const (
	// EventUpdate carries a new remaining value: a tick, a reset or a configure.
	EventUpdate EventType = "update"
	// EventPhase reports a start or pause without a change of remaining time.
	EventPhase     EventType = "phase"
	EventCompleted EventType = "completed"
)

// Event represents an engine signal for observers.
type Event struct {
	Type      EventType
	Phase     Phase
	Remaining int
	Total     int
	At        time.Time
}

// Snapshot is a read-only copy of the timer state.
type Snapshot struct {
	Total     int   `json:"total"`
	Remaining int   `json:"remaining"`
	Phase     Phase `json:"phase"`
}

// Progress returns the elapsed fraction of the countdown in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.Total <= 0 {
		return 0
	}
	progress := float64(snapshot.Total-snapshot.Remaining) / float64(snapshot.Total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// RingOffset returns the stroke offset of a progress ring with the given circumference.
// An empty ring (offset equal to circumference) means the countdown is over.
func (snapshot Snapshot) RingOffset(circumference float64) float64 {
	if snapshot.Total <= 0 {
		return 0
	}
	return circumference * (1 - float64(snapshot.Remaining)/float64(snapshot.Total))
}

// Label formats the remaining time as mm:ss.
func (snapshot Snapshot) Label() string {
	return FormatSeconds(snapshot.Remaining)
}

// Snapshot returns the state carried by the event.
func (event Event) Snapshot() Snapshot {
	return Snapshot{
		Total:     event.Total,
		Remaining: event.Remaining,
		Phase:     event.Phase,
	}
}

// FormatSeconds renders whole seconds as mm:ss, or h:mm:ss past one hour.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
