package tray

import (
	"fmt"

	"github.com/LISDEAD/beep/internal/core/countdown"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggle      func()
	OnReset       func()
	OnShow        func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	resetItem  *fyne.MenuItem
	callbacks  Callbacks
	snapshot   countdown.Snapshot
}

// New creates a tray manager with the provided callbacks. app may be nil when the
// platform has no system tray; the manager then only tracks state.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		snapshot:  countdown.Snapshot{Phase: countdown.PhaseIdle},
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggle != nil {
			manager.callbacks.OnToggle()
		}
	})

	manager.resetItem = fyne.NewMenuItem("Reset", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})

	manager.refreshMenu()
	return manager
}

// SetSnapshot updates the status line and the Start/Pause item.
func (manager *Manager) SetSnapshot(snapshot countdown.Snapshot) {
	manager.snapshot = snapshot
	manager.statusItem.Label = StatusLine(snapshot)
	manager.toggleItem.Label = ToggleLabel(snapshot.Phase)
	manager.resetItem.Disabled = snapshot.Phase == countdown.PhaseIdle && snapshot.Remaining == snapshot.Total
	manager.refreshMenu()
}

// Snapshot returns the state last shown in the menu.
func (manager *Manager) Snapshot() countdown.Snapshot {
	return manager.snapshot
}

// StatusLine renders the disabled first menu entry.
func StatusLine(snapshot countdown.Snapshot) string {
	switch snapshot.Phase {
	case countdown.PhaseRunning:
		return fmt.Sprintf("Status: %s left", snapshot.Label())
	case countdown.PhasePaused:
		return fmt.Sprintf("Status: %s (paused)", snapshot.Label())
	case countdown.PhaseCompleted:
		return "Status: time is up"
	default:
		return fmt.Sprintf("Status: ready, %s", snapshot.Label())
	}
}

// ToggleLabel names the action the Start/Pause item performs in the given phase.
func ToggleLabel(phase countdown.Phase) string {
	switch phase {
	case countdown.PhaseRunning:
		return "Pause"
	case countdown.PhasePaused:
		return "Resume"
	default:
		return "Start"
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Beep",
		manager.statusItem,
		manager.toggleItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShow != nil {
				manager.callbacks.OnShow()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
