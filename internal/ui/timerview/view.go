package timerview

import (
	"context"
	"sync/atomic"

	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/ui/animation"
	"github.com/rs/zerolog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Config defines window behaviour.
type Config struct {
	// HideOnClose keeps the application alive in the tray when the window is closed.
	HideOnClose bool
	Animation   animation.Config
}

// View is the countdown window: progress ring, time label, controls and duration input.
type View struct {
	app        fyne.App
	window     fyne.Window
	controller bridge.Controller
	log        zerolog.Logger

	ring         *Ring
	timeLabel    *canvas.Text
	phaseLabel   *canvas.Text
	entry        *widget.Entry
	errorLabel   *widget.Label
	toggleButton *widget.Button
	resetButton  *widget.Button
	setButton    *widget.Button

	animator   *animation.Engine
	frameGen   atomic.Uint64
	snapshot   countdown.Snapshot
	onSnapshot []func(countdown.Snapshot)
}

// New creates the countdown window. It is not shown until Show is called.
func New(app fyne.App, controller bridge.Controller, config Config, log zerolog.Logger) *View {
	window := app.NewWindow("Beep")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	view := &View{
		app:        app,
		window:     window,
		controller: controller,
		log:        log.With().Str("component", "timer-view").Logger(),
		ring:       newRing(),
	}
	view.animator = animation.New(config.Animation, view.applyFrame)

	view.timeLabel = canvas.NewText("--:--", remainColor)
	view.timeLabel.Alignment = fyne.TextAlignCenter
	view.timeLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.timeLabel.TextSize = 34

	view.phaseLabel = canvas.NewText("", theme.Color(theme.ColorNameForeground))
	view.phaseLabel.Alignment = fyne.TextAlignCenter
	view.phaseLabel.TextSize = 13

	view.entry = widget.NewEntry()
	view.entry.SetPlaceHolder("seconds, 1:30 or 2m")
	view.entry.Validator = func(text string) error {
		_, err := model.ParseSeconds(text)
		return err
	}
	view.entry.OnSubmitted = func(string) { view.configure() }

	view.errorLabel = widget.NewLabel("")
	view.errorLabel.Importance = widget.DangerImportance
	view.errorLabel.Wrapping = fyne.TextWrapWord
	view.errorLabel.Hide()

	view.toggleButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), view.toggle)
	view.toggleButton.Importance = widget.HighImportance
	view.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), view.reset)
	view.setButton = widget.NewButton("Set", view.configure)

	dial := container.New(&ringLayout{},
		view.ring.raster,
		container.NewVBox(view.timeLabel, view.phaseLabel),
	)
	controls := container.NewGridWithColumns(2, view.toggleButton, view.resetButton)
	input := container.NewBorder(nil, nil, widget.NewLabel("Duration"), view.setButton, view.entry)

	window.SetContent(container.NewBorder(nil,
		container.NewVBox(controls, input, view.errorLabel),
		nil, nil,
		dial,
	))
	window.Resize(fyne.NewSize(320, 420))

	if config.HideOnClose {
		window.SetCloseIntercept(window.Hide)
	}

	return view
}

// Window returns the underlying fyne window.
func (view *View) Window() fyne.Window {
	return view.window
}

// Show brings the window to the front.
func (view *View) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// OnSnapshot registers fn to be called on the UI goroutine after every render.
func (view *View) OnSnapshot(fn func(countdown.Snapshot)) {
	view.onSnapshot = append(view.onSnapshot, fn)
}

// Sync renders the controller's current state.
func (view *View) Sync() {
	snapshot, err := view.controller.Snapshot()
	if err != nil {
		view.showError(err)
		return
	}
	view.Render(snapshot)
	view.entry.SetText(countdown.FormatSeconds(snapshot.Total))
}

// Run renders every event from subscription until ctx is done or the
// subscription is closed. Rendering happens on the fyne main goroutine.
func (view *View) Run(ctx context.Context, subscription *bridge.Subscription) {
	defer subscription.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-subscription.Events():
			if !ok {
				return
			}
			snapshot := event.Snapshot()
			fyne.Do(func() {
				view.Render(snapshot)
			})
		}
	}
}

// Render updates every widget from snapshot. Must run on the UI goroutine.
func (view *View) Render(snapshot countdown.Snapshot) {
	previous := view.snapshot
	view.snapshot = snapshot

	view.timeLabel.Text = snapshot.Label()
	view.timeLabel.Refresh()
	view.phaseLabel.Text = phaseText(snapshot.Phase)
	view.phaseLabel.Refresh()
	view.ring.SetSnapshot(snapshot)

	switch snapshot.Phase {
	case countdown.PhaseRunning:
		view.toggleButton.SetText("Pause")
		view.toggleButton.SetIcon(theme.MediaPauseIcon())
	case countdown.PhasePaused:
		view.toggleButton.SetText("Resume")
		view.toggleButton.SetIcon(theme.MediaPlayIcon())
	default:
		view.toggleButton.SetText("Start")
		view.toggleButton.SetIcon(theme.MediaPlayIcon())
	}
	if snapshot.Phase == countdown.PhaseCompleted || snapshot.Remaining == 0 {
		view.toggleButton.Disable()
	} else {
		view.toggleButton.Enable()
	}

	if snapshot.Phase != previous.Phase {
		view.animate(snapshot.Phase)
	}

	for _, fn := range view.onSnapshot {
		fn(snapshot)
	}
}

// Snapshot returns the state last rendered.
func (view *View) Snapshot() countdown.Snapshot {
	return view.snapshot
}

// animate switches the ring animation for phase. Frames still queued from the
// previous sequence are dropped.
func (view *View) animate(phase countdown.Phase) {
	view.animator.Stop()
	view.frameGen.Add(1)

	switch phase {
	case countdown.PhaseCompleted:
		view.animator.StartFlash(context.Background())
	case countdown.PhasePaused:
		view.animator.StartPulse(context.Background())
	default:
		view.setFrame(animation.FrameNormal)
	}
}

func (view *View) applyFrame(frame animation.Frame) {
	generation := view.frameGen.Load()
	fyne.Do(func() {
		view.showFrame(generation, frame)
	})
}

// showFrame applies frame if it belongs to the current animation.
func (view *View) showFrame(generation uint64, frame animation.Frame) {
	if generation != view.frameGen.Load() {
		return
	}
	view.setFrame(frame)
}

func (view *View) setFrame(frame animation.Frame) {
	view.ring.SetFrame(frame)
	switch frame {
	case animation.FrameLit:
		view.timeLabel.Color = litColor
	case animation.FrameDim:
		view.timeLabel.Color = dimColor
	default:
		view.timeLabel.Color = remainColor
	}
	view.timeLabel.Refresh()
}

func (view *View) toggle() {
	command := view.controller.Start
	if view.snapshot.Phase == countdown.PhaseRunning {
		command = view.controller.Pause
	}
	view.run(command)
}

func (view *View) reset() {
	view.run(view.controller.Reset)
}

func (view *View) configure() {
	seconds, err := model.ParseSeconds(view.entry.Text)
	if err != nil {
		view.showError(err)
		return
	}
	view.run(func() error {
		return view.controller.Configure(seconds)
	})
}

// run executes a command and renders the resulting state without waiting for
// the event to arrive through the bridge.
func (view *View) run(command func() error) {
	if err := command(); err != nil {
		view.log.Warn().Err(err).Msg("timer command failed")
		view.showError(err)
		return
	}
	view.errorLabel.Hide()

	snapshot, err := view.controller.Snapshot()
	if err != nil {
		view.showError(err)
		return
	}
	view.Render(snapshot)
}

func (view *View) showError(err error) {
	view.errorLabel.SetText(err.Error())
	view.errorLabel.Show()
}

func phaseText(phase countdown.Phase) string {
	switch phase {
	case countdown.PhaseRunning:
		return "running"
	case countdown.PhasePaused:
		return "paused"
	case countdown.PhaseCompleted:
		return "time is up"
	default:
		return "ready"
	}
}

// ringLayout keeps the ring square and centered with the labels on top of it.
type ringLayout struct{}

func (layout *ringLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	ring := objects[0]
	labels := objects[1]

	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	margin := side * 0.05
	side -= margin * 2
	if side < 0 {
		side = 0
	}
	ring.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	ring.Resize(fyne.NewSize(side, side))

	labelSize := labels.MinSize()
	labels.Move(fyne.NewPos((size.Width-labelSize.Width)/2, (size.Height-labelSize.Height)/2))
	labels.Resize(labelSize)
}

func (layout *ringLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 2 {
		return fyne.NewSize(0, 0)
	}
	labelSize := objects[1].MinSize()
	side := labelSize.Width * 1.6
	if side < 200 {
		side = 200
	}
	return fyne.NewSize(side, side)
}
