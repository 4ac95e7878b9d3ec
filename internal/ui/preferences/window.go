package preferences

import (
	"time"

	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings) error
	duration      *widget.Entry
	errorLabel    *widget.Label
	notifications *widget.Check
	minimized     *widget.Check
}

// New creates a preferences window. onSave may reject the settings, in which case
// the window stays open and shows the error.
func New(app fyne.App, settings Settings, onSave func(Settings) error) *Window {
	window := app.NewWindow("Beep Settings")

	duration := widget.NewEntry()
	duration.SetPlaceHolder("seconds, 1:30 or 2m")

	errorLabel := widget.NewLabel("")
	errorLabel.Importance = widget.DangerImportance
	errorLabel.Hide()

	notifications := widget.NewCheck("Desktop notification when time is up", nil)
	minimized := widget.NewCheck("Start minimized to the tray", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Default duration"), nil, duration),
		errorLabel,
		notifications,
		minimized,
	)

	saveButton := widget.NewButton("Save", nil)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(380, 220))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		duration:      duration,
		errorLabel:    errorLabel,
		notifications: notifications,
		minimized:     minimized,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Settings returns the last saved settings.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.duration.SetText(countdown.FormatSeconds(int(settings.DefaultDuration / time.Second)))
	prefs.notifications.SetChecked(settings.Notifications)
	prefs.minimized.SetChecked(settings.StartMinimized)
	prefs.errorLabel.Hide()
}

func (prefs *Window) handleSave() {
	seconds, err := model.ParseSeconds(prefs.duration.Text)
	if err != nil {
		prefs.showError(err)
		return
	}

	settings := prefs.settings
	settings.DefaultDuration = time.Duration(seconds) * time.Second
	settings.Notifications = prefs.notifications.Checked
	settings.StartMinimized = prefs.minimized.Checked

	if prefs.onSave != nil {
		if err := prefs.onSave(settings); err != nil {
			prefs.showError(err)
			return
		}
	}
	prefs.settings = settings
	prefs.errorLabel.Hide()
	prefs.window.Hide()
}

func (prefs *Window) showError(err error) {
	prefs.errorLabel.SetText(err.Error())
	prefs.errorLabel.Show()
}
