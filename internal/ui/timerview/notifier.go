package timerview

import (
	"context"

	"fyne.io/fyne/v2"
)

// Notifier delivers completion notifications through the fyne application.
type Notifier struct {
	app fyne.App
}

// NewNotifier creates a notifier bound to app.
func NewNotifier(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

// Notify sends a desktop notification. Delivery is best effort.
func (notifier *Notifier) Notify(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	notification := fyne.NewNotification(title, body)
	fyne.Do(func() {
		notifier.app.SendNotification(notification)
	})
	return nil
}
