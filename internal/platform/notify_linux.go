//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = "/org/freedesktop/Notifications"
	notificationsMethod  = notificationsService + ".Notify"
)

// dbusNotifier talks to the freedesktop notification daemon and falls back to
// notify-send when the session bus is not reachable.
type dbusNotifier struct {
	appName  string
	fallback Notifier
}

func newNotifier(appName string) Notifier {
	return &dbusNotifier{
		appName: appName,
		fallback: &commandNotifier{
			name: "notify-send",
			args: notifySendArgs(appName),
			run:  runCommand,
		},
	}
}

func (notifier *dbusNotifier) Notify(ctx context.Context, title, body string) error {
	busErr := notifier.notifyBus(ctx, title, body)
	if busErr == nil {
		return nil
	}
	if fallbackErr := notifier.fallback.Notify(ctx, title, body); fallbackErr != nil {
		return errors.Join(fmt.Errorf("%w: dbus: %v", ErrNotificationFailure, busErr), fallbackErr)
	}
	return nil
}

func (notifier *dbusNotifier) notifyBus(ctx context.Context, title, body string) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	object := conn.Object(notificationsService, dbus.ObjectPath(notificationsPath))
	call := object.CallWithContext(ctx, notificationsMethod, 0,
		notifier.appName,
		uint32(0),
		"",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1),
	)
	if call.Err != nil {
		return fmt.Errorf("call %s: %w", notificationsMethod, call.Err)
	}
	return nil
}
