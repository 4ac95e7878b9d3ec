package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotificationFailure indicates the desktop notification was not delivered.
var ErrNotificationFailure = errors.New("notification not delivered")

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// NewNotifier returns the platform-specific desktop notifier.
func NewNotifier(appName string) Notifier {
	return newNotifier(appName)
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// commandNotifier shells out to an OS notification tool.
type commandNotifier struct {
	name string
	args func(title, body string) []string
	run  commandRunner
}

func (notifier *commandNotifier) Notify(ctx context.Context, title, body string) error {
	output, err := notifier.run(ctx, notifier.name, notifier.args(title, body)...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrNotificationFailure, notifier.name, err, detail)
		}
		return fmt.Errorf("%w: %s: %v", ErrNotificationFailure, notifier.name, err)
	}
	return nil
}

type unsupportedNotifier struct{}

func (unsupportedNotifier) Notify(context.Context, string, string) error {
	return fmt.Errorf("%w: unsupported platform", ErrNotificationFailure)
}

func notifySendArgs(appName string) func(title, body string) []string {
	return func(title, body string) []string {
		return []string{"--app-name", appName, title, body}
	}
}

func osascriptArgs(title, body string) []string {
	script := fmt.Sprintf(
		`display notification "%s" with title "%s" sound name "default"`,
		appleScriptEscape(body),
		appleScriptEscape(title),
	)
	return []string{"-e", script}
}

func burntToastArgs(title, body string) []string {
	command := fmt.Sprintf(
		"New-BurntToastNotification -Text '%s', '%s'",
		powerShellEscape(title),
		powerShellEscape(body),
	)
	return []string{"-NoProfile", "-NonInteractive", "-Command", command}
}

func appleScriptEscape(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return replacer.Replace(value)
}

func powerShellEscape(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
