//go:build darwin

package platform

func newNotifier(string) Notifier {
	return &commandNotifier{
		name: "osascript",
		args: osascriptArgs,
		run:  runCommand,
	}
}
