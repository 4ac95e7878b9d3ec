//go:build windows

package platform

func newNotifier(string) Notifier {
	return &commandNotifier{
		name: "powershell",
		args: burntToastArgs,
		run:  runCommand,
	}
}
