//go:build !linux && !darwin && !windows

package platform

func newNotifier(string) Notifier {
	return unsupportedNotifier{}
}
