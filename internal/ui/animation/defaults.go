package animation

import "time"

// DefaultConfig returns the timings used by the countdown window.
func DefaultConfig() Config {
	return Config{
		FlashOn: Range{
			Min: 250 * time.Millisecond,
			Max: 250 * time.Millisecond,
		},
		FlashOff: Range{
			Min: 150 * time.Millisecond,
			Max: 150 * time.Millisecond,
		},
		FlashCycles: 4,
		PulseVisible: Range{
			Min: 700 * time.Millisecond,
			Max: 900 * time.Millisecond,
		},
		PulseHidden: Range{
			Min: 400 * time.Millisecond,
			Max: 500 * time.Millisecond,
		},
	}
}
