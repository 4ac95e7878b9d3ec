package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxDuration bounds durations typed by the user.
const MaxDuration = 24 * time.Hour

// MaxSeconds is MaxDuration in whole seconds.
const MaxSeconds = int(MaxDuration / time.Second)

// ErrInvalidDuration is returned for duration text that cannot be used as a countdown.
var ErrInvalidDuration = errors.New("invalid duration")

// ParseSeconds reads a duration typed by the user. It accepts whole seconds ("90"),
// clock notation ("1:30", "1:00:00") and Go durations ("2m", "1h30m").
func ParseSeconds(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}

	var (
		duration time.Duration
		err      error
	)
	switch {
	case strings.Contains(text, ":"):
		duration, err = parseClock(text)
	case isDigits(strings.TrimPrefix(text, "-")):
		var seconds int
		seconds, err = strconv.Atoi(text)
		if err == nil && seconds > MaxSeconds {
			return 0, fmt.Errorf("%w: %q exceeds %s", ErrInvalidDuration, text, MaxDuration)
		}
		duration = time.Duration(seconds) * time.Second
	default:
		duration, err = time.ParseDuration(text)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}

	if duration < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, text)
	}
	if duration > MaxDuration {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrInvalidDuration, text, MaxDuration)
	}
	if duration%time.Second != 0 {
		return 0, fmt.Errorf("%w: %q is not a whole number of seconds", ErrInvalidDuration, text)
	}
	return int(duration / time.Second), nil
}

func parseClock(text string) (time.Duration, error) {
	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, errors.New("too many fields")
	}

	total := 0
	for i, part := range parts {
		if !isDigits(part) {
			return 0, fmt.Errorf("field %q", part)
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		if i > 0 && value >= 60 {
			return 0, fmt.Errorf("field %q out of range", part)
		}
		if value > MaxSeconds || total > (MaxSeconds-value)/60 {
			return 0, fmt.Errorf("%q exceeds %s", text, MaxDuration)
		}
		total = total*60 + value
	}
	return time.Duration(total) * time.Second, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
