package countdown

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidConfiguration indicates a negative countdown duration.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrLockFailure indicates the timer state guard is broken by an earlier panic.
	ErrLockFailure = errors.New("timer state lock failure")
)

// guard serializes access to the timer state. A panic that escapes a critical
// section poisons it; every later acquisition then fails with ErrLockFailure.
type guard struct {
	mu       sync.Mutex
	poisoned bool
	cause    any
}

// do runs fn under the lock. A panicking fn is not rolled back: once poisoned,
// the timer state is undefined and is never read again.
func (g *guard) do(fn func()) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned {
		return fmt.Errorf("%w: %v", ErrLockFailure, g.cause)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			g.poisoned = true
			g.cause = recovered
			err = fmt.Errorf("%w: %v", ErrLockFailure, recovered)
		}
	}()

	fn()
	return nil
}
