package platform

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceLock keeps a single Beep process per user session, so only one
// countdown is ever active.
type InstanceLock struct {
	listener net.Listener
	address  string
}

// AcquireInstanceLock binds a loopback port derived from the application name.
func AcquireInstanceLock(ctx context.Context, appName string) (*InstanceLock, error) {
	return acquireOnPort(ctx, portFromName(appName))
}

func acquireOnPort(ctx context.Context, port int) (*InstanceLock, error) {
	address := fmt.Sprintf("127.0.0.1:%d", port)
	var config net.ListenConfig
	listener, err := config.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceLock{listener: listener, address: address}, nil
}

// Release frees the lock. A nil lock is a no-op.
func (lock *InstanceLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	err := lock.listener.Close()
	lock.listener = nil
	return err
}

// Address returns the bound address.
func (lock *InstanceLock) Address() string {
	if lock == nil {
		return ""
	}
	return lock.address
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
