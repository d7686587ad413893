package combat

import (
	"sync"
	"time"
)

// ActionTimer fires a callback when a human-driven turn waits too long.
// It is safe for concurrent use.
type ActionTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewActionTimer creates and starts a timer that calls onExpire after
// timeout. onExpire runs in its own goroutine.
//
// Precondition: timeout > 0; onExpire must not be nil.
// Postcondition: onExpire will be called unless Stop is called first.
func NewActionTimer(timeout time.Duration, onExpire func()) *ActionTimer {
	at := &ActionTimer{}
	at.timer = time.AfterFunc(timeout, at.guard(onExpire))
	return at
}

func (at *ActionTimer) guard(onExpire func()) func() {
	return func() {
		at.mu.Lock()
		stopped := at.stopped
		at.mu.Unlock()
		if !stopped {
			onExpire()
		}
	}
}

// Reset cancels the pending expiry and starts a new one.
//
// Precondition: timeout > 0; onExpire must not be nil.
// Postcondition: onExpire will be called after timeout from now unless Stop
// is called first.
func (at *ActionTimer) Reset(timeout time.Duration, onExpire func()) {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.timer.Stop()
	at.stopped = false
	at.timer = time.AfterFunc(timeout, at.guard(onExpire))
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onExpire will not be called after Stop returns, unless it
// had already started.
func (at *ActionTimer) Stop() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.stopped = true
	at.timer.Stop()
}
