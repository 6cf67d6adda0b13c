// Package scheduler is the single timer primitive of the client: schedule a callback
// after a duration and get back a handle that cancels it. Scopes track every handle they
// hand out so closing a scope clears all outstanding timers of a game instance.
package scheduler

import "time"

// Handle cancels a scheduled callback
type Handle interface {
	// Cancel stops the callback. It reports true if the callback had not fired yet.
	Cancel() bool
}

// Clock provides the current time and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
}

type realClock struct{}

// Real returns a Clock backed by the time package
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Handle {
	return realTimer{time.AfterFunc(d, fn)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Cancel() bool {
	return r.t.Stop()
}
