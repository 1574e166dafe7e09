package session

import "time"

// CancelFunc stops a pending callback. Safe to call more than once and
// after the callback has fired.
type CancelFunc func()

// Scheduler defers callbacks. The session engine schedules countdown
// ticks, expiry grace delays and quiz review delays through it, so
// tests can substitute a manual scheduler and run without real timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

// TimerScheduler binds the engine to real timers
type TimerScheduler struct{}

// AfterFunc schedules f on a time.Timer
func (TimerScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}
