package backup

import (
	"sync"
	"time"
)

// Debouncer calls a function once, Timeout after the first of
// a burst of Debounce() calls
type Debouncer struct {
	Timeout time.Duration

	mu           sync.Mutex
	isDebouncing bool
	timer        *time.Timer
	f            func()
}

func (d *Debouncer) run() {
	// clear state before calling f() so that a Debounce()
	// made while f() runs schedules another call
	d.mu.Lock()
	f := d.f
	d.f = nil
	d.timer = nil
	d.isDebouncing = false
	d.mu.Unlock()
	if f != nil {
		f()
	}
}

// Debounce schedules f unless a call is already scheduled.
// The function that runs is the one from the latest Debounce().
func (d *Debouncer) Debounce(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.f = f
	if d.isDebouncing {
		return
	}
	d.isDebouncing = true
	d.timer = time.AfterFunc(d.Timeout, d.run)
}

// Cancel drops the scheduled call. Returns false if there was
// nothing to cancel.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil || !d.timer.Stop() {
		return false
	}
	d.f = nil
	d.timer = nil
	d.isDebouncing = false
	return true
}
