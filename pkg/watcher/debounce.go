package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces the burst of events editors emit on
// save (write, chmod, rename) into one change notification.
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback after a quiet
// period.
type Debouncer struct {
	d  time.Duration
	mu sync.Mutex
	t  *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive duration uses
// [DefaultDebounceDuration].
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Trigger schedules fn after the quiet period, resetting any pending
// schedule. Only the last fn of a burst runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
	d.t = time.AfterFunc(d.d, fn)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
		d.t = nil
	}
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration { return d.d }
