package daemon

import "time"

// DefaultDebounce is the coalescing window for sync requests.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces sync requests into single reconciliation passes.
//
// It keeps one pending flag and one timer; every Request restarts the
// timer, so any number of requests inside one window yield one pass. It is
// owned by the controller goroutine and is not safe for concurrent use.
type Debouncer struct {
	window  time.Duration
	timer   *time.Timer
	pending bool
}

// NewDebouncer returns an idle debouncer.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	t := time.NewTimer(window)
	t.Stop()
	return &Debouncer{window: window, timer: t}
}

// Request marks a pass as pending and restarts the window.
func (d *Debouncer) Request() {
	d.pending = true
	d.timer.Reset(d.window)
}

// RequestIfIdle marks a pass as pending unless one already is. An armed
// window is left alone, so periodic callers cannot starve the timer when
// their period is shorter than the window.
func (d *Debouncer) RequestIfIdle() {
	if d.pending {
		return
	}
	d.Request()
}

// C fires when the window elapses after the latest Request.
func (d *Debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Fire consumes the pending request. It reports whether a pass should run.
func (d *Debouncer) Fire() bool {
	if !d.pending {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a request is waiting for the window to elapse.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// SetWindow changes the window used by subsequent requests.
func (d *Debouncer) SetWindow(window time.Duration) {
	if window > 0 {
		d.window = window
	}
}

// Stop drops any pending request.
func (d *Debouncer) Stop() {
	d.timer.Stop()
	d.pending = false
}
