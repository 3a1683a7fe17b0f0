package runtime

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated calls into one effective call.
//
// In trailing mode (leading=false) only the final call of a burst executes,
// deferred by wait after the burst's last call. In leading mode the first
// call of a quiet period executes immediately and the following quiet window
// suppresses further calls, re-arming on each suppressed call.
//
// Call takes the function to run, so a coalesced burst always executes the
// closure of its final call.
type Debouncer struct {
	wait    time.Duration
	leading bool

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	open    bool
	stopped bool
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer(wait time.Duration, leading bool) *Debouncer {
	return &Debouncer{wait: wait, leading: leading}
}

// Call schedules fn under the debouncing rule.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.leading {
		lead := !d.open
		d.open = true
		d.armQuietLocked()
		d.mu.Unlock()
		if lead {
			fn()
		}
		return
	}

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fireTrailing)
	d.mu.Unlock()
}

func (d *Debouncer) armQuietLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		d.open = false
		d.mu.Unlock()
	})
}

func (d *Debouncer) fireTrailing() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	stopped := d.stopped
	d.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop discards any pending call and rejects further ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
