package runtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/shift/pkg/domain"
)

// TimerController owns the timer program of one element. At most one program
// is active at a time: starting a new one first cancels the previous, so
// reconfiguration never leaks ticks.
//
// delay and loop are single-duration programs; interval walks its duration
// sequence once, loop interval restarts the sequence indefinitely.
type TimerController struct {
	logger *slog.Logger
	fire   func()

	mu     sync.Mutex
	timer  *time.Timer
	gen    int
	seq    []time.Duration
	pos    int
	repeat bool
}

// NewTimerController creates an idle controller invoking fire on every tick.
func NewTimerController(logger *slog.Logger, fire func()) *TimerController {
	return &TimerController{logger: logger, fire: fire}
}

// Start replaces any running program with the given spec.
func (t *TimerController) Start(spec domain.TimerSpec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	if len(spec.Durations) == 0 {
		return
	}
	t.seq = spec.Durations
	t.pos = 0
	t.repeat = spec.Repeats()
	t.scheduleLocked()
	t.logger.Debug("timer program started", "mode", spec.Mode, "steps", len(spec.Durations))
}

// Stop cancels the running program. Idempotent.
func (t *TimerController) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Active reports whether a program is currently scheduled.
func (t *TimerController) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *TimerController) cancelLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *TimerController) scheduleLocked() {
	gen := t.gen
	t.timer = time.AfterFunc(t.seq[t.pos], func() { t.tick(gen) })
}

func (t *TimerController) tick(gen int) {
	t.mu.Lock()
	// A stale generation means the program was cancelled or replaced after
	// this callback was scheduled.
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pos++
	if t.pos >= len(t.seq) {
		if t.repeat {
			t.pos = 0
		} else {
			t.timer = nil
			t.mu.Unlock()
			t.fire()
			return
		}
	}
	t.scheduleLocked()
	t.mu.Unlock()

	t.fire()
}
