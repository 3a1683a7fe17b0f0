// Package runtime implements the per-element trigger engine: the
// advancement state machine, the timer controller, debounce/delay wrapping
// and the scroll alignment evaluation.
package runtime

import (
	"log/slog"
	"sync"

	"github.com/aretw0/shift/pkg/domain"
)

// Machine holds the mutable advancement state of one element and applies
// the configured advancement policy on each firing.
//
// The notify callback runs outside the machine's lock, so a notification may
// synchronously fire another element's machine without deadlocking.
type Machine struct {
	cfg    *domain.TriggerConfig
	logger *slog.Logger
	notify func(index int, source domain.TriggerSource)

	mu        sync.Mutex
	current   int
	lastRange int

	// advance-reset cycle: the non-initial states in original order, the
	// cursor into them, and whether the next firing is a step or a reset.
	resetOrder  []string
	resetCursor int
	resetStep   bool
}

// NewMachine creates a machine positioned at the configured initial state.
// lastRange starts at -1, the "before any range" sentinel.
func NewMachine(cfg *domain.TriggerConfig, logger *slog.Logger, notify func(index int, source domain.TriggerSource)) *Machine {
	m := &Machine{
		cfg:       cfg,
		logger:    logger,
		notify:    notify,
		current:   cfg.InitialIndex,
		lastRange: -1,
		resetStep: true,
	}
	if cfg.Advancement == domain.AdvancementAdvanceReset {
		for _, s := range cfg.States {
			if s != cfg.InitialState {
				m.resetOrder = append(m.resetOrder, s)
			}
		}
	}
	return m
}

// Current returns the current index and state name.
func (m *Machine) Current() (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.cfg.States[m.current]
}

// Fire applies one discrete trigger firing. Under the aligned policy the
// firing is accepted but has no effect; an unrecognized policy never
// advances.
func (m *Machine) Fire(source domain.TriggerSource) {
	m.mu.Lock()
	next, ok := m.nextIndexLocked()
	if !ok || next == m.current {
		m.mu.Unlock()
		return
	}
	m.current = next
	m.mu.Unlock()

	m.notify(next, source)
}

func (m *Machine) nextIndexLocked() (int, bool) {
	n := len(m.cfg.States)
	switch m.cfg.Advancement {
	case domain.AdvancementAdvance:
		return (m.current + 1) % n, true

	case domain.AdvancementToggleInitial:
		if m.current == m.cfg.InitialIndex {
			return (m.cfg.InitialIndex + 1) % n, true
		}
		return m.cfg.InitialIndex, true

	case domain.AdvancementAdvanceReset:
		if len(m.resetOrder) == 0 {
			return 0, false
		}
		var next int
		if m.resetStep {
			next = m.cfg.StateIndex(m.resetOrder[m.resetCursor])
			m.resetCursor = (m.resetCursor + 1) % len(m.resetOrder)
		} else {
			next = m.cfg.InitialIndex
		}
		m.resetStep = !m.resetStep
		return next, true

	case domain.AdvancementAligned:
		// Tolerated for misconfigured elements combining aligned with a
		// discrete trigger. State is driven by the scroll path only.
		m.logger.Debug("aligned policy ignores discrete firing")
		return 0, false

	default:
		return 0, false
	}
}

// EvaluateRange feeds one scroll/resize observation into the machine.
// Under the aligned policy the range index maps positionally onto the state
// list (before-first clamps to the first state, indexes past the declared
// states clamp to the last) and a notification is emitted on every
// evaluation, even when the target state is unchanged. Under every other
// policy a range-index change counts as one discrete firing.
func (m *Machine) EvaluateRange(idx int) {
	m.mu.Lock()
	if m.cfg.Advancement == domain.AdvancementAligned {
		m.lastRange = idx
		target := idx
		if target < 0 {
			target = 0
		}
		if target >= len(m.cfg.States) {
			target = len(m.cfg.States) - 1
		}
		m.current = target
		m.mu.Unlock()

		m.notify(target, domain.SourceScroll)
		return
	}

	changed := idx != m.lastRange
	m.lastRange = idx
	m.mu.Unlock()

	if changed {
		m.Fire(domain.SourceScroll)
	}
}

// LastRange returns the last observed range index (-1 before any range).
func (m *Machine) LastRange() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRange
}
