package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/shift/internal/logging"
	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

// Engine wires the trigger sources of one element to its advancement
// machine, applying active-space gating, debouncing and delay. One engine is
// created per configured element and owns every timer, subscription and
// delegation it registers; Close releases them all.
type Engine struct {
	id     string
	cfg    *domain.TriggerConfig
	host   ports.Host
	bus    ports.Bus
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	machine *Machine
	timers  *TimerController
	scroll  *Debouncer

	mu      sync.Mutex
	cancels []func()
	delayed map[*time.Timer]struct{}
	closed  bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithBus connects the engine to a cascade bus. Without one the engine
// neither publishes nor receives cascade notifications.
func WithBus(b ports.Bus) EngineOption {
	return func(e *Engine) {
		e.bus = b
	}
}

// NewEngine builds and wires an engine for one element. The initial state
// class is applied immediately; no notification is published for it, so a
// page bootstrap does not set off cascade chains.
func NewEngine(id string, cfg *domain.TriggerConfig, host ports.Host, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		id:      id,
		cfg:     cfg,
		host:    host,
		logger:  logging.NewNop(),
		delayed: make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("element", id)
	e.machine = NewMachine(cfg, e.logger, e.onAdvanced)
	e.timers = NewTimerController(e.logger, func() { e.HandleTrigger(domain.SourceTimer) })

	if err := e.wire(); err != nil {
		e.Close()
		return nil, err
	}

	if err := host.ApplyState(id, cfg.InitialState, cfg.AllStates); err != nil {
		e.Close()
		return nil, fmt.Errorf("applying initial state: %w", err)
	}
	return e, nil
}

func (e *Engine) wire() error {
	cfg := e.cfg

	if cfg.ClickSelector != "" {
		cancel, err := e.host.Delegate(ports.EventClick, cfg.ClickSelector, func(string) {
			e.HandleTrigger(domain.SourceClick)
		})
		if err != nil {
			return fmt.Errorf("wiring click trigger: %w", err)
		}
		e.addCancel(cancel)
	}

	if cfg.HoverSelector != "" {
		if cfg.Hover.Enter || cfg.Hover.Hold {
			cancel, err := e.host.Delegate(ports.EventPointerEnter, cfg.HoverSelector, func(string) {
				e.onHoverEnter()
			})
			if err != nil {
				return fmt.Errorf("wiring hover enter: %w", err)
			}
			e.addCancel(cancel)
		}
		if cfg.Hover.Leave || cfg.Hover.Hold {
			cancel, err := e.host.Delegate(ports.EventPointerLeave, cfg.HoverSelector, func(string) {
				e.onHoverLeave()
			})
			if err != nil {
				return fmt.Errorf("wiring hover leave: %w", err)
			}
			e.addCancel(cancel)
		}
	}

	// A hover-hold configuration owns the timer lifecycle: the program runs
	// only while the pointer is inside the hover target. Otherwise a
	// configured timer starts now and runs unconditionally.
	if cfg.Timer != nil && !cfg.Hover.Hold {
		e.timers.Start(*cfg.Timer)
	}

	if cfg.CascadeSelector != "" && e.bus != nil {
		for _, sourceID := range e.host.Query(cfg.CascadeSelector) {
			if sourceID == e.id {
				continue
			}
			cancel, err := e.bus.Subscribe(sourceID, func(*domain.StateChangedEvent) {
				e.HandleTrigger(domain.SourceCascade)
			})
			if err != nil {
				return fmt.Errorf("subscribing to cascade source %s: %w", sourceID, err)
			}
			e.addCancel(cancel)
		}
	}

	if cfg.NeedsScroll() {
		if cfg.Debounce.Enabled {
			// Always trailing-edge: the evaluation must observe the final
			// settled scroll position.
			e.scroll = NewDebouncer(cfg.Debounce.Wait, false)
		}
		handler := func(string) {
			if e.scroll != nil {
				e.scroll.Call(e.evaluateScroll)
			} else {
				e.evaluateScroll()
			}
		}
		for _, event := range []string{ports.EventScroll, ports.EventResize} {
			cancel, err := e.host.Delegate(event, "", handler)
			if err != nil {
				return fmt.Errorf("wiring %s listener: %w", event, err)
			}
			e.addCancel(cancel)
		}
	}

	return nil
}

func (e *Engine) onHoverEnter() {
	if e.cfg.Hover.Enter || e.cfg.Hover.Hold {
		e.HandleTrigger(domain.SourceHover)
	}
	if e.cfg.Hover.Hold && e.cfg.Timer != nil {
		e.timers.Start(*e.cfg.Timer)
	}
}

func (e *Engine) onHoverLeave() {
	if e.cfg.Hover.Hold {
		e.timers.Stop()
	}
	if e.cfg.Hover.Leave {
		e.HandleTrigger(domain.SourceHover)
	}
}

// HandleTrigger is the common entry point of every discrete trigger source.
// A configured delay defers each invocation independently; overlapping
// delayed calls are not coalesced.
func (e *Engine) HandleTrigger(source domain.TriggerSource) {
	if e.cfg.Delay <= 0 {
		e.executeTrigger(source)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	var tm *time.Timer
	tm = time.AfterFunc(e.cfg.Delay, func() {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		delete(e.delayed, tm)
		e.mu.Unlock()
		e.executeTrigger(source)
	})
	e.delayed[tm] = struct{}{}
	e.mu.Unlock()
}

// executeTrigger applies the active-space gate and dispatches into the
// advancement machine. A suppressed firing changes nothing and publishes
// nothing.
func (e *Engine) executeTrigger(source domain.TriggerSource) {
	evt := &domain.TriggerEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTriggerFired},
		ElementID: e.id,
		Source:    source,
	}

	frac, err := e.fraction()
	if err == nil && !e.cfg.ActiveSpace.Contains(frac) {
		evt.Type = domain.EventTriggerSuppress
		evt.Suppressed = true
		e.logger.Debug("trigger suppressed outside active space", "source", source, "fraction", frac)
		if e.hooks.OnTriggerSuppressed != nil {
			e.hooks.OnTriggerSuppressed(context.Background(), evt)
		}
		return
	}

	if e.hooks.OnTriggerFired != nil {
		e.hooks.OnTriggerFired(context.Background(), evt)
	}
	e.machine.Fire(source)
}

// onAdvanced runs on every successful transition (and on every aligned
// scroll evaluation). It applies the state class, notifies hooks and
// publishes to the cascade bus.
func (e *Engine) onAdvanced(index int, source domain.TriggerSource) {
	state := e.cfg.States[index]
	if err := e.host.ApplyState(e.id, state, e.cfg.AllStates); err != nil {
		e.logger.Warn("failed to apply state class", "state", state, "err", err)
	}

	e.logger.Debug("state changed", "state", state, "index", index, "source", source)

	evt := domain.NewStateChangedEvent(e.id, state, index, source)
	if e.hooks.OnStateChange != nil {
		e.hooks.OnStateChange(context.Background(), evt)
	}
	if e.bus != nil {
		if err := e.bus.Publish(context.Background(), evt); err != nil {
			e.logger.Warn("failed to publish state change", "err", err)
		}
	}
}

// fraction computes the element's reference point as a fraction of viewport
// height, honoring the configured alignment.
func (e *Engine) fraction() (float64, error) {
	geom, err := e.host.Geometry(e.id)
	if err != nil {
		return 0, err
	}
	vp := e.host.Viewport()
	if vp.Height <= 0 {
		return 0, fmt.Errorf("viewport has no height")
	}

	ref := geom.Top
	switch e.cfg.ViewportAlign {
	case domain.AlignMiddle:
		ref += geom.Height / 2
	case domain.AlignBottom:
		ref += geom.Height
	}
	return (ref - vp.ScrollTop) / vp.Height, nil
}

// ID returns the element ID this engine drives.
func (e *Engine) ID() string {
	return e.id
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() *domain.TriggerConfig {
	return e.cfg
}

// Status returns an introspection snapshot.
func (e *Engine) Status() domain.ElementStatus {
	index, state := e.machine.Current()
	return domain.ElementStatus{
		ID:          e.id,
		State:       state,
		Index:       index,
		States:      e.cfg.States,
		Advancement: e.cfg.Advancement,
	}
}

// TimerActive reports whether the element's timer program is running.
func (e *Engine) TimerActive() bool {
	return e.timers.Active()
}

func (e *Engine) addCancel(cancel func()) {
	e.mu.Lock()
	e.cancels = append(e.cancels, cancel)
	e.mu.Unlock()
}

// Close tears the engine down: delegations and cascade subscriptions are
// cancelled, the timer program stops, pending debounced and delayed calls
// are discarded. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cancels := e.cancels
	e.cancels = nil
	for tm := range e.delayed {
		tm.Stop()
	}
	e.delayed = make(map[*time.Timer]struct{})
	e.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	e.timers.Stop()
	if e.scroll != nil {
		e.scroll.Stop()
	}
}
