package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shift/internal/compiler"
	"github.com/aretw0/shift/internal/logging"
	"github.com/aretw0/shift/internal/runtime"
	"github.com/aretw0/shift/pkg/bus"
	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

// Controller is the composition root: it discovers configured elements on
// the host, compiles their configuration and owns one trigger engine per
// element, plus the cascade bus connecting them.
type Controller struct {
	host     ports.Host
	bus      ports.Bus
	ownBus   bool
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	defaults compiler.Defaults

	engines map[string]*runtime.Engine
	order   []string
	diags   map[string][]domain.Diagnostic
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks registers observability hooks shared by every engine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Join(hooks)
	}
}

// WithBus injects a cascade bus, e.g. the Redis adapter for cross-process
// cascades. Defaults to the in-process bus. An injected bus is not closed by
// the controller.
func WithBus(b ports.Bus) Option {
	return func(c *Controller) {
		c.bus = b
	}
}

// WithDebounceDefaults overrides the process-wide debounce fallbacks applied
// to elements without an explicit debounce attribute.
func WithDebounceDefaults(enabled bool, wait time.Duration) Option {
	return func(c *Controller) {
		c.defaults = compiler.Defaults{DebounceEnabled: enabled, DebounceWait: wait}
	}
}

// New initializes engines for every configured element on the host.
// Container attributes are propagated to their targets first, then each
// element is compiled and wired. Configuration problems are local to their
// element: a broken element is skipped (or degraded per the fallback rules)
// and never aborts the rest of the page.
func New(host ports.Host, opts ...Option) (*Controller, error) {
	c := &Controller{
		host:     host,
		logger:   logging.NewNop(),
		defaults: compiler.StandardDefaults,
		engines:  make(map[string]*runtime.Engine),
		diags:    make(map[string][]domain.Diagnostic),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = bus.New()
		c.ownBus = true
	}

	c.propagateContainers()

	parser := compiler.NewParser(c.defaults)
	for _, id := range host.Configured() {
		attrs, err := host.Attributes(id)
		if err != nil {
			c.logger.Warn("skipping unreadable element", "element", id, "err", err)
			continue
		}
		if _, isContainer := attrs[domain.AttrTarget]; isContainer {
			continue
		}

		cfg, diags, err := parser.Parse(attrs)
		for _, d := range diags {
			c.logger.Warn("configuration problem", "element", id, "attr", d.Attr, "detail", d.Message)
		}
		if len(diags) > 0 {
			c.diags[id] = diags
		}
		if err != nil {
			if errors.Is(err, domain.ErrNoStates) {
				c.logger.Warn("element not initialized", "element", id, "err", err)
				continue
			}
			return nil, fmt.Errorf("compiling element %s: %w", id, err)
		}

		engine, err := runtime.NewEngine(id, cfg, host,
			runtime.WithLogger(c.logger),
			runtime.WithHooks(c.hooks),
			runtime.WithBus(c.bus),
		)
		if err != nil {
			c.logger.Warn("element not initialized", "element", id, "err", err)
			continue
		}
		c.engines[id] = engine
		c.order = append(c.order, id)
	}

	c.logger.Info("controller initialized", "elements", len(c.engines))
	return c, nil
}

// propagateContainers copies trigger attributes from each container onto the
// elements matched by its target selector. An attribute already present on
// the target wins over the container's copy. This is pure data propagation
// and runs before any engine is constructed.
func (c *Controller) propagateContainers() {
	for _, id := range c.host.Configured() {
		attrs, err := c.host.Attributes(id)
		if err != nil {
			continue
		}
		target, ok := attrs[domain.AttrTarget]
		if !ok || target == "" {
			continue
		}

		for _, descID := range c.host.Query(target) {
			if descID == id {
				continue
			}
			descAttrs, err := c.host.Attributes(descID)
			if err != nil {
				continue
			}
			for _, key := range domain.TriggerAttrs {
				v, has := attrs[key]
				if !has {
					continue
				}
				if _, own := descAttrs[key]; own {
					continue
				}
				if err := c.host.SetAttribute(descID, key, v); err != nil {
					c.logger.Warn("container propagation failed", "container", id, "element", descID, "attr", key, "err", err)
				}
			}
		}
	}
}

// Elements returns a status snapshot for every initialized element, in
// document order.
func (c *Controller) Elements() []domain.ElementStatus {
	statuses := make([]domain.ElementStatus, 0, len(c.order))
	for _, id := range c.order {
		statuses = append(statuses, c.engines[id].Status())
	}
	return statuses
}

// StateOf returns the status of one element.
func (c *Controller) StateOf(id string) (domain.ElementStatus, error) {
	engine, ok := c.engines[id]
	if !ok {
		return domain.ElementStatus{}, fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	return engine.Status(), nil
}

// Fire manually injects one trigger firing into an element's engine. The
// firing goes through the normal path, so delay and active-space gating
// apply.
func (c *Controller) Fire(_ context.Context, id string) error {
	engine, ok := c.engines[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	engine.HandleTrigger(domain.SourceManual)
	return nil
}

// Diagnostics returns the configuration problems collected at
// initialization, keyed by element ID.
func (c *Controller) Diagnostics() map[string][]domain.Diagnostic {
	return c.diags
}

// Bus exposes the cascade bus, e.g. for wildcard subscriptions by
// introspection tools.
func (c *Controller) Bus() ports.Bus {
	return c.bus
}

// Close tears down every engine and, when the controller created it, the
// bus. All timers, pending delayed calls and subscriptions are released.
func (c *Controller) Close() error {
	for _, id := range c.order {
		c.engines[id].Close()
	}
	if c.ownBus {
		return c.bus.Close()
	}
	return nil
}
