package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shift/internal/compiler"
	"github.com/aretw0/shift/internal/runtime"
	"github.com/aretw0/shift/pkg/adapters/memory"
	"github.com/aretw0/shift/pkg/bus"
	"github.com/aretw0/shift/pkg/domain"
)

// compile parses attrs with the standard process defaults, failing the test
// on any diagnostic so fixtures stay clean.
func compile(t *testing.T, attrs map[string]string) *domain.TriggerConfig {
	t.Helper()
	cfg, diags, err := compiler.NewParser(compiler.StandardDefaults).Parse(attrs)
	require.NoError(t, err)
	require.Empty(t, diags)
	return cfg
}

func newPageHost(elements ...memory.ElementSpec) *memory.Host {
	return memory.NewHost(memory.PageSpec{
		Viewport: memory.ViewportSpec{Height: 1000},
		Elements: elements,
	})
}

func TestEngineAppliesInitialStateWithoutPublishing(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "hero", Top: 100, Height: 200})
	b := bus.New()

	var published []string
	cancel, err := b.Subscribe("hero", func(evt *domain.StateChangedEvent) {
		published = append(published, evt.State)
	})
	require.NoError(t, err)
	defer cancel()

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "closed open",
		domain.AttrInitialState: "open",
	})
	e, err := runtime.NewEngine("hero", cfg, host, runtime.WithBus(b))
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, host.HasClass("hero", "open"))
	assert.Empty(t, published, "bootstrap must not set off cascades")
}

func TestEngineClickAdvances(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "card", Top: 400, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b c",
		domain.AttrClickTrigger: "#card",
	})
	e, err := runtime.NewEngine("card", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	host.Click("card")
	assert.True(t, host.HasClass("card", "b"))
	assert.False(t, host.HasClass("card", "a"))

	host.Click("card")
	assert.True(t, host.HasClass("card", "c"))

	status := e.Status()
	assert.Equal(t, "c", status.State)
	assert.Equal(t, 2, status.Index)
}

func TestEngineClickBubblesFromDescendant(t *testing.T) {
	host := newPageHost(
		memory.ElementSpec{ID: "panel", Top: 0, Height: 300},
		memory.ElementSpec{ID: "icon", Parent: "panel", Top: 10, Height: 20},
	)

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b",
		domain.AttrClickTrigger: "#panel",
	})
	e, err := runtime.NewEngine("panel", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	host.Click("icon")
	assert.True(t, host.HasClass("panel", "b"))
}

func TestEngineActiveSpaceGate(t *testing.T) {
	// Element middle sits at 2050, fraction 2.05 of the unscrolled viewport.
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 2000, Height: 100})

	var fired, suppressed int
	hooks := domain.LifecycleHooks{
		OnTriggerFired:      func(context.Context, *domain.TriggerEvent) { fired++ },
		OnTriggerSuppressed: func(context.Context, *domain.TriggerEvent) { suppressed++ },
	}

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b c",
		domain.AttrClickTrigger: "#el",
		domain.AttrActiveSpace:  "0.1, 0.9",
	})
	e, err := runtime.NewEngine("el", cfg, host, runtime.WithHooks(hooks))
	require.NoError(t, err)
	defer e.Close()

	host.Click("el")
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, suppressed)
	assert.True(t, host.HasClass("el", "a"))

	// Scroll the element middle to fraction 0.55.
	host.ScrollTo(1500)
	host.Click("el")
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, suppressed)
	assert.True(t, host.HasClass("el", "b"))
}

func TestEngineDelayDefersAdvancement(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b",
		domain.AttrClickTrigger: "#el",
		domain.AttrDelay:        "20ms",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	host.Click("el")
	assert.True(t, host.HasClass("el", "a"), "must not advance before the delay elapses")

	require.Eventually(t, func() bool {
		return host.HasClass("el", "b")
	}, time.Second, 2*time.Millisecond)
}

func TestEngineCloseDiscardsDelayedTriggers(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b",
		domain.AttrClickTrigger: "#el",
		domain.AttrDelay:        "20ms",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)

	host.Click("el")
	e.Close()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, host.HasClass("el", "a"))
}

func TestEngineHoverEnterLeave(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "off on",
		domain.AttrAdvancement:  "toggle-initial",
		domain.AttrHoverTrigger: "#el",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	host.HoverEnter("el")
	assert.True(t, host.HasClass("el", "on"))

	host.HoverLeave("el")
	assert.True(t, host.HasClass("el", "off"))
}

func TestEngineHoverHoldOwnsTimer(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b c",
		domain.AttrHoverTrigger: "#el",
		domain.AttrHoverEvents:  "hold",
		domain.AttrTimer:        "loop:10ms",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	// The timer must not run before the pointer enters.
	assert.False(t, e.TimerActive())

	host.HoverEnter("el")
	assert.True(t, e.TimerActive())
	require.Eventually(t, func() bool {
		return host.HasClass("el", "c")
	}, time.Second, 2*time.Millisecond)

	host.HoverLeave("el")
	assert.False(t, e.TimerActive())
}

func TestEnginePlainTimerStartsImmediately(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates: "a b",
		domain.AttrTimer:  "delay:10ms",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.TimerActive())
	require.Eventually(t, func() bool {
		return host.HasClass("el", "b")
	}, time.Second, 2*time.Millisecond)
}

func TestEngineAlignedScrollMapsRangesToStates(t *testing.T) {
	// Element spans the whole page; its top edge is the reference point.
	host := newPageHost(memory.ElementSpec{ID: "story", Top: 500, Height: 0})

	cfg := compile(t, map[string]string{
		domain.AttrStates:        "intro middle outro",
		domain.AttrScrollPoints:  "0, 0.33, 0.66, 1",
		domain.AttrViewportAlign: "top",
		domain.AttrDebounce:      "false:0ms",
	})
	require.Equal(t, domain.AdvancementAligned, cfg.Advancement)

	e, err := runtime.NewEngine("story", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	// Reference at fraction 0.5 -> second range -> "middle".
	host.ScrollTo(0)
	assert.True(t, host.HasClass("story", "middle"))

	// Fraction 0.1 -> first range -> "intro".
	host.ScrollTo(400)
	assert.True(t, host.HasClass("story", "intro"))

	// Fraction -0.3, before every range, clamps to the first state.
	host.ScrollTo(800)
	assert.True(t, host.HasClass("story", "intro"))

	// Fraction 0.9 -> last range -> "outro".
	host.ScrollTo(-400)
	assert.True(t, host.HasClass("story", "outro"))
}

func TestEngineScrollDebounceCoalesces(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 0, Height: 0})

	var mu sync.Mutex
	var transitions []string
	hooks := domain.LifecycleHooks{
		OnStateChange: func(_ context.Context, evt *domain.StateChangedEvent) {
			mu.Lock()
			transitions = append(transitions, evt.State)
			mu.Unlock()
		},
	}

	cfg := compile(t, map[string]string{
		domain.AttrStates:        "a b c",
		domain.AttrScrollPoints:  "0, 0.33, 0.66, 1",
		domain.AttrViewportAlign: "top",
		domain.AttrDebounce:      "true:20ms",
	})
	e, err := runtime.NewEngine("el", cfg, host, runtime.WithHooks(hooks))
	require.NoError(t, err)
	defer e.Close()

	// A burst of scrolls settles on fraction 0.9; only the final position is
	// evaluated.
	for _, top := range []float64{-100, -200, -500, -900} {
		host.ScrollTo(top)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(transitions) == 1
	}, time.Second, 2*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"c"}, transitions)
}

func TestEngineScrollAnimateProgress(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 0, Height: 0})

	cfg := compile(t, map[string]string{
		domain.AttrStates:        "a b",
		domain.AttrScrollRanges:  "0.2-0.6",
		domain.AttrViewportAlign: "top",
		domain.AttrScrollAnimate: "true",
		domain.AttrDebounce:      "false:0ms",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)
	defer e.Close()

	// Reference at fraction 0.4, halfway through the 0.2-0.6 range.
	host.ScrollTo(-400)
	assert.InDelta(t, 0.5, host.Progress("el"), 1e-9)

	// Past the range end clamps to 1.
	host.ScrollTo(-900)
	assert.Equal(t, 1.0, host.Progress("el"))
}

func TestEngineCascadeChain(t *testing.T) {
	host := newPageHost(
		memory.ElementSpec{ID: "a", Classes: []string{"leader"}, Top: 0, Height: 10},
		memory.ElementSpec{ID: "b", Top: 20, Height: 10},
	)
	b := bus.New()

	cfgA := compile(t, map[string]string{
		domain.AttrStates:       "s1 s2",
		domain.AttrClickTrigger: "#a",
	})
	cfgB := compile(t, map[string]string{
		domain.AttrStates:  "quiet loud",
		domain.AttrCascade: ".leader",
	})

	engA, err := runtime.NewEngine("a", cfgA, host, runtime.WithBus(b))
	require.NoError(t, err)
	defer engA.Close()

	engB, err := runtime.NewEngine("b", cfgB, host, runtime.WithBus(b))
	require.NoError(t, err)
	defer engB.Close()

	host.Click("a")
	assert.True(t, host.HasClass("a", "s2"))
	assert.True(t, host.HasClass("b", "loud"), "cascade must follow the source transition")
}

func TestEngineCascadeSkipsSelf(t *testing.T) {
	host := newPageHost(
		memory.ElementSpec{ID: "solo", Classes: []string{"group"}, Top: 0, Height: 10},
	)
	b := bus.New()

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b",
		domain.AttrClickTrigger: "#solo",
		domain.AttrCascade:      ".group",
	})
	e, err := runtime.NewEngine("solo", cfg, host, runtime.WithBus(b))
	require.NoError(t, err)
	defer e.Close()

	// A self-subscription would loop a->b->a forever; one click means one
	// transition.
	host.Click("solo")
	assert.True(t, host.HasClass("solo", "b"))
}

func TestEngineCloseCancelsDelegations(t *testing.T) {
	host := newPageHost(memory.ElementSpec{ID: "el", Top: 100, Height: 100})

	cfg := compile(t, map[string]string{
		domain.AttrStates:       "a b",
		domain.AttrClickTrigger: "#el",
	})
	e, err := runtime.NewEngine("el", cfg, host)
	require.NoError(t, err)

	e.Close()
	e.Close() // safe to repeat

	host.Click("el")
	assert.True(t, host.HasClass("el", "a"))
}
