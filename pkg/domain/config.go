package domain

import "time"

// Advancement selects the rule applied when a trigger fires.
type Advancement string

const (
	// AdvancementAdvance cycles through the state list, one step per firing.
	AdvancementAdvance Advancement = "advance"
	// AdvancementAdvanceReset alternates between stepping to the next
	// non-initial state and resetting back to the initial state.
	AdvancementAdvanceReset Advancement = "advance-reset"
	// AdvancementToggleInitial oscillates between the initial state and its
	// successor, regardless of how many states are declared.
	AdvancementToggleInitial Advancement = "toggle-initial"
	// AdvancementAligned maps the element's scroll range index directly to a
	// state. Discrete trigger firings are accepted but have no effect.
	AdvancementAligned Advancement = "aligned"
	// AdvancementNone marks an element whose advancement keyword was not
	// recognized. The element initializes but never advances.
	AdvancementNone Advancement = ""
)

// ViewportAlign selects which edge of the element's bounding box is used as
// the reference point for viewport-fraction computations.
type ViewportAlign string

const (
	AlignTop    ViewportAlign = "top"
	AlignMiddle ViewportAlign = "middle"
	AlignBottom ViewportAlign = "bottom"
)

// ActiveSpace is the viewport-fraction window within which an element's
// triggers are permitted to take effect.
type ActiveSpace struct {
	Min      float64
	Max      float64
	Disabled bool
}

// DefaultActiveSpace covers well beyond the viewport, so triggers are
// effectively always active.
var DefaultActiveSpace = ActiveSpace{Min: -1, Max: 2}

// Contains reports whether the fraction falls inside the window.
// A disabled window contains everything.
func (a ActiveSpace) Contains(frac float64) bool {
	if a.Disabled {
		return true
	}
	return frac >= a.Min && frac <= a.Max
}

// DebounceSpec configures scroll/resize coalescing for one element.
// Explicit is false when the element carries no override and the
// process-wide defaults apply.
type DebounceSpec struct {
	Enabled  bool
	Wait     time.Duration
	Explicit bool
}

// HoverEvents is the subset of pointer events the element reacts to.
type HoverEvents struct {
	Enter bool
	Leave bool
	Hold  bool
}

// DefaultHoverEvents reacts to enter and leave.
var DefaultHoverEvents = HoverEvents{Enter: true, Leave: true}

// TimerMode classifies a timer program.
type TimerMode string

const (
	// TimerDelay fires once after the single configured duration.
	TimerDelay TimerMode = "delay"
	// TimerLoop fires every configured duration, indefinitely.
	TimerLoop TimerMode = "loop"
	// TimerInterval fires after each duration in sequence, then stops.
	TimerInterval TimerMode = "interval"
	// TimerLoopInterval is like interval but restarts from the first
	// duration after exhausting the sequence.
	TimerLoopInterval TimerMode = "loop interval"
)

// TimerSpec is a parsed timer attribute of shape "<mode>:<spec>".
type TimerSpec struct {
	Mode      TimerMode
	Durations []time.Duration
}

// Repeats reports whether the program restarts after its last duration.
func (t TimerSpec) Repeats() bool {
	return t.Mode == TimerLoop || t.Mode == TimerLoopInterval
}

// TriggerConfig is the typed, validated configuration of one animated
// element. It is created once by the compiler and owned by the element's
// engine; the engine never mutates it.
type TriggerConfig struct {
	// States is the declared state sequence, order preserved, duplicates
	// included. Never empty for a valid config.
	States []string

	// AllStates is the set of unique state names, used when clearing state
	// classes from the element.
	AllStates []string

	// InitialState is always an element of States.
	InitialState string

	// InitialIndex is the index of InitialState within States.
	InitialIndex int

	Advancement Advancement

	// Ranges is sorted ascending by Start and pairwise non-overlapping.
	Ranges []Range

	ActiveSpace   ActiveSpace
	Debounce      DebounceSpec
	Delay         time.Duration
	ViewportAlign ViewportAlign
	ScrollAnimate bool
	Hover         HoverEvents

	// Trigger source selectors. Empty means the source is not wired.
	ClickSelector   string
	HoverSelector   string
	CascadeSelector string

	// Timer is nil when no timer attribute is configured.
	Timer *TimerSpec
}

// StateIndex returns the index of name within States, or -1.
func (c *TriggerConfig) StateIndex(name string) int {
	for i, s := range c.States {
		if s == name {
			return i
		}
	}
	return -1
}

// NeedsScroll reports whether the element must observe scroll/resize events.
func (c *TriggerConfig) NeedsScroll() bool {
	return len(c.Ranges) > 0 || c.ScrollAnimate
}
