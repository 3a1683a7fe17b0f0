package domain

// Attribute names of the configuration surface read from the host.
const (
	AttrStates        = "states"
	AttrInitialState  = "initial-state"
	AttrAdvancement   = "advancement"
	AttrScrollPoints  = "scroll-points"
	AttrScrollRanges  = "scroll-ranges"
	AttrActiveSpace   = "active-space"
	AttrDebounce      = "debounce"
	AttrDelay         = "delay"
	AttrTimer         = "timer"
	AttrViewportAlign = "viewport-align"
	AttrScrollAnimate = "scroll-animate"
	AttrHoverEvents   = "hover-events"
	AttrClickTrigger  = "trigger-click"
	AttrHoverTrigger  = "trigger-hover"
	AttrCascade       = "trigger-cascade"

	// AttrTarget marks a container whose trigger attributes are copied onto
	// the descendants matched by the target selector.
	AttrTarget = "target"
)

// TriggerAttrs lists every attribute propagated from a container to its
// targets. AttrTarget itself is deliberately excluded.
var TriggerAttrs = []string{
	AttrStates, AttrInitialState, AttrAdvancement,
	AttrScrollPoints, AttrScrollRanges, AttrActiveSpace,
	AttrDebounce, AttrDelay, AttrTimer,
	AttrViewportAlign, AttrScrollAnimate, AttrHoverEvents,
	AttrClickTrigger, AttrHoverTrigger, AttrCascade,
}

// DisabledKeyword turns off active-space gating when used as the attribute
// value.
const DisabledKeyword = "disabled"
