package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateChanged     EventType = "state_changed"
	EventTriggerFired     EventType = "trigger_fired"
	EventTriggerSuppress  EventType = "trigger_suppressed"
	EventScrollProgress   EventType = "scroll_progress"
)

// TriggerSource identifies the origin of a trigger firing.
type TriggerSource string

const (
	SourceClick   TriggerSource = "click"
	SourceHover   TriggerSource = "hover"
	SourceTimer   TriggerSource = "timer"
	SourceScroll  TriggerSource = "scroll"
	SourceCascade TriggerSource = "cascade"
	SourceManual  TriggerSource = "manual"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StateChangedEvent is emitted on every successful transition. It is the
// sole signal consumed by the cascade bus.
type StateChangedEvent struct {
	EventBase
	ElementID string        `json:"element_id"`
	State     string        `json:"state"`
	Index     int           `json:"index"`
	Source    TriggerSource `json:"source"`
}

// NewStateChangedEvent builds a timestamped state-change notification.
func NewStateChangedEvent(elementID, state string, index int, source TriggerSource) *StateChangedEvent {
	return &StateChangedEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventStateChanged},
		ElementID: elementID,
		State:     state,
		Index:     index,
		Source:    source,
	}
}

// TriggerEvent represents one trigger firing, before advancement.
type TriggerEvent struct {
	EventBase
	ElementID string        `json:"element_id"`
	Source    TriggerSource `json:"source"`
	// Suppressed is true when the active-space gate rejected the firing.
	Suppressed bool `json:"suppressed,omitempty"`
}

// ProgressEvent carries the normalized scroll position within the occupied
// range, for consumption by the style layer.
type ProgressEvent struct {
	EventBase
	ElementID string  `json:"element_id"`
	Progress  float64 `json:"progress"`
}

// LifecycleHooks defines callbacks for engine observability. Any field may
// be nil.
type LifecycleHooks struct {
	OnStateChange       func(context.Context, *StateChangedEvent)
	OnTriggerFired      func(context.Context, *TriggerEvent)
	OnTriggerSuppressed func(context.Context, *TriggerEvent)
	OnScrollProgress    func(context.Context, *ProgressEvent)
}

// Join combines two hook sets; both callbacks run, a-first.
func (h LifecycleHooks) Join(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStateChange:       joinHook(h.OnStateChange, other.OnStateChange),
		OnTriggerFired:      joinHook(h.OnTriggerFired, other.OnTriggerFired),
		OnTriggerSuppressed: joinHook(h.OnTriggerSuppressed, other.OnTriggerSuppressed),
		OnScrollProgress:    joinHook(h.OnScrollProgress, other.OnScrollProgress),
	}
}

func joinHook[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
