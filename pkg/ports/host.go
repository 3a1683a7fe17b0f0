package ports

// Geometry is an element's bounding box in page coordinates.
type Geometry struct {
	Top    float64
	Height float64
}

// Viewport is the visible window over the page.
type Viewport struct {
	Height    float64
	ScrollTop float64
}

// Event types delivered through delegation.
const (
	EventClick        = "click"
	EventPointerEnter = "pointerenter"
	EventPointerLeave = "pointerleave"
	EventScroll       = "scroll"
	EventResize       = "resize"
)

// Host is the DOM-like collaborator that owns the element tree. The engine
// only ever reads attributes and geometry, mutates class lists, and
// registers delegated event handlers; everything else about the tree is the
// host's business.
//
// Scroll and resize handlers are registered with an empty selector: they are
// document-level, not element-level.
type Host interface {
	// Configured returns, in document order, the IDs of elements carrying
	// any trigger configuration attribute.
	Configured() []string

	// Attributes returns the element's raw attribute map.
	Attributes(id string) (map[string]string, error)

	// SetAttribute writes one attribute. Used only by the container
	// propagation step before engines are constructed.
	SetAttribute(id, key, value string) error

	// Query returns the IDs of elements matching the selector, in document
	// order.
	Query(selector string) []string

	// Geometry returns the element's bounding box.
	Geometry(id string) (Geometry, error)

	// Viewport returns the current window geometry.
	Viewport() Viewport

	// ApplyState removes every class in all from the element and adds the
	// state class.
	ApplyState(id, state string, all []string) error

	// ApplyProgress hands the normalized scroll progress to the style layer.
	ApplyProgress(id string, progress float64) error

	// Delegate registers a handler invoked with the matched element's ID
	// whenever an event of the given type bubbles through an element
	// matching the selector. The returned func unregisters the handler.
	Delegate(eventType, selector string, handler func(targetID string)) (cancel func(), err error)
}
