// Package memory provides an in-memory host: a scriptable fake page with
// elements, attributes, geometry and event delegation. It backs the test
// suite and the CLI simulator; its selector matcher is deliberately small
// (#id, .class, tag, *, comma lists) because selector-engine internals
// belong to real host environments.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

type element struct {
	id      string
	tag     string
	parent  string
	classes map[string]struct{}
	attrs   map[string]string
	top     float64
	height  float64
}

type delegation struct {
	id       int
	event    string
	selector string
	handler  func(targetID string)
}

// Host implements ports.Host over an in-memory element tree.
// Safe for concurrent use; event handlers run outside the host's lock.
type Host struct {
	mu          sync.Mutex
	order       []string
	elements    map[string]*element
	viewport    ports.Viewport
	delegations []*delegation
	nextDelID   int
	progress    map[string]float64
}

var _ ports.Host = (*Host)(nil)

// NewHost builds a host from a page spec. Elements without an ID get a
// generated one.
func NewHost(spec PageSpec) *Host {
	h := &Host{
		elements: make(map[string]*element),
		progress: make(map[string]float64),
		viewport: ports.Viewport{Height: spec.Viewport.Height, ScrollTop: spec.Viewport.ScrollTop},
	}
	if h.viewport.Height <= 0 {
		h.viewport.Height = 800
	}
	for _, es := range spec.Elements {
		h.AddElement(es)
	}
	return h
}

// AddElement inserts one element at the end of the document order and
// returns its ID.
func (h *Host) AddElement(spec ElementSpec) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	el := &element{
		id:      id,
		tag:     spec.Tag,
		parent:  spec.Parent,
		classes: make(map[string]struct{}),
		attrs:   make(map[string]string),
		top:     spec.Top,
		height:  spec.Height,
	}
	if el.tag == "" {
		el.tag = "div"
	}
	for _, c := range spec.Classes {
		el.classes[c] = struct{}{}
	}
	for k, v := range spec.Attributes {
		el.attrs[k] = v
	}
	h.elements[id] = el
	h.order = append(h.order, id)
	return id
}

// --- ports.Host ---

func (h *Host) Configured() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ids []string
	for _, id := range h.order {
		el := h.elements[id]
		if _, ok := el.attrs[domain.AttrTarget]; ok {
			ids = append(ids, id)
			continue
		}
		for _, key := range domain.TriggerAttrs {
			if _, ok := el.attrs[key]; ok {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

func (h *Host) Attributes(id string) (map[string]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	attrs := make(map[string]string, len(el.attrs))
	for k, v := range el.attrs {
		attrs[k] = v
	}
	return attrs, nil
}

func (h *Host) SetAttribute(id, key, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	el.attrs[key] = value
	return nil
}

func (h *Host) Query(selector string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ids []string
	for _, id := range h.order {
		if h.matchesLocked(h.elements[id], selector) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (h *Host) Geometry(id string) (ports.Geometry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return ports.Geometry{}, fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	return ports.Geometry{Top: el.top, Height: el.height}, nil
}

func (h *Host) Viewport() ports.Viewport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport
}

func (h *Host) ApplyState(id, state string, all []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	for _, s := range all {
		delete(el.classes, s)
	}
	el.classes[state] = struct{}{}
	return nil
}

func (h *Host) ApplyProgress(id string, progress float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.elements[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	h.progress[id] = progress
	return nil
}

func (h *Host) Delegate(eventType, selector string, handler func(targetID string)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextDelID++
	d := &delegation{id: h.nextDelID, event: eventType, selector: selector, handler: handler}
	h.delegations = append(h.delegations, d)

	id := d.id
	return func() { h.undelegate(id) }, nil
}

func (h *Host) undelegate(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, d := range h.delegations {
		if d.id == id {
			h.delegations = append(h.delegations[:i:i], h.delegations[i+1:]...)
			return
		}
	}
}

// --- simulation drivers ---

// Click simulates a click on the element; the event bubbles through its
// ancestor chain.
func (h *Host) Click(id string) {
	h.dispatchBubbling(ports.EventClick, id)
}

// HoverEnter simulates the pointer entering the element.
func (h *Host) HoverEnter(id string) {
	h.dispatchBubbling(ports.EventPointerEnter, id)
}

// HoverLeave simulates the pointer leaving the element.
func (h *Host) HoverLeave(id string) {
	h.dispatchBubbling(ports.EventPointerLeave, id)
}

// ScrollTo moves the viewport and notifies every scroll listener.
func (h *Host) ScrollTo(top float64) {
	h.mu.Lock()
	h.viewport.ScrollTop = top
	handlers := h.documentHandlersLocked(ports.EventScroll)
	h.mu.Unlock()

	for _, fn := range handlers {
		fn("")
	}
}

// Resize changes the viewport height and notifies every resize listener.
func (h *Host) Resize(height float64) {
	h.mu.Lock()
	h.viewport.Height = height
	handlers := h.documentHandlersLocked(ports.EventResize)
	h.mu.Unlock()

	for _, fn := range handlers {
		fn("")
	}
}

// Classes returns the element's current class list.
func (h *Host) Classes(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return nil
	}
	classes := make([]string, 0, len(el.classes))
	for c := range el.classes {
		classes = append(classes, c)
	}
	return classes
}

// HasClass reports whether the element currently carries the class.
func (h *Host) HasClass(id, class string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.elements[id]
	if !ok {
		return false
	}
	_, has := el.classes[class]
	return has
}

// Progress returns the last applied scroll progress for the element.
func (h *Host) Progress(id string) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress[id]
}

// SetGeometry moves an element, e.g. to simulate layout changes.
func (h *Host) SetGeometry(id string, top, height float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if el, ok := h.elements[id]; ok {
		el.top = top
		el.height = height
	}
}

// --- internals ---

// dispatchBubbling delivers the event to every delegation whose selector
// matches the target or one of its ancestors. Handlers run outside the lock
// because they re-enter the host.
func (h *Host) dispatchBubbling(event, targetID string) {
	h.mu.Lock()
	type invocation struct {
		fn func(string)
		id string
	}
	var calls []invocation
	for _, d := range h.delegations {
		if d.event != event || d.selector == "" {
			continue
		}
		for _, nodeID := range h.bubblePathLocked(targetID) {
			if h.matchesLocked(h.elements[nodeID], d.selector) {
				calls = append(calls, invocation{fn: d.handler, id: nodeID})
				break
			}
		}
	}
	h.mu.Unlock()

	for _, c := range calls {
		c.fn(c.id)
	}
}

// bubblePathLocked yields the target and its ancestors, target first.
func (h *Host) bubblePathLocked(targetID string) []string {
	var path []string
	cur := targetID
	for cur != "" {
		el, ok := h.elements[cur]
		if !ok {
			break
		}
		path = append(path, cur)
		cur = el.parent
	}
	return path
}

func (h *Host) documentHandlersLocked(event string) []func(string) {
	var handlers []func(string)
	for _, d := range h.delegations {
		if d.event == event && d.selector == "" {
			handlers = append(handlers, d.handler)
		}
	}
	return handlers
}

// matchesLocked evaluates the small selector grammar: comma-separated
// alternatives of "*", "#id", ".class" or a tag name.
func (h *Host) matchesLocked(el *element, selector string) bool {
	if el == nil {
		return false
	}
	for _, alt := range strings.Split(selector, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		switch {
		case alt == "*":
			return true
		case strings.HasPrefix(alt, "#"):
			if el.id == alt[1:] {
				return true
			}
		case strings.HasPrefix(alt, "."):
			if _, ok := el.classes[alt[1:]]; ok {
				return true
			}
		default:
			if el.tag == alt {
				return true
			}
		}
	}
	return false
}
