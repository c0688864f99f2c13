package scene

import (
	"math"
	"slices"
)

// Event types dispatched by the container.
const (
	EventClick = "click"
)

// Event is delivered to listeners while it bubbles from Target toward the
// root.
type Event struct {
	Type string
	// Target is the element the event was dispatched on.
	Target *Element
	// Current is the element whose listener is running.
	Current *Element
	// X and Y are canvas coordinates for pointer events.
	X, Y float64

	stopped bool
}

// StopPropagation prevents delivery to further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Handler handles a dispatched event.
type Handler func(*Event)

type listener struct {
	typ string
	fn  Handler
}

// Container is the drawing target a Renderer fills: a layout box, the
// top-level elements drawn into it and the listeners attached to them.
type Container struct {
	width, height float64
	roots         []*Element
	listeners     map[*Element][]listener
	generation    uint64
}

// NewContainer creates an empty container with the given layout box.
func NewContainer(width, height float64) *Container {
	return &Container{
		width:     width,
		height:    height,
		listeners: make(map[*Element][]listener),
	}
}

// Bounds returns the layout box.
func (c *Container) Bounds() (width, height float64) { return c.width, c.height }

// Resize changes the layout box. The current tree is left untouched.
func (c *Container) Resize(width, height float64) {
	c.width, c.height = width, height
}

// Append attaches a detached element as a new top-level child.
func (c *Container) Append(e *Element) *Element {
	if e.parent != nil {
		e.parent.removeChild(e)
	}
	c.roots = append(c.roots, e)
	return e
}

// Children returns the top-level elements.
func (c *Container) Children() []*Element { return slices.Clone(c.roots) }

// Generation counts Clear calls.
func (c *Container) Generation() uint64 { return c.generation }

// Clear removes every element and detaches every listener.
func (c *Container) Clear() {
	c.roots = nil
	clear(c.listeners)
	c.generation++
}

// Contains reports whether e is part of the current tree.
func (c *Container) Contains(e *Element) bool {
	return e != nil && slices.Contains(c.roots, e.Root())
}

// AddListener registers fn for events of typ on e. Listeners on elements
// outside the current tree are ignored.
func (c *Container) AddListener(e *Element, typ string, fn Handler) {
	if fn == nil || !c.Contains(e) {
		return
	}
	c.listeners[e] = append(c.listeners[e], listener{typ: typ, fn: fn})
}

// ListenerCount returns the number of registered listeners.
func (c *Container) ListenerCount() int {
	n := 0
	for _, ls := range c.listeners {
		n += len(ls)
	}
	return n
}

// Dispatch delivers an event to target's listeners and then to each
// ancestor's, stopping early if a listener calls StopPropagation. It returns
// the number of listeners invoked. Targets that are no longer attached (for
// example, elements from a previous render) receive nothing.
func (c *Container) Dispatch(target *Element, typ string, x, y float64) int {
	if !c.Contains(target) {
		return 0
	}
	ev := &Event{Type: typ, Target: target, X: x, Y: y}
	calls := 0
	for el := target; el != nil && !ev.stopped; el = el.parent {
		ev.Current = el
		for _, l := range slices.Clone(c.listeners[el]) {
			if l.typ != typ {
				continue
			}
			l.fn(ev)
			calls++
		}
	}
	return calls
}

// Click dispatches a click on target.
func (c *Container) Click(target *Element) int {
	return c.Dispatch(target, EventClick, 0, 0)
}

// ClickAt hit-tests the point and dispatches a click on the topmost element
// under it. It returns the hit element, or nil when nothing was hit.
func (c *Container) ClickAt(x, y float64) *Element {
	target := c.HitTest(x, y)
	if target != nil {
		c.Dispatch(target, EventClick, x, y)
	}
	return target
}

// lineTolerance is the pick distance for lines, in canvas units.
const lineTolerance = 4.0

// HitTest returns the topmost circle, line or rect containing the point.
// Later elements paint over earlier ones and win.
func (c *Container) HitTest(x, y float64) *Element {
	var painted []*Element
	for _, root := range c.roots {
		root.Walk(func(el *Element) bool {
			painted = append(painted, el)
			return true
		})
	}
	for i := len(painted) - 1; i >= 0; i-- {
		if hits(painted[i], x, y) {
			return painted[i]
		}
	}
	return nil
}

func hits(el *Element, x, y float64) bool {
	switch el.Tag {
	case "circle":
		cx, ok1 := el.Num("cx")
		cy, ok2 := el.Num("cy")
		r, ok3 := el.Num("r")
		return ok1 && ok2 && ok3 && math.Hypot(x-cx, y-cy) <= r
	case "rect":
		rx, _ := el.Num("x")
		ry, _ := el.Num("y")
		w, ok1 := el.Num("width")
		h, ok2 := el.Num("height")
		return ok1 && ok2 && x >= rx && x <= rx+w && y >= ry && y <= ry+h
	case "line":
		x1, ok1 := el.Num("x1")
		y1, ok2 := el.Num("y1")
		x2, ok3 := el.Num("x2")
		y2, ok4 := el.Num("y2")
		return ok1 && ok2 && ok3 && ok4 && segmentDistance(x, y, x1, y1, x2, y2) <= lineTolerance
	}
	return false
}

func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := max(0, min(1, ((px-x1)*dx+(py-y1)*dy)/lenSq))
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}
