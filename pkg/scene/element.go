package scene

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Element is a node of the visual tree. Tags and attribute names follow SVG
// so sinks can serialize the tree directly.
type Element struct {
	Tag  string
	ID   string
	Text string

	classes  []string
	attrs    map[string]string
	children []*Element
	parent   *Element
}

// Attr is a name/value pair returned in sorted order by Element.Attrs.
type Attr struct {
	Name, Value string
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// SetAttr sets an attribute and returns e for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	return e
}

// SetNum sets a numeric attribute rounded to two decimals.
func (e *Element) SetNum(name string, v float64) *Element {
	return e.SetAttr(name, FormatNum(v))
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Num parses a numeric attribute. Missing or malformed values report false.
func (e *Element) Num(name string) (float64, bool) {
	v, ok := e.attrs[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// Attrs returns every attribute sorted by name.
func (e *Element) Attrs() []Attr {
	names := slices.Sorted(maps.Keys(e.attrs))
	out := make([]Attr, len(names))
	for i, n := range names {
		out[i] = Attr{Name: n, Value: e.attrs[n]}
	}
	return out
}

// AddClass appends classes that are not already present.
func (e *Element) AddClass(classes ...string) *Element {
	for _, c := range classes {
		if c != "" && !slices.Contains(e.classes, c) {
			e.classes = append(e.classes, c)
		}
	}
	return e
}

// RemoveClass removes a class if present.
func (e *Element) RemoveClass(class string) *Element {
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == class })
	return e
}

// HasClass reports whether e carries class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

// Classes returns the class list in insertion order.
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

// ClassName returns the space-separated class attribute value.
func (e *Element) ClassName() string { return strings.Join(e.classes, " ") }

// Append adds child as the last child of e and returns child. A child that
// already has a parent is moved.
func (e *Element) Append(child *Element) *Element {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	return child
}

// AppendNew creates, appends and returns a child with the given tag.
func (e *Element) AppendNew(tag string, classes ...string) *Element {
	return e.Append(NewElement(tag).AddClass(classes...))
}

func (e *Element) removeChild(child *Element) {
	e.children = slices.DeleteFunc(e.children, func(c *Element) bool { return c == child })
	child.parent = nil
}

// Children returns the direct children in paint order.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

// Parent returns the parent element, or nil for a root.
func (e *Element) Parent() *Element { return e.parent }

// Root returns the topmost ancestor of e.
func (e *Element) Root() *Element {
	for e.parent != nil {
		e = e.parent
	}
	return e
}

// Walk visits e and its descendants in paint order until fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindAll returns descendants (including e) matching pred in paint order.
func (e *Element) FindAll(pred func(*Element) bool) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if pred(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ByClass returns descendants carrying class.
func (e *Element) ByClass(class string) []*Element {
	return e.FindAll(func(el *Element) bool { return el.HasClass(class) })
}

// ByTag returns descendants with the given tag.
func (e *Element) ByTag(tag string) []*Element {
	return e.FindAll(func(el *Element) bool { return el.Tag == tag })
}

// Closest returns the nearest ancestor-or-self matching pred.
func (e *Element) Closest(pred func(*Element) bool) *Element {
	for el := e; el != nil; el = el.parent {
		if pred(el) {
			return el
		}
	}
	return nil
}

// FormatNum renders v with at most two decimals and no trailing zeros.
func FormatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // normalizes -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
