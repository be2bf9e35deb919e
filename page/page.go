// Package page is a headless document that implements the host
// capabilities: elements laid out on a scrollable canvas, transforms and a
// visibility observer that pushes changes as the viewport moves.
package page

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/scrollfx/host"
)

// ElementSpec describes one element of a Layout.
type ElementSpec struct {
	ID     string            `yaml:"id"`
	Class  string            `yaml:"class"`
	Left   float64           `yaml:"left"`
	Top    float64           `yaml:"top"`
	Width  float64           `yaml:"width"`
	Height float64           `yaml:"height"`
	Colour string            `yaml:"colour"`
	Attrs  map[string]string `yaml:"attrs"`
}

// Layout describes a page and its elements.
type Layout struct {
	Width         float64       `yaml:"width"`
	Height        float64       `yaml:"height"`
	ContentWidth  float64       `yaml:"contentWidth"`
	ContentHeight float64       `yaml:"contentHeight"`
	Elements      []ElementSpec `yaml:"elements"`
}

// Element is a box on the page. The box is in document coordinates without
// any transform.
type Element struct {
	page      *Page
	id        string
	classes   []string
	attrs     map[string]string
	box       host.Rect
	transform host.Vec3
	colour    colorful.Color
	hasColour bool
	highlight *colorful.Color

	// Writes counts SetTransform calls.
	Writes int
	// FailBounds and FailTransform make the matching calls fail.
	FailBounds    error
	FailTransform error
	// PanicOnWrite makes SetTransform panic.
	PanicOnWrite bool
}

// ID implements host.Element.
func (e *Element) ID() string { return e.id }

// Bounds implements host.Element.
func (e *Element) Bounds() (host.Rect, error) {
	if e.FailBounds != nil {
		return host.Rect{}, e.FailBounds
	}
	sx, sy := e.page.Scroll()
	return e.box.Translate(e.transform.X-sx, e.transform.Y-sy), nil
}

// Transform implements host.Element.
func (e *Element) Transform() host.Vec3 { return e.transform }

// SetTransform implements host.Element.
func (e *Element) SetTransform(v host.Vec3) error {
	if e.PanicOnWrite {
		panic(fmt.Sprintf("element %s is detached", e.id))
	}
	if e.FailTransform != nil {
		return e.FailTransform
	}
	e.Writes++
	e.transform = v
	return nil
}

// Attr implements host.Element.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	e.attrs[name] = value
}

// Highlight implements host.Highlighter.
func (e *Element) Highlight(c colorful.Color) {
	e.highlight = &c
}

// ClearHighlight implements host.Highlighter.
func (e *Element) ClearHighlight() {
	e.highlight = nil
}

// Highlighted returns the debug tint, if any.
func (e *Element) Highlighted() (colorful.Color, bool) {
	if e.highlight == nil {
		return colorful.Color{}, false
	}
	return *e.highlight, true
}

// Box returns the untransformed document box.
func (e *Element) Box() host.Rect { return e.box }

// Colour returns the element's fill colour and whether the layout set one.
func (e *Element) Colour() (colorful.Color, bool) { return e.colour, e.hasColour }

// Move relocates the untransformed box, as a layout change would.
func (e *Element) Move(box host.Rect) {
	e.box = box
	e.page.notify()
}

func (e *Element) hasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

// Page is a scrollable document holding Elements.
type Page struct {
	width, height  float64
	contentW       float64
	contentH       float64
	scrollX        float64
	scrollY        float64
	elements       []*Element
	observers      []*Observer
	ScrollRequests int
}

// New creates an instance of a Page with the given viewport and content
// sizes.
func New(width, height, contentWidth, contentHeight float64) *Page {
	p := new(Page)
	p.width = width
	p.height = height
	p.contentW = math.Max(contentWidth, width)
	p.contentH = math.Max(contentHeight, height)
	return p
}

// FromLayout builds a Page and its elements.
func FromLayout(l Layout) (*Page, error) {
	p := New(l.Width, l.Height, l.ContentWidth, l.ContentHeight)
	for _, spec := range l.Elements {
		el, err := p.Add(spec.ID, host.Rect{
			Left: spec.Left, Top: spec.Top,
			Right: spec.Left + spec.Width, Bottom: spec.Top + spec.Height,
		}, spec.Class)
		if err != nil {
			return nil, err
		}
		for k, v := range spec.Attrs {
			el.attrs[k] = v
		}
		if spec.Colour != "" {
			c, err := colorful.Hex(spec.Colour)
			if err != nil {
				return nil, fmt.Errorf("element %s colour: %w", spec.ID, err)
			}
			el.colour = c
			el.hasColour = true
		}
	}
	return p, nil
}

// Add places a new element on the page. Classes are space separated.
func (p *Page) Add(id string, box host.Rect, classes string) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("element id is empty")
	}
	if p.Element(id) != nil {
		return nil, fmt.Errorf("element %s already exists", id)
	}
	el := &Element{
		page:    p,
		id:      id,
		classes: strings.Fields(classes),
		attrs:   make(map[string]string),
		box:     box,
	}
	p.elements = append(p.elements, el)
	p.notify()
	return el, nil
}

// Detach removes an element from the page.
func (p *Page) Detach(id string) {
	for i, el := range p.elements {
		if el.id == id {
			p.elements = append(p.elements[:i], p.elements[i+1:]...)
			for _, o := range p.observers {
				o.Unobserve(el)
			}
			return
		}
	}
}

// Element returns the element with the given id, or nil.
func (p *Page) Element(id string) *Element {
	for _, el := range p.elements {
		if el.id == id {
			return el
		}
	}
	return nil
}

// Elements returns every element in document order.
func (p *Page) Elements() []*Element {
	out := make([]*Element, len(p.elements))
	copy(out, p.elements)
	return out
}

// Query implements host.Page. Supported selectors are "*", "#id", ".class"
// and "[attr]", optionally combined as a comma separated list.
func (p *Page) Query(selector string) []host.Element {
	var out []host.Element
	parts := strings.Split(selector, ",")
	for _, el := range p.elements {
		for _, part := range parts {
			if matches(el, strings.TrimSpace(part)) {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

func matches(el *Element, sel string) bool {
	switch {
	case sel == "":
		return false
	case sel == "*":
		return true
	case strings.HasPrefix(sel, "#"):
		return el.id == sel[1:]
	case strings.HasPrefix(sel, "."):
		return el.hasClass(sel[1:])
	case strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]"):
		_, ok := el.attrs[sel[1:len(sel)-1]]
		return ok
	}
	return false
}

// Viewport implements host.Page.
func (p *Page) Viewport() (float64, float64) {
	return p.width, p.height
}

// Resize changes the viewport size and re-clamps the scroll offsets.
func (p *Page) Resize(width, height float64) {
	p.width = width
	p.height = height
	p.contentW = math.Max(p.contentW, width)
	p.contentH = math.Max(p.contentH, height)
	p.ScrollTo(p.scrollX, p.scrollY)
}

// Scroll implements host.Page.
func (p *Page) Scroll() (float64, float64) {
	return p.scrollX, p.scrollY
}

// ScrollLimit implements host.Page.
func (p *Page) ScrollLimit() (float64, float64) {
	return p.contentW - p.width, p.contentH - p.height
}

// ScrollTo implements host.Page.
func (p *Page) ScrollTo(x, y float64) {
	p.ScrollRequests++
	mx, my := p.ScrollLimit()
	p.scrollX = clamp(x, 0, mx)
	p.scrollY = clamp(y, 0, my)
	p.notify()
}

func (p *Page) notify() {
	for _, o := range p.observers {
		o.Update()
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
