package page

import "github.com/matt-g-everett/scrollfx/host"

type observation struct {
	el      *Element
	margin  float64
	fn      func(bool)
	visible bool
	known   bool
}

// Observer implements host.VisibilityObserver for a Page. Changes are pushed
// whenever the page scrolls, resizes or an element moves.
type Observer struct {
	page    *Page
	entries []*observation
}

// NewObserver creates an Observer attached to p.
func NewObserver(p *Page) *Observer {
	o := new(Observer)
	o.page = p
	p.observers = append(p.observers, o)
	return o
}

// Observe implements host.VisibilityObserver. The initial state is pushed
// straight away.
func (o *Observer) Observe(el host.Element, margin float64, fn func(bool)) {
	pel, ok := el.(*Element)
	if !ok || pel.page != o.page {
		return
	}
	o.Unobserve(el)
	entry := &observation{el: pel, margin: margin, fn: fn}
	o.entries = append(o.entries, entry)
	o.check(entry)
}

// Unobserve implements host.VisibilityObserver.
func (o *Observer) Unobserve(el host.Element) {
	for i, entry := range o.entries {
		if entry.el.ID() == el.ID() {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return
		}
	}
}

// Disconnect implements host.VisibilityObserver.
func (o *Observer) Disconnect() {
	o.entries = nil
	for i, other := range o.page.observers {
		if other == o {
			o.page.observers = append(o.page.observers[:i], o.page.observers[i+1:]...)
			break
		}
	}
}

// Observed returns the number of elements being watched.
func (o *Observer) Observed() int {
	return len(o.entries)
}

// Update recomputes intersections and pushes the changes.
func (o *Observer) Update() {
	// Callbacks may unobserve entries.
	entries := make([]*observation, len(o.entries))
	copy(entries, o.entries)
	for _, entry := range entries {
		o.check(entry)
	}
}

func (o *Observer) check(entry *observation) {
	sx, sy := o.page.Scroll()
	w, h := o.page.Viewport()
	// Intersection uses layout boxes, not transformed ones.
	box := entry.el.box.Translate(-sx, -sy)
	visible := box.Bottom >= -entry.margin && box.Top <= h+entry.margin &&
		box.Right >= -entry.margin && box.Left <= w+entry.margin
	if entry.known && visible == entry.visible {
		return
	}
	entry.known = true
	entry.visible = visible
	entry.fn(visible)
}
