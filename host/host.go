// Package host describes the page capabilities the effects call into:
// element geometry and transforms, scrolling, and pushed visibility.
package host

import "github.com/lucasb-eyer/go-colorful"

// Vec3 is a translation in page units.
type Vec3 struct {
	X, Y, Z float64
}

// Rect is an axis-aligned box. Element bounds are viewport relative.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Element is a page node an effect can measure and move.
type Element interface {
	// ID identifies the element uniquely within its page.
	ID() string
	// Bounds returns the element's box in viewport coordinates with its
	// current transform applied.
	Bounds() (Rect, error)
	Transform() Vec3
	SetTransform(v Vec3) error
	Attr(name string) (string, bool)
}

// Highlighter is implemented by elements that can show a debug tint.
type Highlighter interface {
	Highlight(c colorful.Color)
	ClearHighlight()
}

// Page is the document being scrolled.
type Page interface {
	// Query returns the elements matching selector in document order.
	Query(selector string) []Element
	// Viewport returns the visible area size.
	Viewport() (width, height float64)
	// Scroll returns the current scroll offsets.
	Scroll() (x, y float64)
	// ScrollTo moves the viewport, clamped to the scroll limits.
	ScrollTo(x, y float64)
	// ScrollLimit returns the largest valid scroll offsets.
	ScrollLimit() (x, y float64)
}

// VisibilityObserver pushes visibility changes for observed elements. The
// margin grows the viewport on every side before intersecting.
type VisibilityObserver interface {
	Observe(el Element, margin float64, fn func(visible bool))
	Unobserve(el Element)
	Disconnect()
}
