package parallax

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/matt-g-everett/scrollfx/frame"
	"github.com/matt-g-everett/scrollfx/host"
)

// ErrDestroyed is returned by operations on a destroyed Parallax.
var ErrDestroyed = errors.New("parallax: destroyed")

// State is the loop state shared by every item.
type State struct {
	ScrollX    float64
	ScrollY    float64
	FrameCount uint64
	Running    bool
}

// ItemState is a read-only view of one tracked element.
type ItemState struct {
	ID        string
	X, Y      float64
	Speed     float64
	Direction Direction
	Visible   bool
}

// Hooks receive notifications from a Parallax. All are optional.
type Hooks struct {
	// OnError receives per-item failures. Processing continues regardless.
	OnError func(err error)
	// OnVisibility reports visibility changes.
	OnVisibility func(id string, visible bool)
}

type item struct {
	el       host.Element
	cfg      ItemConfig
	custom   bool
	baseline host.Vec3

	applied    struct{ X, Y float64 }
	hasApplied bool
	visible    bool

	// rect is in document coordinates, measured without transform.
	rect     host.Rect
	measured bool
}

// Parallax moves tracked elements in proportion to the scroll offset.
type Parallax struct {
	cfg      Config
	page     host.Page
	sched    frame.Scheduler
	observer host.VisibilityObserver
	hooks    Hooks

	items   map[string]*item
	order   []string
	visible map[string]struct{}

	state     State
	frame     frame.Handle
	scrolling bool
	dirty     bool
	loaded    bool
	destroyed bool

	throttle  *frame.Throttler
	scrollEnd *frame.Debouncer
	resize    *frame.Debouncer
}

// New creates an instance of a Parallax and registers the elements matching
// the configured selector. The observer may be nil, in which case visibility
// is computed from element geometry; a non-nil observer belongs to this
// instance and is disconnected by Destroy.
func New(page host.Page, sched frame.Scheduler, observer host.VisibilityObserver, cfg Config) *Parallax {
	p := new(Parallax)
	p.cfg = cfg.Normalize()
	p.page = page
	p.sched = sched
	p.observer = observer
	p.items = make(map[string]*item)
	p.visible = make(map[string]struct{})
	p.state.ScrollX, p.state.ScrollY = page.Scroll()

	p.throttle = frame.NewThrottler(sched, p.cfg.ScrollThrottle)
	p.scrollEnd = frame.NewDebouncer(sched, p.cfg.ScrollEndDelay, func() {
		p.scrolling = false
	})
	p.resize = frame.NewDebouncer(sched, p.cfg.ResizeDebounce, func() {
		p.state.ScrollX, p.state.ScrollY = p.page.Scroll()
		p.dirty = true
	})

	if p.cfg.Selector != "" {
		p.AddSelector(p.cfg.Selector)
	}
	p.debugf("created with %d items, observer=%v", len(p.order), p.usingObserver())
	return p
}

// On installs notification hooks.
func (p *Parallax) On(h Hooks) {
	p.hooks = h
}

// Config returns the effective configuration.
func (p *Parallax) Config() Config {
	return p.cfg
}

// State returns a copy of the loop state.
func (p *Parallax) State() State {
	return p.state
}

// Len returns the number of tracked items.
func (p *Parallax) Len() int {
	return len(p.order)
}

// VisibleCount returns the number of items currently visible.
func (p *Parallax) VisibleCount() int {
	return len(p.visible)
}

// Snapshot returns the state of every item in registration order.
func (p *Parallax) Snapshot() []ItemState {
	out := make([]ItemState, 0, len(p.order))
	for _, id := range p.order {
		it := p.items[id]
		x, y := it.baseline.X, it.baseline.Y
		if it.hasApplied {
			x, y = it.applied.X, it.applied.Y
		}
		out = append(out, ItemState{
			ID:        id,
			X:         x,
			Y:         y,
			Speed:     it.cfg.Speed,
			Direction: it.cfg.Direction,
			Visible:   it.visible,
		})
	}
	return out
}

func (p *Parallax) usingObserver() bool {
	return p.observer != nil && p.cfg.UseObserver
}

// Start begins updating items every frame. The first start counts as page
// load for geometry purposes.
func (p *Parallax) Start() {
	if p.destroyed || p.state.Running {
		return
	}
	if !p.loaded {
		p.HandleLoad()
	}
	p.state.Running = true
	p.frame = p.sched.RequestFrame(p.onFrame)
	p.debugf("started")
}

// Stop halts the frame loop. Item state is kept for a later Start.
func (p *Parallax) Stop() {
	if !p.state.Running {
		return
	}
	p.state.Running = false
	if p.frame != 0 {
		p.sched.CancelFrame(p.frame)
		p.frame = 0
	}
	p.debugf("stopped")
}

// Destroy stops the loop, cancels pending timers, restores every item to its
// baseline transform and releases the observer. Calling it again does
// nothing.
func (p *Parallax) Destroy() {
	if p.destroyed {
		return
	}
	p.Stop()
	p.throttle.Cancel()
	p.scrollEnd.Cancel()
	p.resize.Cancel()

	ids := append([]string(nil), p.order...)
	for _, id := range ids {
		p.Remove(id)
	}
	if p.observer != nil {
		p.observer.Disconnect()
	}
	p.destroyed = true
	p.debugf("destroyed")
}

// Add tracks el using settings from its attributes, falling back to the
// configured defaults. Adding an element that is already tracked is a no-op.
func (p *Parallax) Add(el host.Element) error {
	ic, err := p.itemConfigFor(el)
	if err != nil {
		return fmt.Errorf("parallax: item %s: %w", el.ID(), err)
	}
	return p.add(el, ic, false)
}

// AddWith tracks el with explicit settings.
func (p *Parallax) AddWith(el host.Element, ic ItemConfig) error {
	return p.add(el, ic.normalize(), true)
}

// AddSelector tracks every element matching selector and returns how many
// were added. Failures are reported through OnError and skipped.
func (p *Parallax) AddSelector(selector string) int {
	added := 0
	for _, el := range p.page.Query(selector) {
		if _, ok := p.items[el.ID()]; ok {
			continue
		}
		if err := p.Add(el); err != nil {
			p.report(err)
			continue
		}
		added++
	}
	return added
}

func (p *Parallax) add(el host.Element, ic ItemConfig, custom bool) error {
	if p.destroyed {
		return ErrDestroyed
	}
	id := el.ID()
	if _, ok := p.items[id]; ok {
		return nil
	}

	it := &item{el: el, cfg: ic, custom: custom}
	err := p.guard(id, func() error {
		it.baseline = el.Transform()
		if p.usingObserver() {
			return nil
		}
		return p.measure(it)
	})
	if err != nil {
		return err
	}

	p.items[id] = it
	p.order = append(p.order, id)
	if p.usingObserver() {
		p.observe(it)
	}
	p.debugf("added %s speed=%.2f direction=%v offset=%.1f", id, ic.Speed, ic.Direction, ic.Offset)
	return nil
}

func (p *Parallax) observe(it *item) {
	id := it.el.ID()
	p.observer.Observe(it.el, p.cfg.Threshold, func(visible bool) {
		if cur, ok := p.items[id]; ok && cur == it {
			p.setVisible(it, visible)
		}
	})
}

func (p *Parallax) itemConfigFor(el host.Element) (ItemConfig, error) {
	ic := ItemConfig{Speed: p.cfg.Speed, Direction: p.cfg.Direction, Offset: p.cfg.Offset}
	if v, ok := el.Attr(AttrSpeed); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ic, fmt.Errorf("%s: %w", AttrSpeed, err)
		}
		ic.Speed = f
	}
	if v, ok := el.Attr(AttrDirection); ok {
		d, err := ParseDirection(v)
		if err != nil {
			return ic, fmt.Errorf("%s: %w", AttrDirection, err)
		}
		ic.Direction = d
	}
	if v, ok := el.Attr(AttrOffset); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ic, fmt.Errorf("%s: %w", AttrOffset, err)
		}
		ic.Offset = f
	}
	return ic.normalize(), nil
}

// Remove stops tracking the element with the given id and restores its
// baseline transform.
func (p *Parallax) Remove(id string) bool {
	it, ok := p.items[id]
	if !ok {
		return false
	}
	delete(p.items, id)
	delete(p.visible, id)
	for i, other := range p.order {
		if other == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if p.observer != nil {
		p.observer.Unobserve(it.el)
	}
	err := p.guard(id, func() error {
		if h, ok := it.el.(host.Highlighter); ok && p.cfg.Debug {
			h.ClearHighlight()
		}
		return it.el.SetTransform(it.baseline)
	})
	if err != nil {
		p.report(err)
	}
	p.debugf("removed %s", id)
	return true
}

// HandleScroll records a scroll sample. Samples are throttled and the item
// geometry refresh is suspended until scrolling stops.
func (p *Parallax) HandleScroll(x, y float64) {
	if p.destroyed {
		return
	}
	p.scrolling = true
	p.scrollEnd.Trigger()
	p.throttle.Call(func() {
		p.state.ScrollX, p.state.ScrollY = x, y
	})
}

// HandleResize schedules a geometry refresh once resizing settles.
func (p *Parallax) HandleResize() {
	if p.destroyed {
		return
	}
	p.resize.Trigger()
}

// HandleMutation picks up newly matching elements and refreshes geometry on
// the next frame.
func (p *Parallax) HandleMutation() {
	if p.destroyed {
		return
	}
	if p.cfg.Selector != "" {
		p.AddSelector(p.cfg.Selector)
	}
	p.dirty = true
}

// HandleLoad refreshes geometry on the next frame.
func (p *Parallax) HandleLoad() {
	if p.destroyed {
		return
	}
	p.loaded = true
	p.dirty = true
}

// Scrolling reports whether scroll samples arrived within the scroll end
// delay.
func (p *Parallax) Scrolling() bool {
	return p.scrolling
}

// Refresh measures every item now. It has no effect with an observer.
func (p *Parallax) Refresh() {
	if p.destroyed || p.usingObserver() {
		return
	}
	p.refreshGeometry()
}

// UpdateConfig applies a new configuration at runtime.
func (p *Parallax) UpdateConfig(cfg Config) {
	if p.destroyed {
		return
	}
	prev := p.cfg
	p.cfg = cfg.Normalize()
	p.throttle.SetWindow(p.cfg.ScrollThrottle)
	p.scrollEnd.SetWait(p.cfg.ScrollEndDelay)
	p.resize.SetWait(p.cfg.ResizeDebounce)

	wasObserving := p.observer != nil && prev.UseObserver
	for _, id := range p.order {
		it := p.items[id]
		if !it.custom {
			if ic, err := p.itemConfigFor(it.el); err == nil {
				it.cfg = ic
			}
		}
		it.hasApplied = false
		switch {
		case p.usingObserver() && !wasObserving:
			p.observe(it)
		case !p.usingObserver() && wasObserving:
			p.observer.Unobserve(it.el)
		case p.usingObserver() && prev.Threshold != p.cfg.Threshold:
			p.observe(it)
		}
	}
	if prev.Debug && !p.cfg.Debug {
		p.clearHighlights()
	}
	if p.cfg.Selector != "" && p.cfg.Selector != prev.Selector {
		p.AddSelector(p.cfg.Selector)
	}
	p.dirty = true
	p.debugf("config updated")
}

func (p *Parallax) clearHighlights() {
	for _, id := range p.order {
		if h, ok := p.items[id].el.(host.Highlighter); ok {
			h.ClearHighlight()
		}
	}
}
