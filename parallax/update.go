package parallax

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/scrollfx/host"
	"github.com/matt-g-everett/scrollfx/util"
)

// Offset computes an item's transform for the given scroll offsets: the
// baseline plus scroll times speed plus the static offset on each driven
// axis, limited to ±max on driven axes when contain is set.
func Offset(base host.Vec3, scrollX, scrollY float64, ic ItemConfig, contain bool, max float64) (x, y float64) {
	x, y = base.X, base.Y
	if ic.Direction == Vertical || ic.Direction == Both {
		y = base.Y + scrollY*ic.Speed + ic.Offset
		if contain {
			y = clamp(y, max)
		}
	}
	if ic.Direction == Horizontal || ic.Direction == Both {
		x = base.X + scrollX*ic.Speed + ic.Offset
		if contain {
			x = clamp(x, max)
		}
	}
	return x, y
}

func clamp(v, max float64) float64 {
	return math.Max(-max, math.Min(max, v))
}

func (p *Parallax) onFrame(now time.Duration) {
	p.frame = 0
	if !p.state.Running {
		return
	}
	p.state.FrameCount++

	if !p.usingObserver() {
		periodic := !p.scrolling && p.state.FrameCount%uint64(p.cfg.UpdateFrequency) == 0
		if p.dirty || periodic {
			p.refreshGeometry()
		}
	}
	p.dirty = false

	ids := append([]string(nil), p.order...)
	for _, id := range ids {
		it, ok := p.items[id]
		if !ok {
			continue
		}
		if err := p.guard(id, func() error { return p.updateItem(it) }); err != nil {
			p.report(err)
		}
	}

	// A hook may have stopped or destroyed the effect.
	if p.state.Running {
		p.frame = p.sched.RequestFrame(p.onFrame)
	}
}

func (p *Parallax) refreshGeometry() {
	for _, id := range p.order {
		it := p.items[id]
		if err := p.guard(id, func() error { return p.measure(it) }); err != nil {
			p.report(err)
		}
	}
}

// measure records the item's document rectangle with its transform removed
// so earlier transforms do not skew the result.
func (p *Parallax) measure(it *item) error {
	current := it.el.Transform()
	neutral := current != host.Vec3{}
	if neutral {
		if err := it.el.SetTransform(host.Vec3{}); err != nil {
			return fmt.Errorf("neutralise transform: %w", err)
		}
	}
	r, err := it.el.Bounds()
	if neutral {
		if rerr := it.el.SetTransform(current); rerr != nil && err == nil {
			err = fmt.Errorf("restore transform: %w", rerr)
		}
	}
	if err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	sx, sy := p.page.Scroll()
	it.rect = r.Translate(sx, sy)
	it.measured = true
	return nil
}

func (p *Parallax) updateItem(it *item) error {
	visible := it.visible
	if !p.usingObserver() {
		if !it.measured {
			return nil
		}
		_, vh := p.page.Viewport()
		top := it.rect.Top - p.state.ScrollY
		bottom := it.rect.Bottom - p.state.ScrollY
		visible = bottom >= -p.cfg.Threshold && top <= vh+p.cfg.Threshold
		p.setVisible(it, visible)
	}
	if !visible {
		return nil
	}

	x, y := Offset(it.baseline, p.state.ScrollX, p.state.ScrollY, it.cfg, p.cfg.ContainTransforms, p.cfg.MaxTransform)
	if it.hasApplied && math.Abs(x-it.applied.X) <= ChangeEpsilon && math.Abs(y-it.applied.Y) <= ChangeEpsilon {
		return nil
	}
	if err := it.el.SetTransform(host.Vec3{X: x, Y: y, Z: it.baseline.Z}); err != nil {
		return fmt.Errorf("apply transform: %w", err)
	}
	it.applied.X, it.applied.Y = x, y
	it.hasApplied = true
	return nil
}

func (p *Parallax) setVisible(it *item, visible bool) {
	id := it.el.ID()
	if it.visible == visible {
		return
	}
	it.visible = visible
	if visible {
		p.visible[id] = struct{}{}
	} else {
		delete(p.visible, id)
	}
	if p.cfg.Debug {
		p.highlight(it)
		p.debugf("%s visible=%v", id, visible)
	}
	if p.hooks.OnVisibility != nil {
		p.hooks.OnVisibility(id, visible)
	}
}

// highlight tints visible items by speed: slow layers blue, fast layers red.
func (p *Parallax) highlight(it *item) {
	h, ok := it.el.(host.Highlighter)
	if !ok {
		return
	}
	if !it.visible {
		h.ClearHighlight()
		return
	}
	t := (it.cfg.Speed - MinSpeed) / (MaxSpeed - MinSpeed)
	h.Highlight(colorful.Hcl(240-t*240, 0.8, 0.6).Clamped())
}

// guard runs fn for one item, turning a panic into an error.
func (p *Parallax) guard(id string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parallax: item %s: panic: %v", id, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("parallax: item %s: %w", id, err)
	}
	return nil
}

func (p *Parallax) report(err error) {
	util.Error("%v", err)
	if p.hooks.OnError != nil {
		p.hooks.OnError(err)
	}
}

func (p *Parallax) debugf(format string, v ...interface{}) {
	if p.cfg.Debug {
		util.Debug("parallax: "+format, v...)
	}
}
