// Package scroller emulates smooth scrolling on a host page. Wheel input moves
// a target that the page position follows with exponential smoothing, and
// programmatic scrolls run as queued eased animations that take over the
// position until they finish.
package scroller

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/matt-g-everett/scrollfx/easing"
	"github.com/matt-g-everett/scrollfx/frame"
	"github.com/matt-g-everett/scrollfx/host"
	"github.com/matt-g-everett/scrollfx/motion"
	"github.com/matt-g-everett/scrollfx/util"
)

// ErrNotFound is logged when a scroll target selector matches nothing.
var ErrNotFound = errors.New("scroller: no element matches")

// Hooks receive notifications from a Scroller. All are optional.
type Hooks struct {
	// OnScroll runs whenever the scroller moves the page.
	OnScroll func(y float64)
	// OnScrollEnd runs when motion comes to rest.
	OnScrollEnd func(y float64)
}

// Scroller drives the vertical scroll position of a page.
type Scroller struct {
	cfg      Config
	page     host.Page
	sched    frame.Scheduler
	easings  *easing.Registry
	smoother *motion.Smoother
	queue    *motion.Queue
	hooks    Hooks

	// pending holds the completion channel of every queued or running
	// animation.
	pending map[*motion.Animation]chan bool

	frame     frame.Handle
	running   bool
	destroyed bool
	lastFrame time.Duration
	hasFrame  bool
	stoppedAt time.Duration
	paused    *motion.Animation
	applied   float64
}

// New creates an instance of a Scroller resting at the page's current
// position.
func New(page host.Page, sched frame.Scheduler, cfg Config) *Scroller {
	s := new(Scroller)
	s.cfg = cfg.Normalize()
	s.page = page
	s.sched = sched
	s.easings = easing.NewRegistry()
	s.smoother = motion.NewSmoother(s.cfg.Smoothness, s.cfg.MinMovement)
	s.queue = motion.NewQueue(s.easings)
	s.pending = make(map[*motion.Animation]chan bool)

	_, y := page.Scroll()
	s.smoother.Reset(y)
	s.applied = y
	s.debugf("created at %.1f", y)
	return s
}

// On installs notification hooks.
func (s *Scroller) On(h Hooks) {
	s.hooks = h
}

// Config returns the effective configuration.
func (s *Scroller) Config() Config {
	return s.cfg
}

// Position returns the scroll position the scroller last computed.
func (s *Scroller) Position() float64 {
	return s.smoother.Current
}

// Target returns where the scroller is heading: the destination of the
// animation in flight, otherwise the smoothing target.
func (s *Scroller) Target() float64 {
	if a := s.queue.Current(); a != nil {
		return a.To
	}
	return s.smoother.Target
}

// Animating reports whether a programmatic scroll is in flight.
func (s *Scroller) Animating() bool {
	return s.queue.Active()
}

// Running reports whether the frame loop is active.
func (s *Scroller) Running() bool {
	return s.running
}

// Start begins the frame loop. After a Stop, the animation in flight resumes
// where it was left.
func (s *Scroller) Start() {
	if s.destroyed || s.running {
		return
	}
	if a := s.queue.Current(); a != nil && a == s.paused {
		s.queue.Delay(s.sched.Now() - s.stoppedAt)
	}
	s.paused = nil
	s.running = true
	s.frame = s.sched.RequestFrame(s.onFrame)
	s.debugf("started")
}

// Stop halts the frame loop, keeping the position and queued animations.
func (s *Scroller) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.stoppedAt = s.sched.Now()
	s.paused = s.queue.Current()
	if s.frame != 0 {
		s.sched.CancelFrame(s.frame)
		s.frame = 0
	}
	s.debugf("stopped")
}

// Destroy stops the loop and cancels every queued scroll. Calling it again
// does nothing.
func (s *Scroller) Destroy() {
	if s.destroyed {
		return
	}
	s.Stop()
	s.cancelAll()
	s.destroyed = true
	s.debugf("destroyed")
}

// UpdateConfig applies a new configuration at runtime. Animations already
// queued keep their duration and easing.
func (s *Scroller) UpdateConfig(cfg Config) {
	if s.destroyed {
		return
	}
	s.cfg = cfg.Normalize()
	s.smoother.SetParameters(s.cfg.Smoothness, s.cfg.MinMovement)
	s.debugf("config updated: %+v", s.cfg)
}

// RegisterEasing adds or replaces a named easing function.
func (s *Scroller) RegisterEasing(name string, fn easing.Func) {
	s.easings.Register(name, fn)
}

// HandleWheel moves the smoothing target by dy, scaled by the wheel
// multiplier. Wheel input takes over from programmatic scrolls, cancelling
// them.
func (s *Scroller) HandleWheel(dy float64) {
	if s.destroyed || !finite(dy) {
		return
	}
	s.cancelAll()
	target := s.clamp(s.smoother.Target + dy*s.cfg.WheelMultiplier)
	if s.cfg.ReducedMotion {
		s.jump(target)
		return
	}
	s.smoother.SetTarget(target)
}

// HandleScroll reconciles with a scroll the scroller did not make, such as a
// scrollbar drag. It is ignored while an animation is in flight.
func (s *Scroller) HandleScroll() {
	if s.destroyed || s.queue.Active() {
		return
	}
	_, y := s.page.Scroll()
	if y == s.applied {
		return
	}
	s.debugf("native scroll to %.1f", y)
	s.smoother.Reset(y)
	s.applied = y
}

// ScrollTo animates to y. The returned channel receives true once the target
// is reached, or false if the request is cancelled first.
func (s *Scroller) ScrollTo(y float64, opts Options) <-chan bool {
	done := make(chan bool, 1)
	if s.destroyed || !finite(y) || !finite(opts.Offset) {
		done <- false
		return done
	}
	target := s.clamp(y + opts.Offset)

	if s.cfg.ReducedMotion {
		s.cancelAll()
		s.jump(target)
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
		done <- true
		return done
	}

	a := &motion.Animation{
		To:       target,
		Duration: opts.Duration,
		Easing:   opts.Easing,
	}
	if a.Duration <= 0 {
		a.Duration = s.cfg.ScrollToDuration
	}
	if a.Easing == "" {
		a.Easing = s.cfg.ScrollToEasing
	}
	a.OnStart = func() {
		s.debugf("animating %.1f -> %.1f over %v (%s)", a.From, a.To, a.Duration, a.Easing)
	}
	a.OnComplete = func() {
		s.smoother.Reset(a.To)
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
		s.settle(a, true)
	}

	s.pending[a] = done
	for _, c := range s.queue.Enqueue(a, opts.Immediate, s.sched.Now(), s.smoother.Current) {
		s.settle(c, false)
	}
	return done
}

// ScrollToElement animates to the first element matching selector, placed
// AutoScrollOffset below the top of the viewport. The element is measured
// without its transform, so a parallax layer resolves to its layout position.
// The channel receives false when nothing matches.
func (s *Scroller) ScrollToElement(selector string, opts Options) <-chan bool {
	y, err := s.resolve(selector)
	if err != nil {
		util.Warn("%v", err)
		done := make(chan bool, 1)
		done <- false
		return done
	}
	return s.ScrollTo(y-s.cfg.AutoScrollOffset, opts)
}

// ScrollBy animates dy away from the current target.
func (s *Scroller) ScrollBy(dy float64, opts Options) <-chan bool {
	return s.ScrollTo(s.Target()+dy, opts)
}

func (s *Scroller) resolve(selector string) (float64, error) {
	els := s.page.Query(selector)
	if len(els) == 0 {
		return 0, fmt.Errorf("%w %q", ErrNotFound, selector)
	}
	r, err := layoutBounds(els[0])
	if err != nil {
		return 0, fmt.Errorf("scroller: measure %s: %w", els[0].ID(), err)
	}
	_, y := s.page.Scroll()
	return r.Top + y, nil
}

// layoutBounds returns el's bounds with its transform removed for the
// duration of the measurement.
func layoutBounds(el host.Element) (host.Rect, error) {
	current := el.Transform()
	if current == (host.Vec3{}) {
		return el.Bounds()
	}
	if err := el.SetTransform(host.Vec3{}); err != nil {
		return host.Rect{}, fmt.Errorf("neutralise transform: %w", err)
	}
	r, err := el.Bounds()
	if rerr := el.SetTransform(current); rerr != nil && err == nil {
		err = fmt.Errorf("restore transform: %w", rerr)
	}
	return r, err
}

func (s *Scroller) onFrame(now time.Duration) {
	s.frame = 0
	if !s.running {
		return
	}

	delta := 1.0
	if s.hasFrame {
		delta = motion.FrameDelta(now-s.lastFrame, s.cfg.MaxDeltaTime)
	}
	s.lastFrame = now
	s.hasFrame = true

	if s.queue.Active() {
		step := s.queue.Tick(now)
		// An immediate request from OnComplete may already have taken over.
		if !step.Completed {
			s.smoother.Reset(step.Value)
		}
		s.apply(s.smoother.Current)
		if step.Idle {
			s.scrollEnd()
		}
	} else {
		v, settled := s.smoother.Advance(delta)
		s.apply(v)
		if settled {
			s.scrollEnd()
		}
	}

	if s.running {
		s.frame = s.sched.RequestFrame(s.onFrame)
	}
}

func (s *Scroller) apply(y float64) {
	if y == s.applied {
		return
	}
	x, _ := s.page.Scroll()
	s.page.ScrollTo(x, y)
	s.applied = y
	if s.hooks.OnScroll != nil {
		s.hooks.OnScroll(y)
	}
}

// jump moves straight to y, as reduced motion requires.
func (s *Scroller) jump(y float64) {
	s.smoother.Reset(y)
	s.apply(y)
	s.scrollEnd()
}

func (s *Scroller) scrollEnd() {
	s.debugf("settled at %.1f", s.smoother.Current)
	if s.hooks.OnScrollEnd != nil {
		s.hooks.OnScrollEnd(s.smoother.Current)
	}
}

func (s *Scroller) cancelAll() {
	cancelled := s.queue.Cancel()
	for _, a := range cancelled {
		s.settle(a, false)
	}
	if len(cancelled) > 0 {
		s.debugf("cancelled %d animations", len(cancelled))
	}
}

func (s *Scroller) settle(a *motion.Animation, ok bool) {
	if done, found := s.pending[a]; found {
		delete(s.pending, a)
		done <- ok
	}
}

func (s *Scroller) clamp(y float64) float64 {
	_, max := s.page.ScrollLimit()
	return math.Max(0, math.Min(max, y))
}

func (s *Scroller) debugf(format string, v ...interface{}) {
	if s.cfg.Debug {
		util.Debug("scroller: "+format, v...)
	}
}
