package motion

import (
	"container/list"
	"time"

	"github.com/matt-g-everett/scrollfx/easing"
)

// An Animation is a single eased point-to-point motion.
//
// From is overwritten with the observed position when the animation becomes
// current, so only To needs to be set by callers.
type Animation struct {
	From     float64
	To       float64
	Duration time.Duration
	Easing   string

	// OnStart runs when the animation becomes current.
	OnStart func()
	// OnComplete runs once when the animation reaches its target. It never
	// runs for cancelled animations.
	OnComplete func()

	start    time.Duration
	started  bool
	finished bool
}

// Started reports whether the animation has become current.
func (a *Animation) Started() bool {
	return a.started
}

// Finished reports whether the animation reached its target.
func (a *Animation) Finished() bool {
	return a.finished
}

// Progress returns the linear progress in [0, 1] at now.
func (a *Animation) Progress(now time.Duration) float64 {
	if !a.started {
		return 0
	}
	if a.Duration <= 0 {
		return 1
	}
	p := float64(now-a.start) / float64(a.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Step is the outcome of a single Queue tick.
type Step struct {
	// Value is the position to apply this frame.
	Value float64
	// Completed is set when an animation finished on this tick.
	Completed bool
	// Idle is set when the queue ran dry on this tick.
	Idle bool
}

// A Queue runs animations one at a time in the order they were requested.
type Queue struct {
	easings *easing.Registry
	current *Animation
	backlog *list.List
}

// NewQueue creates an instance of a Queue resolving easings from the given
// registry.
func NewQueue(easings *easing.Registry) *Queue {
	q := new(Queue)
	if easings == nil {
		easings = easing.NewRegistry()
	}
	q.easings = easings
	q.backlog = list.New()
	return q
}

// Active reports whether an animation is current.
func (q *Queue) Active() bool {
	return q.current != nil
}

// Current returns the animation in flight, if any.
func (q *Queue) Current() *Animation {
	return q.current
}

// Len returns the number of animations waiting behind the current one.
func (q *Queue) Len() int {
	return q.backlog.Len()
}

// Enqueue schedules a. When the queue is idle, or when immediate is set, a
// starts at now from position. An immediate request discards the current and
// waiting animations without completing them; they are returned so the caller
// can settle anything else it tracks for them.
func (q *Queue) Enqueue(a *Animation, immediate bool, now time.Duration, position float64) []*Animation {
	var cancelled []*Animation
	if q.current != nil {
		if !immediate {
			q.backlog.PushBack(a)
			return nil
		}
		cancelled = q.Cancel()
	}
	q.begin(a, now, position)
	return cancelled
}

// Cancel discards every animation without running completion callbacks and
// returns them, current first.
func (q *Queue) Cancel() []*Animation {
	cancelled := make([]*Animation, 0, q.backlog.Len()+1)
	if q.current != nil && !q.current.finished {
		cancelled = append(cancelled, q.current)
	}
	q.current = nil
	for e := q.backlog.Front(); e != nil; e = e.Next() {
		cancelled = append(cancelled, e.Value.(*Animation))
	}
	q.backlog.Init()
	return cancelled
}

// Delay pushes the current animation's start forward by d, used when a paused
// loop resumes.
func (q *Queue) Delay(d time.Duration) {
	if q.current != nil && d > 0 {
		q.current.start += d
	}
}

// Tick advances the current animation to now. It must only be called while
// the queue is active.
func (q *Queue) Tick(now time.Duration) Step {
	a := q.current
	if a == nil {
		return Step{Idle: true}
	}

	progress := a.Progress(now)
	if progress < 1 {
		eased := q.easings.Get(a.Easing)(progress)
		return Step{Value: a.From + (a.To-a.From)*eased}
	}

	// Finish on the exact target rather than the eased value. The animation
	// stays current during OnComplete so requests made from the callback
	// queue up behind the backlog.
	step := Step{Value: a.To, Completed: true}
	a.finished = true
	if a.OnComplete != nil {
		a.OnComplete()
	}

	if q.current == a {
		q.current = nil
		if front := q.backlog.Front(); front != nil {
			q.backlog.Remove(front)
			q.begin(front.Value.(*Animation), now, a.To)
		}
	}
	step.Idle = q.current == nil
	return step
}

func (q *Queue) begin(a *Animation, now time.Duration, position float64) {
	a.From = position
	a.start = now
	a.started = true
	q.current = a
	if a.OnStart != nil {
		a.OnStart()
	}
}
