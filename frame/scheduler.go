package frame

import "time"

// Callback receives the frame timestamp, measured from the scheduler's epoch.
type Callback func(now time.Duration)

// Handle identifies a pending frame callback or timer. The zero Handle is
// never issued.
type Handle uint64

// Scheduler is the host capability effects run on: one-shot next-frame
// callbacks and one-shot timers.
type Scheduler interface {
	Now() time.Duration
	RequestFrame(cb Callback) Handle
	CancelFrame(h Handle)
	AfterFunc(d time.Duration, fn func()) Handle
	CancelTimer(h Handle)
}

type pendingFrame struct {
	handle Handle
	cb     Callback
}

type timer struct {
	handle Handle
	due    time.Duration
	fn     func()
}

// Loop is a cooperative, single threaded Scheduler driven by Advance.
// Callbacks requested while a frame runs are deferred to the next frame.
type Loop struct {
	now     time.Duration
	next    Handle
	frames  []pendingFrame
	running []pendingFrame
	timers  []timer
	frameNo uint64
}

// NewLoop creates an instance of a Loop at time zero.
func NewLoop() *Loop {
	l := new(Loop)
	return l
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Duration {
	return l.now
}

// Frames returns the number of frames run so far.
func (l *Loop) Frames() uint64 {
	return l.frameNo
}

// RequestFrame schedules cb to run once on the next frame.
func (l *Loop) RequestFrame(cb Callback) Handle {
	l.next++
	l.frames = append(l.frames, pendingFrame{handle: l.next, cb: cb})
	return l.next
}

// CancelFrame drops a pending frame callback, including one queued on the
// frame currently running. Unknown handles are ignored.
func (l *Loop) CancelFrame(h Handle) {
	for i := range l.frames {
		if l.frames[i].handle == h {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
	for i := range l.running {
		if l.running[i].handle == h {
			l.running[i].cb = nil
			return
		}
	}
}

// AfterFunc schedules fn to run once d after the current time.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	l.next++
	l.timers = append(l.timers, timer{handle: l.next, due: l.now + d, fn: fn})
	return l.next
}

// CancelTimer drops a pending timer. Unknown handles are ignored.
func (l *Loop) CancelTimer(h Handle) {
	for i := range l.timers {
		if l.timers[i].handle == h {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}

// Pending returns the number of frame callbacks and timers waiting to run.
func (l *Loop) Pending() (frames, timers int) {
	return len(l.frames), len(l.timers)
}

// Advance moves time forward by d, fires every timer that came due, then runs
// one frame.
func (l *Loop) Advance(d time.Duration) {
	if d > 0 {
		l.now += d
	}
	l.runTimers()
	l.runFrame()
}

// runTimers fires due timers earliest first. Timers scheduled while firing
// wait for the next Advance.
func (l *Loop) runTimers() {
	limit := l.next
	for {
		idx := -1
		for i, t := range l.timers {
			if t.handle > limit || t.due > l.now {
				continue
			}
			if idx < 0 || t.due < l.timers[idx].due {
				idx = i
			}
		}
		if idx < 0 {
			return
		}
		t := l.timers[idx]
		l.timers = append(l.timers[:idx], l.timers[idx+1:]...)
		t.fn()
	}
}

func (l *Loop) runFrame() {
	l.frameNo++
	l.running = l.frames
	l.frames = nil
	for i := range l.running {
		if cb := l.running[i].cb; cb != nil {
			cb(l.now)
		}
	}
	l.running = nil
}
