package frame

import "time"

// A Debouncer runs its function once the triggers have stopped for the wait
// period.
type Debouncer struct {
	sched   Scheduler
	wait    time.Duration
	fn      func()
	pending Handle
}

// NewDebouncer creates an instance of a Debouncer.
func NewDebouncer(sched Scheduler, wait time.Duration, fn func()) *Debouncer {
	d := new(Debouncer)
	d.sched = sched
	d.wait = wait
	d.fn = fn
	return d
}

// SetWait changes the quiet period for subsequent triggers.
func (d *Debouncer) SetWait(wait time.Duration) {
	d.wait = wait
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.Cancel()
	d.pending = d.sched.AfterFunc(d.wait, func() {
		d.pending = 0
		d.fn()
	})
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending != 0
}

// Cancel drops any scheduled run.
func (d *Debouncer) Cancel() {
	if d.pending != 0 {
		d.sched.CancelTimer(d.pending)
		d.pending = 0
	}
}

// A Throttler runs at most one call per window: the first call of a window
// runs immediately and the latest call made during the window runs when it
// closes.
type Throttler struct {
	sched    Scheduler
	window   time.Duration
	timer    Handle
	trailing func()
}

// NewThrottler creates an instance of a Throttler.
func NewThrottler(sched Scheduler, window time.Duration) *Throttler {
	t := new(Throttler)
	t.sched = sched
	t.window = window
	return t
}

// SetWindow changes the window length for subsequent windows.
func (t *Throttler) SetWindow(window time.Duration) {
	t.window = window
}

// Call runs fn now or defers it to the end of the open window, replacing any
// call already deferred.
func (t *Throttler) Call(fn func()) {
	if t.window <= 0 {
		fn()
		return
	}
	if t.timer != 0 {
		t.trailing = fn
		return
	}
	fn()
	t.open()
}

// Cancel closes the window and drops any deferred call.
func (t *Throttler) Cancel() {
	if t.timer != 0 {
		t.sched.CancelTimer(t.timer)
		t.timer = 0
	}
	t.trailing = nil
}

func (t *Throttler) open() {
	t.timer = t.sched.AfterFunc(t.window, func() {
		t.timer = 0
		if fn := t.trailing; fn != nil {
			t.trailing = nil
			fn()
			t.open()
		}
	})
}
