package motion

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/fogleman/ease"
	"github.com/matt-g-everett/scrollfx/easing"
)

func tracked(events *[]string, name string, to float64, d time.Duration) *Animation {
	return &Animation{
		To:         to,
		Duration:   d,
		Easing:     "linear",
		OnStart:    func() { *events = append(*events, name+"-start") },
		OnComplete: func() { *events = append(*events, name+"-complete") },
	}
}

func TestQueueLinearMidpoint(t *testing.T) {
	q := NewQueue(nil)
	q.Enqueue(&Animation{To: 1000, Duration: time.Second, Easing: "linear"}, false, 0, 0)

	step := q.Tick(500 * time.Millisecond)
	if step.Value != 500 {
		t.Errorf("Expected value 500 at half way, got %v", step.Value)
	}
	if step.Completed || step.Idle {
		t.Error("Expected animation still running at half way")
	}
}

func TestQueueUnknownEasingUsesDefault(t *testing.T) {
	q := NewQueue(easing.NewRegistry())
	q.Enqueue(&Animation{To: 1000, Duration: time.Second, Easing: "bogus"}, false, 0, 0)

	step := q.Tick(250 * time.Millisecond)
	want := 1000 * ease.InOutCubic(0.25)
	if math.Abs(step.Value-want) > 1e-9 {
		t.Errorf("Expected easeInOutCubic value %v, got %v", want, step.Value)
	}
	if step.Value == 250 {
		t.Error("Fallback must not be linear")
	}
}

func TestQueueOrdering(t *testing.T) {
	var events []string
	q := NewQueue(nil)
	q.Enqueue(tracked(&events, "A", 100, 100*time.Millisecond), false, 0, 0)
	q.Enqueue(tracked(&events, "B", 200, 100*time.Millisecond), false, 0, 0)
	q.Enqueue(tracked(&events, "C", 300, 100*time.Millisecond), false, 0, 0)

	if q.Len() != 2 {
		t.Fatalf("Expected 2 waiting animations, got %d", q.Len())
	}

	var last Step
	for now := time.Duration(0); q.Active(); now += 10 * time.Millisecond {
		last = q.Tick(now)
	}

	want := []string{"A-start", "A-complete", "B-start", "B-complete", "C-start", "C-complete"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Expected %v, got %v", want, events)
	}
	if !last.Idle || last.Value != 300 {
		t.Errorf("Expected final idle step at 300, got %+v", last)
	}
}

func TestQueueNextStartsFromPreviousTarget(t *testing.T) {
	q := NewQueue(nil)
	q.Enqueue(&Animation{To: 100, Duration: 100 * time.Millisecond, Easing: "linear"}, false, 0, 0)
	second := &Animation{To: 300, Duration: 100 * time.Millisecond, Easing: "linear"}
	q.Enqueue(second, false, 0, 0)

	q.Tick(100 * time.Millisecond)
	if q.Current() != second {
		t.Fatal("Expected second animation to become current")
	}
	if second.From != 100 {
		t.Errorf("Expected second animation to start at 100, got %v", second.From)
	}
	if got := q.Tick(150 * time.Millisecond).Value; got != 200 {
		t.Errorf("Expected 200 half way through second animation, got %v", got)
	}
}

func TestQueueImmediateCancels(t *testing.T) {
	var events []string
	q := NewQueue(nil)
	x := tracked(&events, "X", 100, time.Second)
	y := tracked(&events, "Y", 200, time.Second)
	z := tracked(&events, "Z", 300, time.Second)
	q.Enqueue(x, false, 0, 0)
	q.Enqueue(y, false, 0, 0)
	q.Enqueue(z, false, 0, 0)
	q.Tick(500 * time.Millisecond)

	n := tracked(&events, "N", 50, 100*time.Millisecond)
	cancelled := q.Enqueue(n, true, 500*time.Millisecond, 50)
	if !reflect.DeepEqual(cancelled, []*Animation{x, y, z}) {
		t.Errorf("Expected X, Y, Z cancelled in order, got %d animations", len(cancelled))
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty backlog after immediate request, got %d", q.Len())
	}

	for now := 500 * time.Millisecond; q.Active(); now += 10 * time.Millisecond {
		q.Tick(now)
	}

	want := []string{"X-start", "N-start", "N-complete"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Expected %v, got %v", want, events)
	}
}

func TestQueueExactTarget(t *testing.T) {
	r := easing.NewRegistry()
	r.Register("sloppy", func(t float64) float64 { return t * 0.999999 })
	q := NewQueue(r)
	q.Enqueue(&Animation{To: 0.3, Duration: time.Second, Easing: "sloppy"}, false, 0, 0.1)

	step := q.Tick(2 * time.Second)
	if !step.Completed || step.Value != 0.3 {
		t.Errorf("Expected exact target 0.3 on completion, got %+v", step)
	}
}

func TestQueueZeroDuration(t *testing.T) {
	completed := 0
	q := NewQueue(nil)
	q.Enqueue(&Animation{To: 42, OnComplete: func() { completed++ }}, false, 10, 0)

	step := q.Tick(10)
	if !step.Completed || !step.Idle || step.Value != 42 {
		t.Errorf("Expected zero-duration animation to finish on first tick, got %+v", step)
	}
	if completed != 1 {
		t.Errorf("Expected one completion, got %d", completed)
	}
	if q.Active() {
		t.Error("Expected queue to be idle")
	}
}

func TestQueueOnCompleteEnqueueKeepsOrder(t *testing.T) {
	var events []string
	q := NewQueue(nil)
	var a *Animation
	a = tracked(&events, "A", 10, 10*time.Millisecond)
	onA := a.OnComplete
	a.OnComplete = func() {
		onA()
		q.Enqueue(tracked(&events, "D", 40, 10*time.Millisecond), false, 0, 0)
	}
	q.Enqueue(a, false, 0, 0)
	q.Enqueue(tracked(&events, "B", 20, 10*time.Millisecond), false, 0, 0)

	for now := time.Duration(0); q.Active(); now += 5 * time.Millisecond {
		q.Tick(now)
	}

	want := []string{"A-start", "A-complete", "B-start", "B-complete", "D-start", "D-complete"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Expected %v, got %v", want, events)
	}
}

func TestQueueDelay(t *testing.T) {
	q := NewQueue(nil)
	q.Enqueue(&Animation{To: 100, Duration: 100 * time.Millisecond, Easing: "linear"}, false, 0, 0)
	q.Tick(50 * time.Millisecond)
	q.Delay(time.Second)

	if got := q.Tick(time.Second + 50*time.Millisecond).Value; got != 50 {
		t.Errorf("Expected delayed animation to resume at 50, got %v", got)
	}
}

func ExampleQueue() {
	q := NewQueue(nil)
	q.Enqueue(&Animation{To: 1000, Duration: time.Second, Easing: "linear"}, false, 0, 0)
	for _, ms := range []int{0, 250, 500, 1000} {
		step := q.Tick(time.Duration(ms) * time.Millisecond)
		fmt.Println(step.Value, step.Idle)
	}
	// Output:
	// 0 false
	// 250 false
	// 500 false
	// 1000 true
}
