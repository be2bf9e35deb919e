package motion

import (
	"math"
	"testing"
	"time"
)

func TestSmootherConcreteFrames(t *testing.T) {
	s := NewSmoother(0.9, 0.5)
	s.SetTarget(100)

	got, settled := s.Advance(1)
	if math.Abs(got-10) > 1e-9 || settled {
		t.Errorf("Expected first frame at 10 (not settled), got %v settled=%v", got, settled)
	}

	got, _ = s.Advance(1)
	if math.Abs(got-19) > 1e-9 {
		t.Errorf("Expected second frame at 19, got %v", got)
	}
}

func TestSmootherNeverOvershoots(t *testing.T) {
	for _, smoothness := range []float64{0.01, 0.5, 0.7, 0.9, 0.99, 1.5} {
		for _, delta := range []float64{0.25, 1, 2, 10} {
			s := NewSmoother(smoothness, 0.5)
			s.Reset(-250)
			s.SetTarget(1000)
			for i := 0; i < 20000; i++ {
				before := math.Signbit(s.Target - s.Current)
				s.Advance(delta)
				after := s.Target - s.Current
				if after != 0 && math.Signbit(after) != before {
					t.Fatalf("smoothness=%v delta=%v overshot at frame %d: current=%v target=%v",
						smoothness, delta, i, s.Current, s.Target)
				}
			}
			if s.Current != s.Target {
				t.Errorf("smoothness=%v delta=%v did not converge: current=%v", smoothness, delta, s.Current)
			}
		}
	}
}

func TestSmootherSnapsOnce(t *testing.T) {
	s := NewSmoother(0.9, 0.5)
	s.Reset(0)
	s.SetTarget(10)

	settledCount := 0
	for i := 0; i < 200; i++ {
		if _, settled := s.Advance(1); settled {
			settledCount++
			if s.Current != s.Target {
				t.Fatalf("Settled without snapping: current=%v", s.Current)
			}
		}
	}
	if settledCount != 1 {
		t.Errorf("Expected exactly one settle transition, got %d", settledCount)
	}
	if s.Moving() {
		t.Error("Expected smoother to be at rest")
	}

	s.SetTarget(10.2)
	if _, settled := s.Advance(1); !settled || s.Current != 10.2 {
		t.Errorf("Expected sub-threshold move to snap in one update, got %v settled=%v", s.Current, settled)
	}
	if _, settled := s.Advance(1); settled || s.Current != 10.2 {
		t.Errorf("Expected no further change after snapping, got %v settled=%v", s.Current, settled)
	}
}

func TestSmootherIgnoresNonPositiveDelta(t *testing.T) {
	s := NewSmoother(0.9, 0.5)
	s.SetTarget(100)
	for _, delta := range []float64{0, -1, math.NaN()} {
		if got, settled := s.Advance(delta); got != 0 || settled {
			t.Errorf("Advance(%v) moved to %v", delta, got)
		}
	}
}

func TestSmootherClampsParameters(t *testing.T) {
	s := NewSmoother(0.1, -3)
	if s.Smoothness() != MinSmoothness {
		t.Errorf("Expected smoothness clamped to %v, got %v", MinSmoothness, s.Smoothness())
	}
	s.SetParameters(5, 1)
	if s.Smoothness() != MaxSmoothness {
		t.Errorf("Expected smoothness clamped to %v, got %v", MaxSmoothness, s.Smoothness())
	}
	if s.minMovement != 1 {
		t.Errorf("Expected minMovement 1, got %v", s.minMovement)
	}
}

func TestFrameDelta(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		max     float64
		want    float64
	}{
		{FrameInterval, 2, 1},
		{FrameInterval / 2, 2, 0.5},
		{10 * time.Second, 2, 2},
		{0, 2, 0},
		{-time.Second, 2, 0},
		{FrameInterval, 0, 0},
	}
	for _, tt := range tests {
		if got := FrameDelta(tt.elapsed, tt.max); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FrameDelta(%v, %v) = %v, expected %v", tt.elapsed, tt.max, got, tt.want)
		}
	}
}
