package motion

import (
	"math"
	"time"
)

// FrameInterval is the nominal display frame used to normalise elapsed time.
const FrameInterval = time.Second / 60

// Smoothing limits and defaults.
const (
	MinSmoothness      = 0.5
	MaxSmoothness      = 0.99
	DefaultSmoothness  = 0.9
	DefaultMinMovement = 0.5
	DefaultMaxDelta    = 2.0
)

// FrameDelta converts elapsed time into a number of nominal frames, clamped
// to [0, maxDelta] so a resumed or stalled loop cannot jump.
func FrameDelta(elapsed time.Duration, maxDelta float64) float64 {
	if elapsed <= 0 || maxDelta <= 0 {
		return 0
	}
	delta := float64(elapsed) / float64(FrameInterval)
	if delta > maxDelta {
		return maxDelta
	}
	return delta
}

// ClampSmoothness limits a smoothness factor to the supported range.
func ClampSmoothness(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultSmoothness
	}
	return math.Max(MinSmoothness, math.Min(MaxSmoothness, s))
}

// A Smoother moves Current toward Target by a fraction of the remaining
// distance every frame, snapping once the residual drops under the minimum
// movement.
type Smoother struct {
	Current float64
	Target  float64

	smoothness  float64
	minMovement float64
	moving      bool
}

// NewSmoother creates an instance of a Smoother at rest at zero.
func NewSmoother(smoothness, minMovement float64) *Smoother {
	s := new(Smoother)
	s.SetParameters(smoothness, minMovement)
	return s
}

// SetParameters updates the smoothing factor and snap threshold, clamping
// both into range.
func (s *Smoother) SetParameters(smoothness, minMovement float64) {
	s.smoothness = ClampSmoothness(smoothness)
	if math.IsNaN(minMovement) || minMovement < 0 {
		minMovement = 0
	}
	s.minMovement = minMovement
}

// Smoothness returns the effective smoothing factor.
func (s *Smoother) Smoothness() float64 {
	return s.smoothness
}

// SetTarget sets the value the smoother converges to.
func (s *Smoother) SetTarget(target float64) {
	s.Target = target
}

// Reset places both Current and Target at v and marks the smoother at rest.
func (s *Smoother) Reset(v float64) {
	s.Current = v
	s.Target = v
	s.moving = false
}

// Moving reports whether the last update moved Current.
func (s *Smoother) Moving() bool {
	return s.moving
}

// Advance steps the smoother by deltaFrames nominal frames. It returns the new
// Current and whether this step was the transition from moving to at rest.
func (s *Smoother) Advance(deltaFrames float64) (float64, bool) {
	if deltaFrames <= 0 || math.IsNaN(deltaFrames) {
		return s.Current, false
	}

	distance := s.Target - s.Current
	if math.Abs(distance) < s.minMovement || distance == 0 {
		settled := s.moving || s.Current != s.Target
		s.Current = s.Target
		s.moving = false
		return s.Current, settled
	}

	// A factor of 1 lands exactly on the target; anything above would overshoot.
	factor := math.Min((1-s.smoothness)*deltaFrames, 1)
	s.Current += distance * factor
	s.moving = true
	return s.Current, false
}
