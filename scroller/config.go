package scroller

import (
	"math"
	"time"

	"github.com/matt-g-everett/scrollfx/easing"
	"github.com/matt-g-everett/scrollfx/motion"
)

// DefaultScrollToDuration is used when a duration is missing or not positive.
const DefaultScrollToDuration = time.Second

// Config configures a Scroller.
type Config struct {
	Smoothness       float64       `yaml:"smoothness"`
	MinMovement      float64       `yaml:"minMovement"`
	MaxDeltaTime     float64       `yaml:"maxDeltaTime"`
	ScrollToDuration time.Duration `yaml:"scrollToDuration"`
	ScrollToEasing   string        `yaml:"scrollToEasing"`
	AutoScrollOffset float64       `yaml:"autoScrollOffset"`
	ReducedMotion    bool          `yaml:"reducedMotion"`
	WheelMultiplier  float64       `yaml:"wheelMultiplier"`
	Debug            bool          `yaml:"debug"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Smoothness:       motion.DefaultSmoothness,
		MinMovement:      motion.DefaultMinMovement,
		MaxDeltaTime:     motion.DefaultMaxDelta,
		ScrollToDuration: DefaultScrollToDuration,
		ScrollToEasing:   easing.Default,
		WheelMultiplier:  1,
	}
}

// Normalize clamps every option into its valid range.
func (c Config) Normalize() Config {
	c.Smoothness = motion.ClampSmoothness(c.Smoothness)
	if math.IsNaN(c.MinMovement) || c.MinMovement < 0 {
		c.MinMovement = 0
	}
	if math.IsNaN(c.MaxDeltaTime) || c.MaxDeltaTime < 0 {
		c.MaxDeltaTime = 0
	}
	if c.ScrollToDuration <= 0 {
		c.ScrollToDuration = DefaultScrollToDuration
	}
	if c.ScrollToEasing == "" {
		c.ScrollToEasing = easing.Default
	}
	if !finite(c.AutoScrollOffset) {
		c.AutoScrollOffset = 0
	}
	if !finite(c.WheelMultiplier) || c.WheelMultiplier <= 0 {
		c.WheelMultiplier = 1
	}
	return c
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Options adjust a single ScrollTo request. Zero values use the configured
// defaults.
type Options struct {
	Duration time.Duration
	Easing   string
	// Offset is added to the resolved target.
	Offset float64
	// Immediate cancels the animation in flight and everything queued behind
	// it instead of waiting.
	Immediate bool
	// OnComplete runs when the scroll reaches its target. It does not run if
	// the request is cancelled or its target cannot be resolved.
	OnComplete func()
}
