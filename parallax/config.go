package parallax

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Direction selects which axes an item moves along.
type Direction int

const (
	Vertical Direction = iota
	Horizontal
	Both
)

func (d Direction) String() string {
	switch d {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) valid() bool {
	return d == Vertical || d == Horizontal || d == Both
}

// ParseDirection converts a direction name.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "y":
		return Vertical, nil
	case "horizontal", "x":
		return Horizontal, nil
	case "both", "xy":
		return Both, nil
	}
	return Vertical, fmt.Errorf("unknown direction %q", s)
}

// UnmarshalYAML reads a direction name.
func (d *Direction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalYAML writes the direction name.
func (d Direction) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Limits.
const (
	MinSpeed = -2.0
	MaxSpeed = 2.0

	// ChangeEpsilon is the smallest transform change that gets written.
	ChangeEpsilon = 0.1
)

// Config configures a Parallax instance. Item speed, direction and offset
// are defaults that element attributes can override.
type Config struct {
	Selector          string        `yaml:"selector"`
	Speed             float64       `yaml:"speed"`
	Direction         Direction     `yaml:"direction"`
	Offset            float64       `yaml:"offset"`
	Threshold         float64       `yaml:"threshold"`
	MaxTransform      float64       `yaml:"maxTransform"`
	ContainTransforms bool          `yaml:"containTransforms"`
	UpdateFrequency   int           `yaml:"updateFrequency"`
	UseObserver       bool          `yaml:"useObserver"`
	ScrollThrottle    time.Duration `yaml:"scrollThrottle"`
	ScrollEndDelay    time.Duration `yaml:"scrollEndDelay"`
	ResizeDebounce    time.Duration `yaml:"resizeDebounce"`
	Debug             bool          `yaml:"debug"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Selector:          "[data-parallax]",
		Speed:             0.5,
		Direction:         Vertical,
		Threshold:         100,
		MaxTransform:      300,
		ContainTransforms: true,
		UpdateFrequency:   30,
		UseObserver:       true,
		ScrollThrottle:    16 * time.Millisecond,
		ScrollEndDelay:    150 * time.Millisecond,
		ResizeDebounce:    100 * time.Millisecond,
	}
}

// Normalize clamps every option into its valid range.
func (c Config) Normalize() Config {
	c.Speed = ClampSpeed(c.Speed)
	if !c.Direction.valid() {
		c.Direction = Vertical
	}
	if math.IsNaN(c.Offset) || math.IsInf(c.Offset, 0) {
		c.Offset = 0
	}
	c.Threshold = nonNegative(c.Threshold)
	c.MaxTransform = nonNegative(c.MaxTransform)
	if c.UpdateFrequency < 1 {
		c.UpdateFrequency = 1
	}
	if c.ScrollThrottle < 0 {
		c.ScrollThrottle = 0
	}
	if c.ScrollEndDelay < 0 {
		c.ScrollEndDelay = 0
	}
	if c.ResizeDebounce < 0 {
		c.ResizeDebounce = 0
	}
	return c
}

// ClampSpeed limits a speed factor to [MinSpeed, MaxSpeed].
func ClampSpeed(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(MinSpeed, math.Min(MaxSpeed, s))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// ItemConfig holds the per-item settings.
type ItemConfig struct {
	Speed     float64
	Direction Direction
	Offset    float64
}

func (ic ItemConfig) normalize() ItemConfig {
	ic.Speed = ClampSpeed(ic.Speed)
	if !ic.Direction.valid() {
		ic.Direction = Vertical
	}
	if math.IsNaN(ic.Offset) || math.IsInf(ic.Offset, 0) {
		ic.Offset = 0
	}
	return ic
}

// Element attributes read when an item is added without an ItemConfig.
const (
	AttrSpeed     = "data-speed"
	AttrDirection = "data-direction"
	AttrOffset    = "data-offset"
)
