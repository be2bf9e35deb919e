package stream

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/scrollfx/parallax"
)

// GradientTable stores a look-up table of hues keyed by position in [0, 1].
type GradientTable []struct {
	Hue float64
	Pos float64
}

// SpeedGradient runs from blue for layers moving against the scroll to red
// for the fastest layers.
var SpeedGradient = GradientTable{
	{240.0, 0.0},  // Blue
	{190.0, 0.25}, // Turquoise
	{120.0, 0.5},  // Green
	{60.0, 0.75},  // Yellow
	{0.0, 1.0},    // Red
}

// GetColor returns the colour at t, blending hue between the surrounding
// keypoints.
func (g GradientTable) GetColor(t, c, l float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Hcl(0, 0, l)
	}
	if t <= g[0].Pos {
		return colorful.Hcl(g[0].Hue, c, l).Clamped()
	}
	for i := 0; i < len(g)-1; i++ {
		k1, k2 := g[i], g[i+1]
		if k1.Pos <= t && t <= k2.Pos {
			h := k1.Hue + (t-k1.Pos)/(k2.Pos-k1.Pos)*(k2.Hue-k1.Hue)
			return colorful.Hcl(h, c, l).Clamped()
		}
	}
	return colorful.Hcl(g[len(g)-1].Hue, c, l).Clamped()
}

// SpeedColour maps a parallax speed onto the gradient.
func (g GradientTable) SpeedColour(speed float64) colorful.Color {
	t := (parallax.ClampSpeed(speed) - parallax.MinSpeed) / (parallax.MaxSpeed - parallax.MinSpeed)
	return g.GetColor(t, 0.7, 0.6)
}
