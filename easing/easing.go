package easing

import (
	"sort"

	"github.com/fogleman/ease"
)

// Default is the easing used when a requested name is not registered.
const Default = "easeInOutCubic"

// A Func remaps normalised time in [0, 1] to animation progress.
//
// Built-in functions satisfy f(0) = 0 and f(1) = 1. Back and elastic curves
// leave [0, 1] between the endpoints. Custom functions are not checked.
type Func func(t float64) float64

// pin clamps the input to [0, 1] and returns the exact endpoints there, so
// curves with rounding residue at t = 1 still land on their target.
func pin(fn func(float64) float64) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return fn(t)
	}
}

var builtins = map[string]Func{
	"linear": pin(ease.Linear),

	"easeInQuad":    pin(ease.InQuad),
	"easeOutQuad":   pin(ease.OutQuad),
	"easeInOutQuad": pin(ease.InOutQuad),

	"easeInCubic":    pin(ease.InCubic),
	"easeOutCubic":   pin(ease.OutCubic),
	"easeInOutCubic": pin(ease.InOutCubic),

	"easeInQuart":    pin(ease.InQuart),
	"easeOutQuart":   pin(ease.OutQuart),
	"easeInOutQuart": pin(ease.InOutQuart),

	"easeInQuint":    pin(ease.InQuint),
	"easeOutQuint":   pin(ease.OutQuint),
	"easeInOutQuint": pin(ease.InOutQuint),

	"easeInSine":    pin(ease.InSine),
	"easeOutSine":   pin(ease.OutSine),
	"easeInOutSine": pin(ease.InOutSine),

	"easeInExpo":    pin(ease.InExpo),
	"easeOutExpo":   pin(ease.OutExpo),
	"easeInOutExpo": pin(ease.InOutExpo),

	"easeInCirc":    pin(ease.InCirc),
	"easeOutCirc":   pin(ease.OutCirc),
	"easeInOutCirc": pin(ease.InOutCirc),

	"easeInBack":    pin(ease.InBack),
	"easeOutBack":   pin(ease.OutBack),
	"easeInOutBack": pin(ease.InOutBack),

	"easeInElastic":    pin(ease.InElastic),
	"easeOutElastic":   pin(ease.OutElastic),
	"easeInOutElastic": pin(ease.InOutElastic),

	"easeInBounce":    pin(ease.InBounce),
	"easeOutBounce":   pin(ease.OutBounce),
	"easeInOutBounce": pin(ease.InOutBounce),
}

// Builtins returns a copy of the built-in easing set.
func Builtins() map[string]Func {
	out := make(map[string]Func, len(builtins))
	for name, fn := range builtins {
		out[name] = fn
	}
	return out
}

// Registry maps easing names to functions. Entries are never removed and the
// last registration of a name wins.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry creates a Registry seeded with the built-in easings.
func NewRegistry() *Registry {
	r := new(Registry)
	r.funcs = Builtins()
	return r
}

// Register adds or replaces a named easing. A nil function is ignored.
func (r *Registry) Register(name string, fn Func) {
	if fn == nil || name == "" {
		return
	}
	r.funcs[name] = fn
}

// Lookup returns the easing registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Get returns the easing registered under name, or the Default easing.
func (r *Registry) Get(name string) Func {
	if fn, ok := r.funcs[name]; ok {
		return fn
	}
	if fn, ok := r.funcs[Default]; ok {
		return fn
	}
	return builtins[Default]
}

// Names lists the registered easing names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
