package decode

import "github.com/lucasb-eyer/go-colorful"

// defaultRainbowStops is how many gradient stops we hand the renderer.
const defaultRainbowStops = 7

// Rainbow returns n gradient stops from violet to red, blended in HSV so the
// hue sweep stays perceptually even. Used as the default gradient for
// intensity and axis color mapping.
func Rainbow(n int) []colorful.Color {
	if n < 2 {
		n = 2
	}
	start := colorful.Hsv(270, 1, 1)
	end := colorful.Hsv(0, 1, 1)
	stops := make([]colorful.Color, n)
	for i := range stops {
		stops[i] = start.BlendHsv(end, float64(i)/float64(n-1))
	}
	return stops
}

// DefaultRainbow is Rainbow with the standard stop count.
func DefaultRainbow() []colorful.Color {
	return Rainbow(defaultRainbowStops)
}

// boundsTracker incrementally tracks a min/max range in a single pass.
type boundsTracker struct {
	min, max float64
	seen     bool
}

func newBoundsTracker() boundsTracker {
	return boundsTracker{}
}

func (b *boundsTracker) observe(v float64) {
	if !b.seen {
		b.min, b.max = v, v
		b.seen = true
		return
	}
	if v < b.min {
		b.min = v
	}
	if v > b.max {
		b.max = v
	}
}

// apply writes the tracked bounds into a ColorConfig, falling back to the
// configured fixed bounds when nothing was observed.
func (b *boundsTracker) apply(cfg *ColorConfig, fallbackMin, fallbackMax float64) {
	if b.seen {
		cfg.MinValue, cfg.MaxValue = b.min, b.max
		cfg.HasBounds = true
		return
	}
	cfg.MinValue, cfg.MaxValue = fallbackMin, fallbackMax
	cfg.HasBounds = fallbackMin != 0 || fallbackMax != 0
}
