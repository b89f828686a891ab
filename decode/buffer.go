// Package decode turns validated sensor payloads into render-ready numeric
// buffers. Every decoder is a pure function: raw message plus config plus a
// pre-resolved pose in, typed buffer or typed error out, no ambient state, so
// decoders may run on any goroutine.
package decode

import (
	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/viz/spatialmath"
)

// ColorTransformer selects how the renderer maps decoded values to pixels.
// The decoders only supply the raw values and normalized ranges.
type ColorTransformer int

// The supported color mapping strategies.
const (
	ColorFlat ColorTransformer = iota
	ColorIntensity
	ColorAxis
	ColorRGB
)

func (c ColorTransformer) String() string {
	switch c {
	case ColorFlat:
		return "flat"
	case ColorIntensity:
		return "intensity"
	case ColorAxis:
		return "axis"
	case ColorRGB:
		return "rgb"
	default:
		return "unknown"
	}
}

// ColorConfig is the color-mapping metadata handed to the renderer next to a
// buffer. Bounds are only meaningful when HasBounds is set.
type ColorConfig struct {
	Transformer ColorTransformer
	FlatColor   colorful.Color
	// Axis names the coordinate ("x", "y", "z") driving ColorAxis mapping.
	Axis      string
	MinValue  float64
	MaxValue  float64
	HasBounds bool
	// Rainbow is the gradient the renderer interpolates across for
	// intensity and axis mapping.
	Rainbow []colorful.Color
}

// DecodedBuffer is the output of a non-marker decoder. Exactly one of Points
// or Texture is populated. Ownership transfers to the consumer on return;
// decoders never retain a reference, which keeps the handoff zero-copy.
type DecodedBuffer struct {
	// Points interleaves 4 float32 values per point: x, y, z, intensity.
	Points []float32
	// Texture is a packed width*height*4 RGBA byte array.
	Texture []byte

	PointCount int
	Width      int
	Height     int

	Pose  spatialmath.Pose
	Color ColorConfig
}
