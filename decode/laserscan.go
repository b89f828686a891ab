package decode

import (
	"math"

	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

// LaserScanConfig configures the planar scan decoder.
type LaserScanConfig struct {
	Color ColorConfig
	// AutocomputeIntensityBounds tracks the intensity range over the decoded
	// scan for renderer-side normalization.
	AutocomputeIntensityBounds bool
}

// DecodeLaserScan converts a polar scan into Cartesian 2-D points with z = 0.
// Ranges outside [range_min, range_max] and non-finite ranges are skipped.
func DecodeLaserScan(
	msg *wire.LaserScan,
	cfg LaserScanConfig,
	pose spatialmath.Pose,
) (*DecodedBuffer, error) {
	if msg == nil {
		return nil, newStructuralErrorf("nil laser scan")
	}
	if len(msg.Ranges) == 0 {
		return nil, newStructuralErrorf("laser scan has no ranges")
	}

	out := make([]float32, 0, len(msg.Ranges)*floatsPerPoint)
	bounds := newBoundsTracker()

	for i, r := range msg.Ranges {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		if r < msg.RangeMin || r > msg.RangeMax {
			continue
		}
		angle := msg.AngleMin + float64(i)*msg.AngleIncrement
		x, y := utils.PolarToCartesian(angle, r)

		var intensity float64
		if i < len(msg.Intensities) {
			intensity = msg.Intensities[i]
			if math.IsNaN(intensity) || math.IsInf(intensity, 0) {
				intensity = 0
			}
		}
		out = append(out, float32(x), float32(y), 0, float32(intensity))
		if cfg.AutocomputeIntensityBounds {
			bounds.observe(intensity)
		}
	}

	buf := &DecodedBuffer{
		Points:     out,
		PointCount: len(out) / floatsPerPoint,
		Pose:       pose,
		Color:      cfg.Color,
	}
	if cfg.AutocomputeIntensityBounds {
		bounds.apply(&buf.Color, cfg.Color.MinValue, cfg.Color.MaxValue)
	}
	if len(buf.Color.Rainbow) == 0 && buf.Color.Transformer == ColorIntensity {
		buf.Color.Rainbow = DefaultRainbow()
	}
	return buf, nil
}
