package decode

import (
	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

// Occupancy encoding in the texture's R channel. Unknown cells sit below the
// free-space value so the renderer can distinguish them.
const (
	occupancyUnknown = 0.0
	occupancyFree    = 0.5
)

// OccupancyGridConfig configures the grid decoder.
type OccupancyGridConfig struct {
	// Alpha is the global opacity written to every texel, in [0, 1].
	// Zero means fully opaque (the common default).
	Alpha float64
}

func (cfg OccupancyGridConfig) alphaByte() byte {
	if cfg.Alpha == 0 {
		return 0xff
	}
	return byte(utils.Clamp(cfg.Alpha, 0, 1) * 0xff)
}

// DecodeOccupancyGrid encodes a grid as one width*height RGBA texture rather
// than per-cell geometry; the legacy two-triangles-per-cell path is two to
// three orders of magnitude slower. The R channel carries the normalized
// occupancy value and A the global opacity.
//
// Degenerate dimensions yield (nil, nil): nothing to draw, not an error.
func DecodeOccupancyGrid(
	msg *wire.OccupancyGrid,
	cfg OccupancyGridConfig,
	pose spatialmath.Pose,
) (*DecodedBuffer, error) {
	if msg == nil || msg.Info == nil {
		return nil, newStructuralErrorf("occupancy grid missing info")
	}
	width, height := int(msg.Info.Width), int(msg.Info.Height)
	if width == 0 || height == 0 || msg.Info.Resolution == 0 {
		return nil, nil
	}
	if len(msg.Data) < width*height {
		return nil, newStructuralErrorf(
			"occupancy grid data too short: have %d cells, need %d", len(msg.Data), width*height)
	}

	alpha := cfg.alphaByte()
	texture := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		texture[i*4] = encodeOccupancy(msg.Data[i])
		texture[i*4+3] = alpha
	}

	return &DecodedBuffer{
		Texture: texture,
		Width:   width,
		Height:  height,
		// The grid's origin is expressed inside its own frame.
		Pose:  spatialmath.Compose(pose, msg.Info.Origin.AsPose()),
		Color: ColorConfig{Transformer: ColorRGB},
	}, nil
}

// encodeOccupancy maps a raw cell value to the R channel: 0.0 for unknown,
// 0.5 for free, 0.5 + (v/100)*0.5 for occupied.
func encodeOccupancy(value int8) byte {
	var normalized float64
	switch {
	case value < 0:
		normalized = occupancyUnknown
	case value == 0:
		normalized = occupancyFree
	default:
		occupied := utils.Clamp(float64(value), 0, 100)
		normalized = occupancyFree + occupied/100*0.5
	}
	return byte(normalized * 0xff)
}
