package decode

import (
	"encoding/binary"
	"math"

	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/wire"
)

const floatsPerPoint = 4 // x, y, z, intensity

// PointCloudConfig configures both point cloud decoders.
type PointCloudConfig struct {
	Color ColorConfig
	// AutocomputeBounds recomputes the min/max range over each decoded set
	// for intensity or axis color mapping. The tracking is incremental: one
	// pass, no second sweep over the output.
	AutocomputeBounds bool
}

// DecodePointCloud2 extracts points from a packed binary cloud into a flat
// float buffer, four float32 values per point. Color computation is deferred
// to the render stage; the decoder only extracts coordinates and intensity
// and, when asked, the normalization range.
//
// Points containing NaN or infinite coordinates are skipped, not errors.
func DecodePointCloud2(
	msg *wire.PointCloud2,
	cfg PointCloudConfig,
	pose spatialmath.Pose,
) (*DecodedBuffer, error) {
	if msg == nil {
		return nil, newStructuralErrorf("nil pointcloud2")
	}
	if len(msg.Data) == 0 {
		return nil, newStructuralErrorf("pointcloud2 has no data")
	}
	step := int(msg.PointStep)
	if step <= 0 {
		return nil, newStructuralErrorf("pointcloud2 has zero point_step")
	}

	layout, err := resolveFieldLayout(msg.Fields, step)
	if err != nil {
		return nil, err
	}

	order := binary.ByteOrder(binary.LittleEndian)
	if msg.IsBigendian {
		order = binary.BigEndian
	}

	numPoints := len(msg.Data) / step
	out := make([]float32, 0, numPoints*floatsPerPoint)
	bounds := newBoundsTracker()

	for i := 0; i < numPoints; i++ {
		record := msg.Data[i*step : (i+1)*step]
		x := readFloat32(record, layout.x, order)
		y := readFloat32(record, layout.y, order)
		z := readFloat32(record, layout.z, order)
		if !finite(x) || !finite(y) || !finite(z) {
			continue
		}
		var intensity float32
		if layout.hasIntensity {
			intensity = readFloat32(record, layout.intensity, order)
			if !finite(intensity) {
				intensity = 0
			}
		}
		out = append(out, x, y, z, intensity)
		if cfg.AutocomputeBounds {
			observePointBounds(&bounds, cfg.Color, x, y, z, intensity)
		}
	}

	buf := &DecodedBuffer{
		Points:     out,
		PointCount: len(out) / floatsPerPoint,
		Pose:       pose,
		Color:      cfg.Color,
	}
	finishPointColor(buf, cfg, &bounds)
	return buf, nil
}

// DecodePointCloud handles the legacy unpacked cloud: parallel point and
// channel arrays instead of a binary field layout.
func DecodePointCloud(
	msg *wire.PointCloud,
	cfg PointCloudConfig,
	pose spatialmath.Pose,
) (*DecodedBuffer, error) {
	if msg == nil {
		return nil, newStructuralErrorf("nil pointcloud")
	}
	if len(msg.Points) == 0 {
		return nil, newStructuralErrorf("pointcloud has no points")
	}

	intensities := intensityChannel(msg.Channels)
	out := make([]float32, 0, len(msg.Points)*floatsPerPoint)
	bounds := newBoundsTracker()

	for i, p := range msg.Points {
		x, y, z := float32(p.X), float32(p.Y), float32(p.Z)
		if !finite(x) || !finite(y) || !finite(z) {
			continue
		}
		var intensity float32
		if intensities != nil && i < len(intensities) {
			intensity = float32(intensities[i])
		}
		out = append(out, x, y, z, intensity)
		if cfg.AutocomputeBounds {
			observePointBounds(&bounds, cfg.Color, x, y, z, intensity)
		}
	}

	buf := &DecodedBuffer{
		Points:     out,
		PointCount: len(out) / floatsPerPoint,
		Pose:       pose,
		Color:      cfg.Color,
	}
	finishPointColor(buf, cfg, &bounds)
	return buf, nil
}

type fieldLayout struct {
	x, y, z      int
	intensity    int
	hasIntensity bool
}

// resolveFieldLayout maps the declared field table to byte offsets, failing
// with a descriptive error instead of guessing when x, y, or z is missing.
func resolveFieldLayout(fields []wire.PointField, step int) (fieldLayout, error) {
	layout := fieldLayout{x: -1, y: -1, z: -1, intensity: -1}
	for _, f := range fields {
		switch f.Name {
		case "x":
			layout.x = int(f.Offset)
		case "y":
			layout.y = int(f.Offset)
		case "z":
			layout.z = int(f.Offset)
		case "intensity", "i", "I":
			layout.intensity = int(f.Offset)
		}
	}
	for name, off := range map[string]int{"x": layout.x, "y": layout.y, "z": layout.z} {
		if off < 0 {
			return layout, newStructuralErrorf("pointcloud2 field table missing %q offset", name)
		}
		if off+4 > step {
			return layout, newStructuralErrorf(
				"pointcloud2 field %q at offset %d overruns point_step %d", name, off, step)
		}
	}
	if layout.intensity >= 0 && layout.intensity+4 <= step {
		layout.hasIntensity = true
	}
	return layout, nil
}

func intensityChannel(channels []wire.ChannelFloat32) []float64 {
	for _, ch := range channels {
		switch ch.Name {
		case "intensity", "intensities", "i", "I":
			return ch.Values
		}
	}
	return nil
}

func readFloat32(record []byte, offset int, order binary.ByteOrder) float32 {
	return math.Float32frombits(order.Uint32(record[offset : offset+4]))
}

func finite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}

// observePointBounds feeds the value driving the configured color mode into
// the incremental range tracker.
func observePointBounds(bounds *boundsTracker, color ColorConfig, x, y, z, intensity float32) {
	switch color.Transformer {
	case ColorIntensity:
		bounds.observe(float64(intensity))
	case ColorAxis:
		switch color.Axis {
		case "x":
			bounds.observe(float64(x))
		case "y":
			bounds.observe(float64(y))
		default:
			bounds.observe(float64(z))
		}
	case ColorFlat, ColorRGB:
	}
}

func finishPointColor(buf *DecodedBuffer, cfg PointCloudConfig, bounds *boundsTracker) {
	if cfg.AutocomputeBounds {
		bounds.apply(&buf.Color, cfg.Color.MinValue, cfg.Color.MaxValue)
	}
	if len(buf.Color.Rainbow) == 0 &&
		(buf.Color.Transformer == ColorIntensity || buf.Color.Transformer == ColorAxis) {
		buf.Color.Rainbow = DefaultRainbow()
	}
}
