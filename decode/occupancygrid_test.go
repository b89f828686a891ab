package decode

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/wire"
)

func gridMsg(width, height uint32, resolution float64, data []int8) *wire.OccupancyGrid {
	return &wire.OccupancyGrid{
		Info: &wire.MapMetaData{Width: width, Height: height, Resolution: resolution},
		Data: data,
	}
}

func TestDecodeOccupancyGrid(t *testing.T) {
	msg := gridMsg(2, 2, 0.05, []int8{-1, 0, 50, 100})
	buf, err := DecodeOccupancyGrid(msg, OccupancyGridConfig{}, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf.Width, test.ShouldEqual, 2)
	test.That(t, buf.Height, test.ShouldEqual, 2)
	test.That(t, len(buf.Texture), test.ShouldEqual, 16)

	// Unknown, free, half occupied, fully occupied.
	ff := float64(0xff)
	test.That(t, buf.Texture[0], test.ShouldEqual, 0)
	test.That(t, buf.Texture[4], test.ShouldEqual, byte(0.5*ff))
	test.That(t, buf.Texture[8], test.ShouldEqual, byte(0.75*ff))
	test.That(t, buf.Texture[12], test.ShouldEqual, 0xff)

	// Fully opaque by default.
	test.That(t, buf.Texture[3], test.ShouldEqual, 0xff)
}

func TestOccupancyEncodingMonotone(t *testing.T) {
	unknown := encodeOccupancy(-1)
	free := encodeOccupancy(0)
	test.That(t, unknown, test.ShouldBeLessThan, free)

	prev := free
	for v := int8(1); v <= 100 && v > 0; v++ {
		cur := encodeOccupancy(v)
		test.That(t, cur, test.ShouldBeGreaterThanOrEqualTo, prev)
		prev = cur
	}
	test.That(t, prev, test.ShouldEqual, byte(0xff))
}

func TestDecodeOccupancyGridDegenerate(t *testing.T) {
	for _, msg := range []*wire.OccupancyGrid{
		gridMsg(0, 4, 0.05, []int8{0}),
		gridMsg(4, 0, 0.05, []int8{0}),
		gridMsg(2, 2, 0, []int8{0, 0, 0, 0}),
	} {
		buf, err := DecodeOccupancyGrid(msg, OccupancyGridConfig{}, spatialmath.NewZeroPose())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, buf, test.ShouldBeNil)
	}
}

func TestDecodeOccupancyGridStructuralErrors(t *testing.T) {
	_, err := DecodeOccupancyGrid(&wire.OccupancyGrid{Data: []int8{0}}, OccupancyGridConfig{}, spatialmath.NewZeroPose())
	test.That(t, IsStructuralError(err), test.ShouldBeTrue)

	// Data shorter than the declared dimensions.
	_, err = DecodeOccupancyGrid(gridMsg(4, 4, 0.05, []int8{0, 0}), OccupancyGridConfig{}, spatialmath.NewZeroPose())
	test.That(t, IsStructuralError(err), test.ShouldBeTrue)
}

func TestDecodeOccupancyGridAlphaAndOrigin(t *testing.T) {
	msg := gridMsg(1, 1, 0.1, []int8{0})
	msg.Info.Origin = wire.Pose{
		Position:    wire.Vector3{X: -5, Y: -5},
		Orientation: wire.Quaternion{W: 1},
	}
	buf, err := DecodeOccupancyGrid(msg, OccupancyGridConfig{Alpha: 0.5}, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	ff := float64(0xff)
	test.That(t, buf.Texture[3], test.ShouldEqual, byte(0.5*ff))
	test.That(t, buf.Pose.Point.X, test.ShouldEqual, -5)
}
