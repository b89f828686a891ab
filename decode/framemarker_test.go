package decode

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/viz/spatialmath"
)

func TestGenerateFrameMarkersAxes(t *testing.T) {
	poses := []FramePose{{Name: "base_link", Pose: spatialmath.NewZeroPose()}}
	list := GenerateFrameMarkers(poses, FrameMarkerConfig{})

	test.That(t, len(list.Cylinders), test.ShouldEqual, 3)
	test.That(t, len(list.Arrows), test.ShouldEqual, 0)

	// X cylinder is red and extends along +X from the origin.
	x := list.Cylinders[0]
	test.That(t, x.Color, test.ShouldResemble, axisColorX)
	test.That(t, x.Center.X, test.ShouldAlmostEqual, DefaultAxisLength/2)
	test.That(t, x.Center.Y, test.ShouldAlmostEqual, 0, 1e-9)

	// Each cylinder's orientation takes the canonical +Z axis onto its axis.
	zAxis := spatialmath.RotateVector(list.Cylinders[0].Orientation, r3.Vector{Z: 1})
	test.That(t, zAxis.X, test.ShouldAlmostEqual, 1, 1e-9)
	zAxis = spatialmath.RotateVector(list.Cylinders[1].Orientation, r3.Vector{Z: 1})
	test.That(t, zAxis.Y, test.ShouldAlmostEqual, 1, 1e-9)
	zAxis = spatialmath.RotateVector(list.Cylinders[2].Orientation, r3.Vector{Z: 1})
	test.That(t, zAxis.Z, test.ShouldAlmostEqual, 1, 1e-9)
}

func TestGenerateFrameMarkersRotatedFrame(t *testing.T) {
	// Rotate the whole frame 90 degrees about Z: the X axis cylinder should
	// now extend along +Y.
	pose := spatialmath.NewPose(
		r3.Vector{},
		spatialmath.NewQuaternionFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2),
	)
	list := GenerateFrameMarkers([]FramePose{{Pose: pose}}, FrameMarkerConfig{})
	x := list.Cylinders[0]
	test.That(t, x.Center.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, x.Center.Y, test.ShouldAlmostEqual, DefaultAxisLength/2)
}

func TestGenerateFrameMarkersParentArrow(t *testing.T) {
	parent := spatialmath.NewZeroPose()

	// Too close: no arrow.
	near := []FramePose{{
		Pose:       spatialmath.NewPoseFromPoint(r3.Vector{X: 0.01}),
		HasParent:  true,
		ParentPose: parent,
	}}
	list := GenerateFrameMarkers(near, FrameMarkerConfig{})
	test.That(t, len(list.Arrows), test.ShouldEqual, 0)

	// Far enough: one arrow from parent to child.
	far := []FramePose{{
		Pose:       spatialmath.NewPoseFromPoint(r3.Vector{X: 1}),
		HasParent:  true,
		ParentPose: parent,
	}}
	list = GenerateFrameMarkers(far, FrameMarkerConfig{})
	test.That(t, len(list.Arrows), test.ShouldEqual, 1)
	test.That(t, list.Arrows[0].From, test.ShouldResemble, r3.Vector{})
	test.That(t, list.Arrows[0].To, test.ShouldResemble, r3.Vector{X: 1})
}

func TestRainbow(t *testing.T) {
	stops := Rainbow(5)
	test.That(t, len(stops), test.ShouldEqual, 5)

	// Endpoints are violet and red.
	h0, _, _ := stops[0].Hsv()
	h4, _, _ := stops[4].Hsv()
	test.That(t, h0, test.ShouldAlmostEqual, 270, 1)
	test.That(t, h4, test.ShouldAlmostEqual, 0, 1)
}
