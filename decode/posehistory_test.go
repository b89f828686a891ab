package decode

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/viz/spatialmath"
)

func sampleAt(x float64, at time.Time) PoseSample {
	return PoseSample{Pose: spatialmath.NewPoseFromPoint(r3.Vector{X: x}), Time: at}
}

func TestPoseHistoryEvictsOldest(t *testing.T) {
	h := NewPoseHistory(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		h.Add(sampleAt(float64(i), now.Add(time.Duration(i)*time.Second)))
	}

	test.That(t, h.Len(), test.ShouldEqual, 3)
	samples := h.Samples()
	test.That(t, samples[0].Pose.Point.X, test.ShouldAlmostEqual, 2)
	test.That(t, samples[2].Pose.Point.X, test.ShouldAlmostEqual, 4)
}

func TestPoseHistoryZeroLimitStillHoldsOne(t *testing.T) {
	h := NewPoseHistory(0)
	h.Add(sampleAt(1, time.Now()))
	h.Add(sampleAt(2, time.Now()))
	test.That(t, h.Len(), test.ShouldEqual, 1)
	test.That(t, h.Samples()[0].Pose.Point.X, test.ShouldAlmostEqual, 2)
}

func TestDecodePoseHistoryShapes(t *testing.T) {
	now := time.Now()
	samples := []PoseSample{sampleAt(0, now), sampleAt(1, now)}

	axes := DecodePoseHistory(samples, PoseHistoryConfig{Shape: ShapeAxes})
	test.That(t, len(axes.Cylinders), test.ShouldEqual, 6)

	arrows := DecodePoseHistory(samples, PoseHistoryConfig{Shape: ShapeArrow})
	test.That(t, len(arrows.Arrows), test.ShouldEqual, 2)
	// Identity orientation points the forward arrow along +X.
	test.That(t, arrows.Arrows[0].To.X, test.ShouldAlmostEqual, DefaultAxisLength)

	points := DecodePoseHistory(samples, PoseHistoryConfig{Shape: ShapePoint})
	test.That(t, len(points.Points), test.ShouldEqual, 2)
	test.That(t, points.Points[1].Position.X, test.ShouldAlmostEqual, 1)
}
