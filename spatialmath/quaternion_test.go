package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestRotateVector(t *testing.T) {
	// 90 degrees about Z takes X onto Y.
	q := NewQuaternionFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2)
	got := RotateVector(q, r3.Vector{X: 1})
	test.That(t, got.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, got.Y, test.ShouldAlmostEqual, 1)
	test.That(t, got.Z, test.ShouldAlmostEqual, 0, 1e-9)

	// Identity leaves vectors alone.
	got = RotateVector(NewZeroQuaternion(), r3.Vector{X: 3, Y: -2, Z: 0.5})
	test.That(t, got, test.ShouldResemble, r3.Vector{X: 3, Y: -2, Z: 0.5})
}

func TestNormalize(t *testing.T) {
	q := Normalize(NewQuaternion(2, 0, 0, 0))
	test.That(t, q.Real, test.ShouldAlmostEqual, 1)

	// Zero quaternion falls back to the identity.
	q = Normalize(NewQuaternion(0, 0, 0, 0))
	test.That(t, q, test.ShouldResemble, NewZeroQuaternion())
}

func TestQuaternionBetweenVectors(t *testing.T) {
	q := QuaternionBetweenVectors(r3.Vector{X: 1}, r3.Vector{Y: 1})
	got := RotateVector(q, r3.Vector{X: 1})
	test.That(t, got.Y, test.ShouldAlmostEqual, 1)

	// Antiparallel case still produces a valid half-turn.
	q = QuaternionBetweenVectors(r3.Vector{Z: 1}, r3.Vector{Z: -1})
	got = RotateVector(q, r3.Vector{Z: 1})
	test.That(t, got.Z, test.ShouldAlmostEqual, -1)
}

func TestPoseCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 1}, NewQuaternionFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2))
	b := NewPoseFromPoint(r3.Vector{X: 1})

	composed := Compose(a, b)
	test.That(t, composed.Point.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, composed.Point.Y, test.ShouldAlmostEqual, 1)

	p := composed.TransformPoint(r3.Vector{})
	test.That(t, p, test.ShouldResemble, composed.Point)
}

func TestPoseAlmostEqual(t *testing.T) {
	a := NewZeroPose()
	b := NewPose(r3.Vector{X: 1e-12}, NewZeroQuaternion())
	test.That(t, a.AlmostEqual(b, 1e-9), test.ShouldBeTrue)
	test.That(t, a.AlmostEqual(NewPoseFromPoint(r3.Vector{X: 1}), 1e-9), test.ShouldBeFalse)
}
