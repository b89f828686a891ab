package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform: a translation plus a unit-quaternion rotation.
// It is a plain value so ownership can move across goroutines with a decoded
// buffer without sharing state.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{Orientation: NewZeroQuaternion()}
}

// NewPose returns a pose from a point and an orientation.
func NewPose(point r3.Vector, orientation quat.Number) Pose {
	return Pose{Point: point, Orientation: Normalize(orientation)}
}

// NewPoseFromPoint returns an unrotated pose at the given point.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{Point: point, Orientation: NewZeroQuaternion()}
}

// Compose returns the pose of b expressed in a's parent, i.e. a then b.
func Compose(a, b Pose) Pose {
	return Pose{
		Point:       a.Point.Add(RotateVector(a.Orientation, b.Point)),
		Orientation: Normalize(quat.Mul(a.Orientation, b.Orientation)),
	}
}

// TransformPoint expresses p, given in the pose's local frame, in the parent
// frame.
func (p Pose) TransformPoint(point r3.Vector) r3.Vector {
	return p.Point.Add(RotateVector(p.Orientation, point))
}

// AlmostEqual reports whether two poses are equal within tol on both the
// translational and rotational parts.
func (p Pose) AlmostEqual(other Pose, tol float64) bool {
	return p.Point.Sub(other.Point).Norm() < tol &&
		QuaternionAlmostEqual(p.Orientation, other.Orientation, tol)
}
