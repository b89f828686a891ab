// Package spatialmath defines the spatial math shared by the frame tree and
// the payload decoders: unit quaternions, rotations, and rigid poses.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// defaultAngleEpsilon is the rotational equality tolerance used by the
// AlmostEqual helpers.
const defaultAngleEpsilon = 1e-8

// NewQuaternion constructs a quaternion from its w (real) and x, y, z
// (imaginary) components.
func NewQuaternion(w, x, y, z float64) quat.Number {
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// NewZeroQuaternion returns the identity rotation.
func NewZeroQuaternion() quat.Number {
	return quat.Number{Real: 1}
}

// Normalize scales q to unit norm. The zero quaternion normalizes to the
// identity so downstream rotations stay well defined.
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if length == 0 {
		return NewZeroQuaternion()
	}
	return quat.Scale(1/length, q)
}

// NewQuaternionFromAxisAngle returns the unit quaternion rotating by theta
// radians about the given axis. A zero axis yields the identity.
func NewQuaternionFromAxisAngle(axis r3.Vector, theta float64) quat.Number {
	if axis.Norm() == 0 {
		return NewZeroQuaternion()
	}
	axis = axis.Normalize()
	sin := math.Sin(theta / 2)
	return quat.Number{
		Real: math.Cos(theta / 2),
		Imag: axis.X * sin,
		Jmag: axis.Y * sin,
		Kmag: axis.Z * sin,
	}
}

// RotateVector rotates v by the unit quaternion q, computing q * v * q⁻¹.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q, vq), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuaternionBetweenVectors returns the shortest-arc rotation taking from onto
// to. Antiparallel inputs rotate pi about an arbitrary perpendicular axis.
func QuaternionBetweenVectors(from, to r3.Vector) quat.Number {
	from, to = from.Normalize(), to.Normalize()
	dot := from.Dot(to)
	switch {
	case dot > 1-defaultAngleEpsilon:
		return NewZeroQuaternion()
	case dot < -1+defaultAngleEpsilon:
		perp := from.Cross(r3.Vector{X: 1})
		if perp.Norm() < defaultAngleEpsilon {
			perp = from.Cross(r3.Vector{Y: 1})
		}
		return NewQuaternionFromAxisAngle(perp, math.Pi)
	default:
		cross := from.Cross(to)
		return Normalize(quat.Number{Real: 1 + dot, Imag: cross.X, Jmag: cross.Y, Kmag: cross.Z})
	}
}

// QuaternionAlmostEqual reports whether two unit quaternions represent the
// same rotation within tol, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return 1-math.Abs(dot) < tol
}
