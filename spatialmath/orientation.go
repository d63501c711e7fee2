// Package spatialmath defines the poses, orientations and planar convex geometry used by the
// capture region calculators.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. q and -q
// describe the same rotation and compare equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := func(a, b quat.Number) bool {
		return math.Abs(a.Real-b.Real) < tol &&
			math.Abs(a.Imag-b.Imag) < tol &&
			math.Abs(a.Jmag-b.Jmag) < tol &&
			math.Abs(a.Kmag-b.Kmag) < tol
	}
	return same(a, b) || same(a, quat.Scale(-1, b))
}

// Yaw returns the heading of the orientation about the world z axis.
func Yaw(o Orientation) float64 {
	return o.EulerAngles().Yaw
}

type quaternion quat.Number

// Quaternion returns orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// EulerAngles returns orientation in Euler angle representation (ZYX intrinsic).
func (q *quaternion) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(quat.Number(*q))
}

// normalize returns the unit quaternion of q, or identity for a zero quaternion.
func normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}
