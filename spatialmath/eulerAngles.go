package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// Applied in yaw, pitch, roll order about the moving axes.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	cr := math.Cos(ea.Roll / 2)
	sr := math.Sin(ea.Roll / 2)
	cp := math.Cos(ea.Pitch / 2)
	sp := math.Sin(ea.Pitch / 2)
	cy := math.Cos(ea.Yaw / 2)
	sy := math.Sin(ea.Yaw / 2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// QuatToEulerAngles converts a quaternion to the euler angle representation.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	q = normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	angles := EulerAngles{}
	angles.Roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	if math.Abs(sinp) >= 1 {
		angles.Pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		angles.Pitch = math.Asin(sinp)
	}

	angles.Yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return &angles
}
