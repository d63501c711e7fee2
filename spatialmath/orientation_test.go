package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/pushrecovery/utils"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.), Jmag: 0, Kmag: 0} // in quaternion representation
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}                                        // in euler angle representation
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero.Quaternion(), test.ShouldResemble, quat.Number{Real: 1, Imag: 0, Jmag: 0, Kmag: 0})
	test.That(t, zero.EulerAngles(), test.ShouldResemble, NewEulerAngles())
}

func TestQuaternions(t *testing.T) {
	qq45x := quaternion(q45x)
	test.That(t, qq45x.Quaternion().Real, test.ShouldAlmostEqual, q45x.Real)
	test.That(t, qq45x.Quaternion().Imag, test.ShouldAlmostEqual, q45x.Imag)
	test.That(t, qq45x.EulerAngles().Roll, test.ShouldAlmostEqual, ea45x.Roll)
	test.That(t, qq45x.EulerAngles().Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
	test.That(t, qq45x.EulerAngles().Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
}

func TestEulerAngles(t *testing.T) {
	q := ea45x.Quaternion()
	test.That(t, q.Real, test.ShouldAlmostEqual, q45x.Real)
	test.That(t, q.Imag, test.ShouldAlmostEqual, q45x.Imag)
	test.That(t, q.Jmag, test.ShouldAlmostEqual, 0)
	test.That(t, q.Kmag, test.ShouldAlmostEqual, 0)

	ea := &EulerAngles{Roll: 0.1, Pitch: -0.2, Yaw: utils.DegToRad(135)}
	back := QuatToEulerAngles(ea.Quaternion())
	test.That(t, back.Roll, test.ShouldAlmostEqual, ea.Roll)
	test.That(t, back.Pitch, test.ShouldAlmostEqual, ea.Pitch)
	test.That(t, back.Yaw, test.ShouldAlmostEqual, ea.Yaw)
	test.That(t, Yaw(ea), test.ShouldAlmostEqual, utils.DegToRad(135))
}

func TestOrientationAlmostEqual(t *testing.T) {
	qq45x := quaternion(q45x)
	negated := quaternion(quat.Scale(-1, q45x))
	test.That(t, OrientationAlmostEqual(&qq45x, ea45x), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(&qq45x, &negated), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(&qq45x, NewZeroOrientation()), test.ShouldBeFalse)
}

func TestOrientationBetween(t *testing.T) {
	from := &EulerAngles{Yaw: 0.3}
	to := &EulerAngles{Yaw: 1.0}
	between := OrientationBetween(from, to)
	test.That(t, Yaw(between), test.ShouldAlmostEqual, 0.7)
}
