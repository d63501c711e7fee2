package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the world frame.
type Pose interface {
	// Point returns the position of the pose.
	Point() r3.Vector
	// Orientation returns the orientation of the pose.
	Orientation() Orientation
}

type basicPose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose at (0,0,0) with no rotation.
func NewZeroPose() Pose {
	return &basicPose{orientation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(point)
	}
	return &basicPose{point: point, orientation: normalize(o.Quaternion())}
}

// NewPoseFromPoint takes in a position and returns a Pose with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &basicPose{point: point, orientation: quat.Number{Real: 1}}
}

// NewPoseFromXYYaw returns a pose in the ground plane with the given heading.
func NewPoseFromXYYaw(x, y, yaw float64) Pose {
	return NewPose(r3.Vector{X: x, Y: y}, &EulerAngles{Yaw: yaw})
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	q := quaternion(p.orientation)
	return &q
}

func (p *basicPose) String() string {
	ea := QuatToEulerAngles(p.orientation)
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f Roll:%.4f Pitch:%.4f Yaw:%.4f}",
		p.point.X, p.point.Y, p.point.Z, ea.Roll, ea.Pitch, ea.Yaw)
}

// Compose takes two poses, converts them to transforms, and multiplies them together.
// The result is the pose of b expressed in the parent frame of a.
func Compose(a, b Pose) Pose {
	qa := normalize(a.Orientation().Quaternion())
	return &basicPose{
		point:       a.Point().Add(RotateVector(qa, b.Point())),
		orientation: normalize(quat.Mul(qa, b.Orientation().Quaternion())),
	}
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same,
// with the given tolerance on the position.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return a.Point().Sub(b.Point()).Norm() < epsilon && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// TransformPoint2D expresses a point given in the frame of the pose in the world frame, then
// projects it onto the world XY plane.
func TransformPoint2D(pose Pose, local r2.Point) r2.Point {
	q := normalize(pose.Orientation().Quaternion())
	world := pose.Point().Add(RotateVector(q, r3.Vector{X: local.X, Y: local.Y}))
	return r2.Point{X: world.X, Y: world.Y}
}

// PlanarPosition returns the XY projection of the pose's position.
func PlanarPosition(pose Pose) r2.Point {
	return r2.Point{X: pose.Point().X, Y: pose.Point().Y}
}
