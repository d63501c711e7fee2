// Package capturepoint implements the linear inverted pendulum relations between the
// instantaneous capture point (ICP), the centroidal moment pivot (CMP) and time.
//
// With the CMP held constant, the ICP diverges away from it exponentially:
//
//	icp(t) = cmp + (icp(0) - cmp) * exp(omega0 * t)
package capturepoint

import (
	"math"

	"github.com/golang/geo/r2"
)

// minimumDistance is the ICP to CMP distance (m) under which the divergence direction is undefined.
const minimumDistance = 1e-9

// DesiredCapturePoint returns the ICP reached after holding cmp for duration seconds starting
// from initialICP.
func DesiredCapturePoint(omega0, duration float64, initialICP, cmp r2.Point) r2.Point {
	return cmp.Add(initialICP.Sub(cmp).Mul(math.Exp(omega0 * duration)))
}

// CapturePointBeforeTransfer back-propagates the ICP expected at the end of a transfer of
// transferDuration seconds, held on cmp, to the ICP at the start of that transfer.
func CapturePointBeforeTransfer(icpAtEndOfTransfer, cmp r2.Point, omega0, transferDuration float64) r2.Point {
	return cmp.Add(icpAtEndOfTransfer.Sub(cmp).Mul(math.Exp(-omega0 * transferDuration)))
}

// TimeToReachCapturePoint returns how long the ICP takes to go from initialICP to targetICP with
// the CMP held at cmp. The target is measured along the divergence direction from cmp through
// initialICP. The result is NaN when omega0 is not positive, when initialICP is on the cmp, or
// when the target lies behind the cmp, and may be negative when the target lies between the cmp
// and initialICP. Callers must check it.
func TimeToReachCapturePoint(omega0 float64, targetICP, initialICP, cmp r2.Point) float64 {
	if !(omega0 > 0) {
		return math.NaN()
	}
	initialOffset := initialICP.Sub(cmp)
	initialDistance := initialOffset.Norm()
	if !(initialDistance > minimumDistance) {
		return math.NaN()
	}
	finalDistance := targetICP.Sub(cmp).Dot(initialOffset.Mul(1 / initialDistance))
	if !(finalDistance > 0) {
		return math.NaN()
	}
	return math.Log(finalDistance/initialDistance) / omega0
}
