package captureregion

import (
	"github.com/golang/geo/r2"

	"go.viam.com/pushrecovery/capturepoint"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/utils"
)

// AchievableCaptureRegionCalculator computes the capture points that can be reached at touchdown
// of the next step, accounting for the transfer that follows it.
//
// While the swing foot is in the air the CMP stays in the stance polygon. For every candidate
// swing time and every stance vertex used as CMP, the ICP is propagated through the swing and the
// next transfer; the convex hull of these points is the capture region.
type AchievableCaptureRegionCalculator struct {
	captureRegion *spatialmath.ConvexPolygon
}

// NewAchievableCaptureRegionCalculator returns a calculator with an empty region.
func NewAchievableCaptureRegionCalculator() *AchievableCaptureRegionCalculator {
	return &AchievableCaptureRegionCalculator{captureRegion: spatialmath.NewConvexPolygon()}
}

// CalculateCaptureRegion recomputes the capture region. It returns true when icpAtStart already
// lies in stancePolygon, in which case no step is needed and the region is left empty. Invalid
// inputs (omega0 not positive, a stance polygon with fewer than three vertices, a non-finite ICP
// or no candidate swing time) also leave the region empty and return false.
func (c *AchievableCaptureRegionCalculator) CalculateCaptureRegion(
	nextTransferDuration float64,
	candidateSwingTimes []float64,
	icpAtStart r2.Point,
	omega0 float64,
	stancePolygon *spatialmath.ConvexPolygon,
) bool {
	c.captureRegion.Clear()
	if !(omega0 > 0) || stancePolygon == nil || stancePolygon.NumVertices() < 3 ||
		!utils.IsFinite(icpAtStart.X, icpAtStart.Y) || len(candidateSwingTimes) == 0 {
		return false
	}
	if stancePolygon.IsPointInside(icpAtStart) {
		return true
	}

	for _, swingTime := range candidateSwingTimes {
		duration := swingTime + nextTransferDuration
		for _, cmp := range stancePolygon.Vertices() {
			c.captureRegion.AddVertex(capturepoint.DesiredCapturePoint(omega0, duration, icpAtStart, cmp))
		}
	}
	c.captureRegion.Update()
	return false
}

// CaptureRegion returns the region computed by the last call. It is owned by the calculator.
func (c *AchievableCaptureRegionCalculator) CaptureRegion() *spatialmath.ConvexPolygon {
	return c.captureRegion
}
