package captureregion

import (
	"github.com/golang/geo/r2"

	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/stepconstraint"
)

// NumberOfRecoverySteps returns the number of planned steps.
func (c *RecoveryStepCalculator) NumberOfRecoverySteps() int {
	return len(c.steps)
}

// RecoveryStep returns planned step i.
func (c *RecoveryStepCalculator) RecoveryStep(i int) footstep.Footstep {
	return c.steps[i]
}

// RecoveryStepTiming returns the timing of planned step i.
func (c *RecoveryStepCalculator) RecoveryStepTiming(i int) footstep.Timing {
	return c.timings[i]
}

// IsStateCapturable returns the result of the last planning call.
func (c *RecoveryStepCalculator) IsStateCapturable() bool {
	return c.isStateCapturable
}

// The accessors below expose per depth diagnostics of the last planning call. The returned
// polygons are owned by the calculator and must not be modified.

// NumberOfDepthsEvaluated returns how many depths produced regions.
func (c *RecoveryStepCalculator) NumberOfDepthsEvaluated() int {
	return c.captureRegionsAtTouchdown.Len()
}

func (c *RecoveryStepCalculator) ReachableRegion(i int) *spatialmath.ConvexPolygon {
	return c.reachableRegions.Get(i)
}

func (c *RecoveryStepCalculator) CaptureRegionAtTouchdown(i int) *spatialmath.ConvexPolygon {
	return c.captureRegionsAtTouchdown.Get(i)
}

// IntersectingRegion returns the intersection of the reachable and capture regions at depth i.
func (c *RecoveryStepCalculator) IntersectingRegion(i int) *spatialmath.ConvexPolygon {
	return c.reachableCaptureRegions.Get(i)
}

func (c *RecoveryStepCalculator) ConstrainedCaptureRegion(i int) *spatialmath.ConvexPolygon {
	return c.constrainedCaptureRegions.Get(i)
}

func (c *RecoveryStepCalculator) CapturePointAtTouchdown(i int) r2.Point {
	return c.capturePointsAtTouchdown[i]
}

func (c *RecoveryStepCalculator) RecoveryStepLocation(i int) r2.Point {
	return c.recoveryStepLocations[i]
}

func (c *RecoveryStepCalculator) NumberOfConstraintRegionsForStep(step int) int {
	return len(c.composer.ConstrainedReachableRegions(step))
}

func (c *RecoveryStepCalculator) ConstrainedReachableRegion(step, region int) *spatialmath.ConvexPolygon {
	return c.composer.ConstrainedReachableRegions(step)[region].Polygon
}

// HasConstraintRegions reports whether any planned step was constrained.
func (c *RecoveryStepCalculator) HasConstraintRegions() bool {
	return len(c.constraintRegions) > 0
}

// ConstraintRegion returns the region selected for the i-th constrained step, which is nil when
// no region overlapped the capture region.
func (c *RecoveryStepCalculator) ConstraintRegion(i int) *stepconstraint.Region {
	return c.constraintRegions[i]
}
