// Package captureregion plans multi-step push recovery for a biped.
//
// At each planning depth the region the swing foot can reach is intersected with the region of
// capture points achievable at touchdown and with the step constraint regions of the terrain. The
// first depth that has a non-empty intersection ends the plan with a capturable state. Otherwise
// a best effort step is taken toward the capture region and planning continues from it, up to a
// fixed number of steps.
package captureregion

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pushrecovery/capturepoint"
	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/logging"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/stepconstraint"
	"go.viam.com/pushrecovery/utils"
)

// stanceShrinkFactor scales the default foot about its centroid to form the support polygon of
// steps that have not been taken yet.
const stanceShrinkFactor = 0.5

// RecoveryStepCalculator computes recovery steps. Its working polygons are allocated once and
// reused, so results returned by accessors are only valid until the next planning call. It is
// not safe for concurrent use; use Snapshot to hand results to another goroutine.
type RecoveryStepCalculator struct {
	logger             logging.Logger
	preferredStepWidth float64
	maxDepth           int
	defaultFootPolygon *spatialmath.ConvexPolygon

	reachableCalculator *ReachableFootholdsCalculator
	captureCalculator   *AchievableCaptureRegionCalculator
	composer            *ConstrainedRegionComposer
	tools               *spatialmath.ConvexPolygonTools

	reachableRegion      *spatialmath.ConvexPolygon
	stancePolygon        *spatialmath.ConvexPolygon
	initialStancePolygon *spatialmath.ConvexPolygon
	initialICP           r2.Point
	candidateSwingTimes  []float64

	reachableRegions          *recyclingList[spatialmath.ConvexPolygon]
	captureRegionsAtTouchdown *recyclingList[spatialmath.ConvexPolygon]
	reachableCaptureRegions   *recyclingList[spatialmath.ConvexPolygon]
	constrainedCaptureRegions *recyclingList[spatialmath.ConvexPolygon]
	capturePointsAtTouchdown  []r2.Point
	recoveryStepLocations     []r2.Point
	swingDurations            []float64
	constraintRegions         []*stepconstraint.Region

	steps             []footstep.Footstep
	timings           []footstep.Timing
	isStateCapturable bool
}

// NewRecoveryStepCalculator returns a calculator using the limits of cfg. A nil cfg uses
// DefaultConfig, and a nil defaultFootPolygon uses the foot polygon of cfg.
func NewRecoveryStepCalculator(
	cfg *Config,
	defaultFootPolygon *spatialmath.ConvexPolygon,
	logger logging.Logger,
) (*RecoveryStepCalculator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewRecoveryStepCalculatorWithProviders(
		ConstantProvider(cfg.MaxStepLength),
		ConstantProvider(cfg.MaxBackwardStepLength),
		ConstantProvider(cfg.MinStepWidth),
		ConstantProvider(cfg.MaxStepWidth),
		cfg,
		defaultFootPolygon,
		logger,
	)
}

// NewRecoveryStepCalculatorWithProviders returns a calculator whose kinematic limits are read
// from the given providers at every planning call. Only the preferred step width, the depth and
// the foot polygon are taken from cfg.
func NewRecoveryStepCalculatorWithProviders(
	maxStepLength, maxBackwardStepLength, minStepWidth, maxStepWidth DoubleProvider,
	cfg *Config,
	defaultFootPolygon *spatialmath.ConvexPolygon,
	logger logging.Logger,
) (*RecoveryStepCalculator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate("planner"); err != nil {
		return nil, err
	}
	if defaultFootPolygon == nil {
		defaultFootPolygon = cfg.Foot()
	}
	if defaultFootPolygon == nil || defaultFootPolygon.NumVertices() < 3 {
		return nil, errors.New("a default foot polygon with at least 3 vertices is required")
	}

	newPolygons := func() *recyclingList[spatialmath.ConvexPolygon] {
		return newRecyclingList(func() *spatialmath.ConvexPolygon { return spatialmath.NewConvexPolygon() }, (*spatialmath.ConvexPolygon).Clear)
	}
	return &RecoveryStepCalculator{
		logger:               logger,
		preferredStepWidth:   cfg.PreferredStepWidth,
		maxDepth:             cfg.RecoverySteps(),
		defaultFootPolygon:   defaultFootPolygon.Clone(),
		reachableCalculator:  NewReachableFootholdsCalculator(maxStepLength, maxBackwardStepLength, minStepWidth, maxStepWidth),
		captureCalculator:    NewAchievableCaptureRegionCalculator(),
		composer:             NewConstrainedRegionComposer(nil),
		tools:                spatialmath.NewConvexPolygonTools(),
		reachableRegion:      spatialmath.NewConvexPolygon(),
		stancePolygon:        spatialmath.NewConvexPolygon(),
		initialStancePolygon: spatialmath.NewConvexPolygon(),

		reachableRegions:          newPolygons(),
		captureRegionsAtTouchdown: newPolygons(),
		reachableCaptureRegions:   newPolygons(),
		constrainedCaptureRegions: newPolygons(),
	}, nil
}

// SetMaxStepsToGenerateForRecovery bounds the number of planned steps.
func (c *RecoveryStepCalculator) SetMaxStepsToGenerateForRecovery(depth int) error {
	if depth < 1 {
		return errors.Errorf("at least one recovery step must be allowed, got %d", depth)
	}
	c.maxDepth = depth
	return nil
}

// MaxStepsToGenerateForRecovery returns the bound on the number of planned steps.
func (c *RecoveryStepCalculator) MaxStepsToGenerateForRecovery() int {
	return c.maxDepth
}

// SetConstraintRegionProvider sets where step constraint regions come from. A nil provider
// leaves every step unconstrained.
func (c *RecoveryStepCalculator) SetConstraintRegionProvider(provider stepconstraint.Provider) {
	c.composer.SetProvider(provider)
}

// ComputeRecoverySteps plans recovery steps for a swing lasting between minSwingTime and
// maxSwingTime, starting with swingSide stepping away from stancePose, whose support polygon in
// world frame is footPolygon. It returns whether the plan ends in a capturable state. Errors are
// only returned for invalid arguments.
func (c *RecoveryStepCalculator) ComputeRecoverySteps(
	swingSide footstep.Side,
	nextTransferDuration, minSwingTime, maxSwingTime float64,
	stancePose spatialmath.Pose,
	currentICP r2.Point,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) (bool, error) {
	if minSwingTime > maxSwingTime {
		c.clearResults()
		return false, errors.Errorf("min swing time %v is larger than max swing time %v", minSwingTime, maxSwingTime)
	}
	c.candidateSwingTimes = append(c.candidateSwingTimes[:0], minSwingTime, maxSwingTime)
	return c.computeRecoverySteps(swingSide, nextTransferDuration, minSwingTime, c.candidateSwingTimes,
		stancePose, currentICP, omega0, footPolygon)
}

// ComputePreferredRecoverySteps plans recovery steps for a swing lasting exactly swingTimeRemaining.
func (c *RecoveryStepCalculator) ComputePreferredRecoverySteps(
	swingSide footstep.Side,
	nextTransferDuration, swingTimeRemaining float64,
	stancePose spatialmath.Pose,
	currentICP r2.Point,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) (bool, error) {
	c.candidateSwingTimes = append(c.candidateSwingTimes[:0], swingTimeRemaining)
	return c.computeRecoverySteps(swingSide, nextTransferDuration, swingTimeRemaining, c.candidateSwingTimes,
		stancePose, currentICP, omega0, footPolygon)
}

// ComputeRecoveryStepsWithCandidates plans recovery steps over arbitrary candidate swing times.
// swingTimeToSet is the shortest swing duration assigned to a step.
func (c *RecoveryStepCalculator) ComputeRecoveryStepsWithCandidates(
	swingSide footstep.Side,
	nextTransferDuration, swingTimeToSet float64,
	candidateSwingTimes []float64,
	stancePose spatialmath.Pose,
	currentICP r2.Point,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) (bool, error) {
	c.candidateSwingTimes = append(c.candidateSwingTimes[:0], candidateSwingTimes...)
	return c.computeRecoverySteps(swingSide, nextTransferDuration, swingTimeToSet, c.candidateSwingTimes,
		stancePose, currentICP, omega0, footPolygon)
}

func validateInputs(
	nextTransferDuration, swingTimeToSet float64,
	candidateSwingTimes []float64,
	stancePose spatialmath.Pose,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) error {
	var err error
	if !(omega0 > 0) || math.IsInf(omega0, 0) {
		err = multierr.Append(err, errors.Errorf("omega0 must be a positive number, got %v", omega0))
	}
	if !(nextTransferDuration >= 0) || math.IsInf(nextTransferDuration, 0) {
		err = multierr.Append(err, errors.Errorf("transfer duration must be a non-negative number, got %v", nextTransferDuration))
	}
	if !(swingTimeToSet >= 0) || math.IsInf(swingTimeToSet, 0) {
		err = multierr.Append(err, errors.Errorf("swing time must be a non-negative number, got %v", swingTimeToSet))
	}
	if len(candidateSwingTimes) == 0 {
		err = multierr.Append(err, errors.New("at least one candidate swing time is required"))
	}
	for _, swingTime := range candidateSwingTimes {
		if !(swingTime >= 0) || math.IsInf(swingTime, 0) {
			err = multierr.Append(err, errors.Errorf("candidate swing time must be a non-negative number, got %v", swingTime))
		}
	}
	if stancePose == nil {
		err = multierr.Append(err, errors.New("stance pose is required"))
	}
	if footPolygon == nil {
		err = multierr.Append(err, errors.New("foot polygon is required"))
	}
	return err
}

func (c *RecoveryStepCalculator) clearResults() {
	c.isStateCapturable = false
	c.reachableRegions.Clear()
	c.captureRegionsAtTouchdown.Clear()
	c.reachableCaptureRegions.Clear()
	c.constrainedCaptureRegions.Clear()
	c.capturePointsAtTouchdown = c.capturePointsAtTouchdown[:0]
	c.recoveryStepLocations = c.recoveryStepLocations[:0]
	c.swingDurations = c.swingDurations[:0]
	c.constraintRegions = c.constraintRegions[:0]
	c.steps = c.steps[:0]
	c.timings = c.timings[:0]
	c.composer.Reset()
	c.initialStancePolygon.Clear()
	c.initialICP = r2.Point{}
}

func (c *RecoveryStepCalculator) computeRecoverySteps(
	swingSide footstep.Side,
	nextTransferDuration, swingTimeToSet float64,
	candidateSwingTimes []float64,
	stancePose spatialmath.Pose,
	currentICP r2.Point,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) (bool, error) {
	c.clearResults()
	if err := validateInputs(nextTransferDuration, swingTimeToSet, candidateSwingTimes, stancePose, omega0, footPolygon); err != nil {
		return false, err
	}
	c.initialStancePolygon.Set(footPolygon)
	c.initialICP = currentICP
	if !utils.IsFinite(currentICP.X, currentICP.Y) {
		c.logger.Warnw("cannot plan recovery from a non-finite capture point", "icp", currentICP)
		return false, nil
	}

	c.calculateRecoveryStepLocations(swingSide, nextTransferDuration, swingTimeToSet, candidateSwingTimes,
		stancePose, currentICP, omega0, footPolygon)

	if !c.resultsAreFinite() {
		c.logger.Warnw("dropping recovery steps with non-finite values", "steps", len(c.recoveryStepLocations))
		c.recoveryStepLocations = c.recoveryStepLocations[:0]
		c.capturePointsAtTouchdown = c.capturePointsAtTouchdown[:0]
		c.swingDurations = c.swingDurations[:0]
		c.isStateCapturable = false
		return false, nil
	}

	stanceHeight := stancePose.Point().Z
	stanceOrientation := stancePose.Orientation()
	side := swingSide
	for i, location := range c.recoveryStepLocations {
		pose := spatialmath.NewPose(r3.Vector{X: location.X, Y: location.Y, Z: stanceHeight}, stanceOrientation)
		c.steps = append(c.steps, footstep.NewFootstep(side, pose))
		c.timings = append(c.timings, footstep.Timing{SwingDuration: c.swingDurations[i], TransferDuration: nextTransferDuration})
		side = side.Opposite()
	}

	c.logger.Debugw("computed recovery steps",
		"steps", len(c.steps), "depths", c.NumberOfDepthsEvaluated(), "capturable", c.isStateCapturable)
	return c.isStateCapturable, nil
}

func (c *RecoveryStepCalculator) calculateRecoveryStepLocations(
	swingSide footstep.Side,
	nextTransferDuration, minSwingDuration float64,
	candidateSwingTimes []float64,
	initialStancePose spatialmath.Pose,
	currentICP r2.Point,
	omega0 float64,
	footPolygon *spatialmath.ConvexPolygon,
) {
	icpAtStart := currentICP
	stancePose := initialStancePose
	c.stancePolygon.Set(footPolygon)

	for depth := 0; depth < c.maxDepth; depth++ {
		c.reachableCalculator.CalculateReachableRegion(swingSide, stancePose, c.reachableRegion)

		if c.captureCalculator.CalculateCaptureRegion(nextTransferDuration, candidateSwingTimes, icpAtStart, omega0, c.stancePolygon) {
			c.isStateCapturable = true
			break
		}

		captureRegion := c.captureRegionsAtTouchdown.Add()
		captureRegion.Set(c.captureCalculator.CaptureRegion())
		c.reachableRegions.Add().Set(c.reachableRegion)
		stancePosition := spatialmath.PlanarPosition(stancePose)

		reachableCaptureRegion := c.reachableCaptureRegions.Add()
		c.tools.Intersection(captureRegion, c.reachableRegion, reachableCaptureRegion)

		c.composer.ComputeConstrainedReachableRegions(depth, c.reachableRegion)
		constrainedCaptureRegion := c.constrainedCaptureRegions.Add()
		selected := c.composer.ComputeConstrainedCaptureRegion(depth, reachableCaptureRegion, constrainedCaptureRegion)
		if c.composer.HasConstraints(depth) {
			c.constraintRegions = append(c.constraintRegions, selected)
		}

		if !constrainedCaptureRegion.IsEmpty() {
			capturePoint := c.recoveryStepAtNominalWidth(swingSide, stancePose, stancePosition, constrainedCaptureRegion)
			swingDuration := c.computeSwingDuration(nextTransferDuration, minSwingDuration, icpAtStart, capturePoint, omega0, c.stancePolygon)
			c.capturePointsAtTouchdown = append(c.capturePointsAtTouchdown, capturePoint)
			c.recoveryStepLocations = append(c.recoveryStepLocations, capturePoint)
			c.swingDurations = append(c.swingDurations, swingDuration)
			c.isStateCapturable = true
			break
		}

		var capturePoint, stepLocation r2.Point
		var definitelyNotCapturable bool
		if !c.composer.HasConstraints(depth) {
			capturePoint, stepLocation, _, definitelyNotCapturable = c.bestEffortStep(captureRegion, c.reachableRegion, icpAtStart, stancePosition)
		} else {
			capturePoint, stepLocation, definitelyNotCapturable = c.bestEffortStepWithConstraints(depth, captureRegion, icpAtStart, stancePosition)
		}
		swingDuration := c.computeSwingDuration(nextTransferDuration, minSwingDuration, icpAtStart, capturePoint, omega0, c.stancePolygon)
		c.capturePointsAtTouchdown = append(c.capturePointsAtTouchdown, capturePoint)
		c.recoveryStepLocations = append(c.recoveryStepLocations, stepLocation)
		c.swingDurations = append(c.swingDurations, swingDuration)

		if definitelyNotCapturable {
			break
		}

		swingSide = swingSide.Opposite()
		stancePose = spatialmath.NewPose(
			r3.Vector{X: stepLocation.X, Y: stepLocation.Y, Z: initialStancePose.Point().Z},
			initialStancePose.Orientation(),
		)
		icpAtStart = capturePoint

		c.stancePolygon.Set(c.defaultFootPolygon)
		c.stancePolygon.Scale(c.stancePolygon.Centroid(), stanceShrinkFactor)
		c.stancePolygon.ApplyPose(stancePose)
	}
}

// recoveryStepAtNominalWidth picks the point of region on the line from the stance foot through
// the region's centroid that lies at the preferred step width. When that point is outside the
// region, the point where the segment from the stance foot to the centroid enters the region is
// used instead.
func (c *RecoveryStepCalculator) recoveryStepAtNominalWidth(
	swingSide footstep.Side,
	stancePose spatialmath.Pose,
	stancePosition r2.Point,
	region *spatialmath.ConvexPolygon,
) r2.Point {
	centroid := region.Centroid()
	lateral := swingSide.NegateIfRight(c.preferredStepWidth)
	lineStart := spatialmath.TransformPoint2D(stancePose, r2.Point{X: 0, Y: lateral})
	lineEnd := spatialmath.TransformPoint2D(stancePose, r2.Point{X: 1, Y: lateral})

	if target, ok := spatialmath.IntersectionBetweenTwoLines(stancePosition, centroid, lineStart, lineEnd); ok && region.IsPointInside(target) {
		return target
	}
	// a segment crossing the whole region also yields its exit point, which is not wanted
	entry, _, count := spatialmath.IntersectionBetweenSegmentAndConvexPolygon(stancePosition, centroid, region)
	if count > 0 {
		return entry
	}
	return centroid
}

// bestEffortStep returns the closest pair of points between reachable and captureRegion. An empty
// capture region means no step can help; the ICP is then projected onto the reachable region.
func (c *RecoveryStepCalculator) bestEffortStep(
	captureRegion, reachable *spatialmath.ConvexPolygon,
	icp, stancePosition r2.Point,
) (capturePoint, stepLocation r2.Point, distance float64, definitelyNotCapturable bool) {
	switch captureRegion.NumVertices() {
	case 0:
		capturePoint = icp
		stepLocation = projectOrFallback(reachable, icp, stancePosition)
		definitelyNotCapturable = true
	case 1:
		capturePoint = captureRegion.Vertex(0)
		stepLocation = projectOrFallback(reachable, capturePoint, stancePosition)
	default:
		var ok bool
		stepLocation, capturePoint, _, ok = c.tools.MinimumDistancePoints(reachable, captureRegion)
		if !ok {
			capturePoint = captureRegion.Centroid()
			stepLocation = stancePosition
		}
	}
	return capturePoint, stepLocation, capturePoint.Sub(stepLocation).Norm(), definitelyNotCapturable
}

// bestEffortStepWithConstraints evaluates bestEffortStep on every constrained reachable region of
// depth and keeps the closest pair.
func (c *RecoveryStepCalculator) bestEffortStepWithConstraints(
	depth int,
	captureRegion *spatialmath.ConvexPolygon,
	icp, stancePosition r2.Point,
) (capturePoint, stepLocation r2.Point, definitelyNotCapturable bool) {
	definitelyNotCapturable = true
	closest := math.Inf(1)
	found := false
	for _, region := range c.composer.ConstrainedReachableRegions(depth) {
		if region.Polygon.IsEmpty() {
			continue
		}
		cp, step, distance, notCapturable := c.bestEffortStep(captureRegion, region.Polygon, icp, stancePosition)
		if !notCapturable {
			definitelyNotCapturable = false
		}
		if !found || distance < closest {
			found = true
			closest = distance
			capturePoint, stepLocation = cp, step
		}
	}
	if !found {
		// no constraint region is reachable
		capturePoint = icp
		stepLocation = projectOrFallback(c.reachableRegion, icp, stancePosition)
	}
	return capturePoint, stepLocation, definitelyNotCapturable
}

func projectOrFallback(polygon *spatialmath.ConvexPolygon, pt, fallback r2.Point) r2.Point {
	if projected, ok := polygon.OrthogonalProjection(pt); ok {
		return projected
	}
	return fallback
}

// computeSwingDuration returns how long the swing must last for the ICP to travel from icpAtStart
// to icpAtEnd before the next transfer, never less than minSwingDuration.
func (c *RecoveryStepCalculator) computeSwingDuration(
	nextTransferDuration, minSwingDuration float64,
	icpAtStart, icpAtEnd r2.Point,
	omega0 float64,
	stancePolygon *spatialmath.ConvexPolygon,
) float64 {
	start, end, ok := stancePolygon.LineOfSightIndices(icpAtStart)
	if !ok {
		return minSwingDuration
	}

	direction := icpAtEnd.Sub(icpAtStart)
	nominalCMP, ok := spatialmath.IntersectionBetweenLineAndSegment(icpAtStart, direction, stancePolygon.Vertex(start), stancePolygon.Vertex(end))
	if !ok {
		return minSwingDuration
	}
	icpBeforeTransfer := capturepoint.CapturePointBeforeTransfer(icpAtEnd, nominalCMP, omega0, nextTransferDuration)
	idealSwingDuration := capturepoint.TimeToReachCapturePoint(omega0, icpBeforeTransfer, icpAtStart, nominalCMP)
	if !utils.IsFinite(idealSwingDuration) {
		return minSwingDuration
	}
	return math.Max(idealSwingDuration, minSwingDuration)
}

func (c *RecoveryStepCalculator) resultsAreFinite() bool {
	for i := range c.recoveryStepLocations {
		location, capturePoint := c.recoveryStepLocations[i], c.capturePointsAtTouchdown[i]
		if !utils.IsFinite(location.X, location.Y, capturePoint.X, capturePoint.Y, c.swingDurations[i]) {
			return false
		}
	}
	return true
}
