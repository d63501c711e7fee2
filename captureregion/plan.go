package captureregion

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/stepconstraint"
	"go.viam.com/pushrecovery/utils"
)

// RecoveryStep is a planned step and its timing.
type RecoveryStep struct {
	Footstep footstep.Footstep
	Timing   footstep.Timing
}

// DepthDiagnostics holds the regions computed while planning one step.
type DepthDiagnostics struct {
	ReachableRegion             *spatialmath.ConvexPolygon
	CaptureRegion               *spatialmath.ConvexPolygon
	IntersectingRegion          *spatialmath.ConvexPolygon
	ConstrainedCaptureRegion    *spatialmath.ConvexPolygon
	ConstrainedReachableRegions []*spatialmath.ConvexPolygon
	// ConstraintRegion is the region the step was planned on, nil when unconstrained.
	ConstraintRegion *stepconstraint.Region
	CapturePoint     r2.Point
	StepLocation     r2.Point
}

// Plan is an immutable copy of the result of a planning call. Unlike the calculator, it is safe
// to share between goroutines.
type Plan struct {
	Capturable bool
	Steps      []RecoveryStep
	Depths     []DepthDiagnostics
	// StancePolygon is the support polygon the plan started from.
	StancePolygon *spatialmath.ConvexPolygon
	InitialICP    r2.Point
}

// String prints a table of the planned steps.
func (p *Plan) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Side", "X", "Y", "Z", "Yaw", "Swing (s)", "Transfer (s)"})
	for i, step := range p.Steps {
		pose := step.Footstep.Pose
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i),
			step.Footstep.Side.String(),
			fmt.Sprintf("%.3f", pose.Point().X),
			fmt.Sprintf("%.3f", pose.Point().Y),
			fmt.Sprintf("%.3f", pose.Point().Z),
			fmt.Sprintf("%.1f", utils.RadToDeg(spatialmath.Yaw(pose.Orientation()))),
			fmt.Sprintf("%.3f", step.Timing.SwingDuration),
			fmt.Sprintf("%.3f", step.Timing.TransferDuration),
		})
	}
	t.SetCaption("capturable: %t", p.Capturable)
	return t.Render()
}

// Snapshot copies the result of the last planning call.
func (c *RecoveryStepCalculator) Snapshot() *Plan {
	plan := &Plan{
		Capturable:    c.isStateCapturable,
		Steps:         make([]RecoveryStep, 0, len(c.steps)),
		Depths:        make([]DepthDiagnostics, 0, c.NumberOfDepthsEvaluated()),
		StancePolygon: c.initialStancePolygon.Clone(),
		InitialICP:    c.initialICP,
	}
	for i := range c.steps {
		plan.Steps = append(plan.Steps, RecoveryStep{Footstep: c.steps[i], Timing: c.timings[i]})
	}
	for i := 0; i < c.NumberOfDepthsEvaluated(); i++ {
		diagnostics := DepthDiagnostics{
			ReachableRegion:          c.ReachableRegion(i).Clone(),
			CaptureRegion:            c.CaptureRegionAtTouchdown(i).Clone(),
			IntersectingRegion:       c.IntersectingRegion(i).Clone(),
			ConstrainedCaptureRegion: c.ConstrainedCaptureRegion(i).Clone(),
			ConstraintRegion:         c.composer.SelectedRegion(i),
		}
		for _, region := range c.composer.ConstrainedReachableRegions(i) {
			diagnostics.ConstrainedReachableRegions = append(diagnostics.ConstrainedReachableRegions, region.Polygon.Clone())
		}
		if i < len(c.capturePointsAtTouchdown) {
			diagnostics.CapturePoint = c.capturePointsAtTouchdown[i]
			diagnostics.StepLocation = c.recoveryStepLocations[i]
		}
		plan.Depths = append(plan.Depths, diagnostics)
	}
	return plan
}
