package footstep

import (
	"fmt"

	"github.com/golang/geo/r2"

	"go.viam.com/pushrecovery/spatialmath"
)

// Footstep is a planned foot placement in world frame.
type Footstep struct {
	Side Side
	Pose spatialmath.Pose
}

// NewFootstep returns a footstep for side at pose.
func NewFootstep(side Side, pose spatialmath.Pose) Footstep {
	return Footstep{Side: side, Pose: pose}
}

// Position returns the XY position of the step.
func (f Footstep) Position() r2.Point {
	if f.Pose == nil {
		return r2.Point{}
	}
	return spatialmath.PlanarPosition(f.Pose)
}

func (f Footstep) String() string {
	return fmt.Sprintf("%s step at %v", f.Side, f.Pose)
}

// Timing holds the durations of the swing that lands a step and of the double support that
// follows it, in seconds.
type Timing struct {
	SwingDuration    float64 `json:"swing_duration"`
	TransferDuration float64 `json:"transfer_duration"`
}

// StepDuration is the total time spent on the step.
func (t Timing) StepDuration() float64 {
	return t.SwingDuration + t.TransferDuration
}
