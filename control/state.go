package control

import (
	"context"

	"github.com/golang/geo/r2"

	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
)

// RecoveryState is the estimated state of the robot at the start of a swing, as needed to plan
// recovery steps.
type RecoveryState struct {
	SwingSide            footstep.Side
	NextTransferDuration float64
	MinSwingTime         float64
	MaxSwingTime         float64
	StancePose           spatialmath.Pose
	// FootPolygon is the support polygon of the stance foot in world frame.
	FootPolygon *spatialmath.ConvexPolygon
	ICP         r2.Point
	Omega0      float64
}

// A StateSource supplies the state to plan from. Returning a nil state skips the tick.
type StateSource interface {
	CurrentState(ctx context.Context) (*RecoveryState, error)
}

// StateSourceFunc adapts a function to a StateSource.
type StateSourceFunc func(ctx context.Context) (*RecoveryState, error)

// CurrentState calls f.
func (f StateSourceFunc) CurrentState(ctx context.Context) (*RecoveryState, error) {
	return f(ctx)
}
