package main

import (
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pushrecovery/captureregion"
	"go.viam.com/pushrecovery/control"
	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/utils"
)

// stanceConfig places the stance foot. Yaw is in degrees.
type stanceConfig struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Yaw float64 `json:"yaw_deg"`
}

// scenario is a single planning problem read from JSON.
type scenario struct {
	Planner          *captureregion.Config `json:"planner"`
	SwingSide        footstep.Side         `json:"swing_side"`
	ICP              [2]float64            `json:"icp"`
	Omega0           float64               `json:"omega0"`
	TransferDuration float64               `json:"transfer_duration"`
	MinSwingTime     float64               `json:"min_swing_time"`
	MaxSwingTime     float64               `json:"max_swing_time"`
	Stance           stanceConfig          `json:"stance"`
}

func readScenario(path string) (*scenario, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read scenario")
	}
	s := &scenario{Planner: captureregion.DefaultConfig()}
	if err := utils.UnmarshalJSON5(data, s); err != nil {
		return nil, errors.Wrapf(err, "cannot parse scenario %q", path)
	}
	if err := s.Validate("scenario"); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate ensures all parts of the scenario are valid.
func (s *scenario) Validate(path string) error {
	var err error
	if s.Planner == nil {
		err = multierr.Append(err, errors.Errorf("%s.planner: is required", path))
	} else {
		err = multierr.Append(err, s.Planner.Validate(path+".planner"))
		if s.Planner.FootPolygon == nil {
			err = multierr.Append(err, errors.Errorf("%s.planner.foot_polygon: is required", path))
		}
	}
	if !(s.Omega0 > 0) {
		err = multierr.Append(err, errors.Errorf("%s.omega0: must be positive, got %v", path, s.Omega0))
	}
	if s.MinSwingTime > s.MaxSwingTime {
		err = multierr.Append(err, errors.Errorf("%s.min_swing_time: %v is larger than max_swing_time %v",
			path, s.MinSwingTime, s.MaxSwingTime))
	}
	return err
}

func (s *scenario) stancePose() spatialmath.Pose {
	return spatialmath.NewPose(
		r3.Vector{X: s.Stance.X, Y: s.Stance.Y, Z: s.Stance.Z},
		&spatialmath.EulerAngles{Yaw: utils.DegToRad(s.Stance.Yaw)},
	)
}

// state returns the robot state the scenario describes, with the foot polygon placed under the
// stance foot.
func (s *scenario) state() *control.RecoveryState {
	pose := s.stancePose()
	foot := s.Planner.Foot()
	foot.ApplyPose(pose)
	return &control.RecoveryState{
		SwingSide:            s.SwingSide,
		NextTransferDuration: s.TransferDuration,
		MinSwingTime:         s.MinSwingTime,
		MaxSwingTime:         s.MaxSwingTime,
		StancePose:           pose,
		FootPolygon:          foot,
		ICP:                  r2.Point{X: s.ICP[0], Y: s.ICP[1]},
		Omega0:               s.Omega0,
	}
}
