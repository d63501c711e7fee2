package captureregion

import (
	"math"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/utils"
)

// DefaultMaxRecoverySteps is the planning depth used when a config does not set one.
const DefaultMaxRecoverySteps = 3

// Config holds the kinematic limits and preferences of the recovery planner. Lengths are in meters.
type Config struct {
	// PreferredStepWidth is the lateral distance from the stance foot recovery steps aim for.
	PreferredStepWidth    float64 `json:"preferred_step_width"`
	MaxStepLength         float64 `json:"max_step_length"`
	MaxBackwardStepLength float64 `json:"max_backward_step_length"`
	// MinStepWidth may be negative to allow crossing over.
	MinStepWidth     float64      `json:"min_step_width"`
	MaxStepWidth     float64      `json:"max_step_width"`
	MaxRecoverySteps int          `json:"max_recovery_steps,omitempty"`
	FootPolygon      [][2]float64 `json:"foot_polygon,omitempty"`
}

// DefaultConfig returns limits suited to a mid-sized humanoid.
func DefaultConfig() *Config {
	return &Config{
		PreferredStepWidth:    0.2,
		MaxStepLength:         0.6,
		MaxBackwardStepLength: 0.3,
		MinStepWidth:          -0.05,
		MaxStepWidth:          0.4,
		MaxRecoverySteps:      DefaultMaxRecoverySteps,
		FootPolygon:           [][2]float64{{-0.1, -0.05}, {0.1, -0.05}, {0.1, 0.05}, {-0.1, 0.05}},
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var err error
	nonNegative := map[string]float64{
		"preferred_step_width":     cfg.PreferredStepWidth,
		"max_step_length":          cfg.MaxStepLength,
		"max_backward_step_length": cfg.MaxBackwardStepLength,
		"max_step_width":           cfg.MaxStepWidth,
	}
	names := lo.Keys(nonNegative)
	slices.Sort(names)
	for _, name := range names {
		if value := nonNegative[name]; !(value >= 0) || math.IsInf(value, 0) {
			err = multierr.Append(err, errors.Errorf("%s.%s: must be a non-negative number, got %v", path, name, value))
		}
	}
	if math.IsNaN(cfg.MinStepWidth) || math.IsInf(cfg.MinStepWidth, 0) {
		err = multierr.Append(err, errors.Errorf("%s.min_step_width: must be a number, got %v", path, cfg.MinStepWidth))
	} else if cfg.MinStepWidth > cfg.MaxStepWidth {
		err = multierr.Append(err, errors.Errorf("%s.min_step_width: %v is larger than max_step_width %v",
			path, cfg.MinStepWidth, cfg.MaxStepWidth))
	}
	if cfg.MaxRecoverySteps < 0 {
		err = multierr.Append(err, errors.Errorf("%s.max_recovery_steps: must be positive, got %d", path, cfg.MaxRecoverySteps))
	}
	if cfg.FootPolygon != nil {
		if foot := spatialmath.NewConvexPolygonFromXY(cfg.FootPolygon); foot.NumVertices() < 3 {
			err = multierr.Append(err, errors.Errorf("%s.foot_polygon: need at least 3 distinct points", path))
		}
	}
	return err
}

// RecoverySteps returns the configured planning depth.
func (cfg *Config) RecoverySteps() int {
	if cfg.MaxRecoverySteps == 0 {
		return DefaultMaxRecoverySteps
	}
	return cfg.MaxRecoverySteps
}

// Foot returns the configured foot polygon, or nil when none is set.
func (cfg *Config) Foot() *spatialmath.ConvexPolygon {
	if cfg.FootPolygon == nil {
		return nil
	}
	return spatialmath.NewConvexPolygonFromXY(cfg.FootPolygon)
}

// ReadConfig reads and validates a planner config from a JSON file.
func ReadConfig(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read planner config")
	}
	cfg := DefaultConfig()
	if err := utils.UnmarshalJSON5(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse planner config %q", path)
	}
	if err := cfg.Validate("planner"); err != nil {
		return nil, err
	}
	return cfg, nil
}
