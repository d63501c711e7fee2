// Package control runs the recovery planner periodically against the robot's current state and
// publishes the latest plan for the walking controller.
package control

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MaxFrequency is the highest supported planning rate in Hz.
const MaxFrequency = 1000.0

// LoopConfig configures a RecoveryLoop.
type LoopConfig struct {
	Frequency float64 `json:"frequency_hz"`
	// ICPFilterSize is the length of the moving average applied to measured capture points. Zero
	// or one disables filtering.
	ICPFilterSize int `json:"icp_filter_size,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *LoopConfig) Validate(path string) error {
	var err error
	if !(cfg.Frequency > 0) || cfg.Frequency > MaxFrequency {
		err = multierr.Append(err, errors.Errorf("%s.frequency_hz: loop frequency shouldn't be 0 or above %vHz, got %v",
			path, MaxFrequency, cfg.Frequency))
	}
	if cfg.ICPFilterSize < 0 {
		err = multierr.Append(err, errors.Errorf("%s.icp_filter_size: must not be negative, got %d", path, cfg.ICPFilterSize))
	}
	return err
}

// Period returns the time between two ticks.
func (cfg LoopConfig) Period() time.Duration {
	return time.Duration(float64(time.Second) / cfg.Frequency)
}
