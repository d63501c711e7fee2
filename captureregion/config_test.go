package captureregion

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	test.That(t, DefaultConfig().Validate("planner"), test.ShouldBeNil)

	cfg := DefaultConfig()
	cfg.MaxStepLength = -0.1
	cfg.MinStepWidth = 0.5
	cfg.MaxRecoverySteps = -1
	cfg.FootPolygon = [][2]float64{{0, 0}, {1, 0}}
	err := cfg.Validate("planner")
	test.That(t, err, test.ShouldNotBeNil)
	errs := multierr.Errors(err)
	test.That(t, errs, test.ShouldHaveLength, 4)
	test.That(t, errs[0].Error(), test.ShouldContainSubstring, "planner.max_step_length")
	test.That(t, errs[1].Error(), test.ShouldContainSubstring, "planner.min_step_width")
	test.That(t, errs[2].Error(), test.ShouldContainSubstring, "planner.max_recovery_steps")
	test.That(t, errs[3].Error(), test.ShouldContainSubstring, "planner.foot_polygon")
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	test.That(t, cfg.RecoverySteps(), test.ShouldEqual, DefaultMaxRecoverySteps)
	test.That(t, cfg.Foot(), test.ShouldBeNil)

	foot := DefaultConfig().Foot()
	test.That(t, foot.NumVertices(), test.ShouldEqual, 4)
	test.That(t, foot.Area(), test.ShouldAlmostEqual, 0.02)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "planner.json")
	test.That(t, os.WriteFile(path, []byte(`{"max_step_length": 0.45, "max_recovery_steps": 2}`), 0o600), test.ShouldBeNil)
	cfg, err := ReadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MaxStepLength, test.ShouldEqual, 0.45)
	test.That(t, cfg.RecoverySteps(), test.ShouldEqual, 2)
	// unset fields keep their defaults
	test.That(t, cfg.PreferredStepWidth, test.ShouldEqual, DefaultConfig().PreferredStepWidth)

	commented := filepath.Join(dir, "commented.json5")
	test.That(t, os.WriteFile(commented, []byte(`{
		// short legs
		max_step_length: 0.35,
		max_recovery_steps: 1,
	}`), 0o600), test.ShouldBeNil)
	cfg, err = ReadConfig(commented)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MaxStepLength, test.ShouldEqual, 0.35)
	test.That(t, cfg.RecoverySteps(), test.ShouldEqual, 1)

	_, err = ReadConfig(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read planner config")

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"max_step_length": "far"}`), 0o600), test.ShouldBeNil)
	_, err = ReadConfig(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse planner config")

	invalid := filepath.Join(dir, "invalid.json")
	test.That(t, os.WriteFile(invalid, []byte(`{"min_step_width": 1}`), 0o600), test.ShouldBeNil)
	_, err = ReadConfig(invalid)
	test.That(t, err, test.ShouldNotBeNil)
}
