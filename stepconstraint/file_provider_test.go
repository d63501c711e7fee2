package stepconstraint

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/pushrecovery/logging"
)

const (
	firstRegions = `{"depths": {"0": [{"id": "first", "x": 0.4, "hull": [[-0.1, -0.1], [0.1, -0.1], [0, 0.1]]}]}}`
	nextRegions  = `{"depths": {"0": [{"id": "next", "x": 0.5, "hull": [[-0.1, -0.1], [0.1, -0.1], [0, 0.1]]}]},
		"default": [{"id": "floor", "hull": [[-5, -5], [5, -5], [5, 5], [-5, 5]]}]}`
)

func writeRegions(t *testing.T, path, contents string) {
	t.Helper()
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
}

func TestFileProvider(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "regions.json")
	writeRegions(t, path, firstRegions)

	fp, err := NewFileProvider(path, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, fp.Close(), test.ShouldBeNil)
	}()

	provider := fp.Provider()
	test.That(t, provider(0), test.ShouldHaveLength, 1)
	test.That(t, provider(0)[0].ID, test.ShouldEqual, "first")
	test.That(t, provider(1), test.ShouldBeNil)
	test.That(t, fp.Reloads(), test.ShouldEqual, 1)

	writeRegions(t, path, nextRegions)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		regions := provider(0)
		test.That(tb, regions, test.ShouldHaveLength, 1)
		test.That(tb, regions[0].ID, test.ShouldEqual, "next")
		test.That(tb, provider(3), test.ShouldHaveLength, 1)
	})

	// a broken file keeps the last good regions
	test.That(t, os.WriteFile(path, []byte(`{"depths": `), 0o600), test.ShouldBeNil)
	test.That(t, fp.Reload(), test.ShouldNotBeNil)
	test.That(t, provider(0)[0].ID, test.ShouldEqual, "next")
}

func TestFileProviderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	_, err := NewFileProvider(filepath.Join(dir, "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read step constraint file")

	path := filepath.Join(dir, "invalid.json")
	writeRegions(t, path, `{"depths": {"zero": []}}`)
	_, err = NewFileProvider(path, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step_constraints.depths.zero")
}
