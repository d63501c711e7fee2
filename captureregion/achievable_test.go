package captureregion

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/pushrecovery/spatialmath"
)

func TestCaptureRegion(t *testing.T) {
	calc := NewAchievableCaptureRegionCalculator()
	stance := spatialmath.NewRectangle(r2.Point{}, 0.2, 0.1)
	icp := r2.Point{X: 0.5, Y: 0}

	captured := calc.CalculateCaptureRegion(0.01, []float64{0.01, 0.03}, icp, 3.4, stance)
	test.That(t, captured, test.ShouldBeFalse)
	region := calc.CaptureRegion()
	test.That(t, region.NumVertices(), test.ShouldBeGreaterThanOrEqualTo, 4)

	minX, maxX, maxY := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range region.Vertices() {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, math.Abs(v.Y))
	}
	// shortest swing with the CMP on the front edge, longest swing with the CMP on the back edge
	test.That(t, minX, test.ShouldAlmostEqual, 0.1+0.4*math.Exp(3.4*0.02))
	test.That(t, maxX, test.ShouldAlmostEqual, -0.1+0.6*math.Exp(3.4*0.04))
	test.That(t, maxY, test.ShouldAlmostEqual, 0.05*(math.Exp(3.4*0.04)-1))
	test.That(t, region.IsPointInside(icp), test.ShouldBeFalse)
}

func TestCaptureRegionAlreadyCaptured(t *testing.T) {
	calc := NewAchievableCaptureRegionCalculator()
	stance := spatialmath.NewRectangle(r2.Point{}, 0.2, 0.1)

	test.That(t, calc.CalculateCaptureRegion(0.01, []float64{0.01, 0.03}, r2.Point{X: 0.5, Y: 0}, 3.4, stance), test.ShouldBeFalse)
	test.That(t, calc.CaptureRegion().IsEmpty(), test.ShouldBeFalse)

	test.That(t, calc.CalculateCaptureRegion(0.01, []float64{0.01, 0.03}, r2.Point{X: 0.05, Y: 0.01}, 3.4, stance), test.ShouldBeTrue)
	test.That(t, calc.CaptureRegion().IsEmpty(), test.ShouldBeTrue)
}

func TestCaptureRegionInvalidInputs(t *testing.T) {
	stance := spatialmath.NewRectangle(r2.Point{}, 0.2, 0.1)
	for _, tc := range []struct {
		name       string
		icp        r2.Point
		omega0     float64
		swingTimes []float64
		stance     *spatialmath.ConvexPolygon
	}{
		{"zero omega", r2.Point{X: 0.5, Y: 0}, 0, []float64{0.1}, stance},
		{"negative omega", r2.Point{X: 0.5, Y: 0}, -3, []float64{0.1}, stance},
		{"nan icp", r2.Point{X: math.NaN(), Y: 0}, 3.4, []float64{0.1}, stance},
		{"no swing time", r2.Point{X: 0.5, Y: 0}, 3.4, nil, stance},
		{"segment stance", r2.Point{X: 0.5, Y: 0}, 3.4, []float64{0.1}, spatialmath.NewConvexPolygon(r2.Point{X: 0, Y: 0}, r2.Point{X: 0.1, Y: 0})},
		{"nil stance", r2.Point{X: 0.5, Y: 0}, 3.4, []float64{0.1}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			calc := NewAchievableCaptureRegionCalculator()
			test.That(t, calc.CalculateCaptureRegion(0.01, tc.swingTimes, tc.icp, tc.omega0, tc.stance), test.ShouldBeFalse)
			test.That(t, calc.CaptureRegion().IsEmpty(), test.ShouldBeTrue)
		})
	}
}
