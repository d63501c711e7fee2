package spatialmath

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestClosestPointSegmentPoint2D(t *testing.T) {
	start, end := r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}
	test.That(t, ClosestPointSegmentPoint2D(start, end, r2.Point{X: 0.5, Y: 1}), test.ShouldResemble, r2.Point{X: 0.5, Y: 0})
	test.That(t, ClosestPointSegmentPoint2D(start, end, r2.Point{X: 2, Y: 1}), test.ShouldResemble, end)
	test.That(t, ClosestPointSegmentPoint2D(start, end, r2.Point{X: -1, Y: 0}), test.ShouldResemble, start)
	test.That(t, ClosestPointSegmentPoint2D(start, start, r2.Point{X: 3, Y: 3}), test.ShouldResemble, start)
}

func TestIntersectionBetweenTwoLines(t *testing.T) {
	pt, ok := IntersectionBetweenTwoLines(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 0, Y: 1}, r2.Point{X: 1, Y: 0})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0.5)

	_, ok = IntersectionBetweenTwoLines(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}, r2.Point{X: 1, Y: 1})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestIntersectionBetweenLineAndSegment(t *testing.T) {
	pt, ok := IntersectionBetweenLineAndSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0.5, Y: -1}, r2.Point{X: 0.5, Y: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0)

	// the line is infinite in both directions
	pt, ok = IntersectionBetweenLineAndSegment(r2.Point{X: 1, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0.5, Y: -1}, r2.Point{X: 0.5, Y: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt.X, test.ShouldAlmostEqual, 0.5)

	_, ok = IntersectionBetweenLineAndSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0.5, Y: 1}, r2.Point{X: 0.5, Y: 2})
	test.That(t, ok, test.ShouldBeFalse)

	_, ok = IntersectionBetweenLineAndSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}, r2.Point{X: 1, Y: 1})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestIntersectionBetweenSegmentAndConvexPolygon(t *testing.T) {
	rect := NewRectangle(r2.Point{}, 0.2, 0.1)

	t.Run("exits once", func(t *testing.T) {
		first, _, count := IntersectionBetweenSegmentAndConvexPolygon(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, rect)
		test.That(t, count, test.ShouldEqual, 1)
		test.That(t, first.X, test.ShouldAlmostEqual, 0.1)
		test.That(t, first.Y, test.ShouldAlmostEqual, 0)
	})

	t.Run("crosses through", func(t *testing.T) {
		first, second, count := IntersectionBetweenSegmentAndConvexPolygon(r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0}, rect)
		test.That(t, count, test.ShouldEqual, 2)
		test.That(t, first.X, test.ShouldAlmostEqual, -0.1)
		test.That(t, second.X, test.ShouldAlmostEqual, 0.1)
	})

	t.Run("fully inside", func(t *testing.T) {
		_, _, count := IntersectionBetweenSegmentAndConvexPolygon(r2.Point{X: 0, Y: 0}, r2.Point{X: 0.05, Y: 0}, rect)
		test.That(t, count, test.ShouldEqual, 0)
	})

	t.Run("misses", func(t *testing.T) {
		_, _, count := IntersectionBetweenSegmentAndConvexPolygon(r2.Point{X: -1, Y: 1}, r2.Point{X: 1, Y: 1}, rect)
		test.That(t, count, test.ShouldEqual, 0)
	})

	t.Run("degenerate polygon", func(t *testing.T) {
		segment := NewConvexPolygon(r2.Point{X: 0, Y: -1}, r2.Point{X: 0, Y: 1})
		_, _, count := IntersectionBetweenSegmentAndConvexPolygon(r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0}, segment)
		test.That(t, count, test.ShouldEqual, 0)
	})
}
