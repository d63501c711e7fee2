package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"
)

var approxPoints = cmpopts.EquateApprox(0, 1e-9)

func TestConvexPolygonHull(t *testing.T) {
	polygon := NewConvexPolygon(
		r2.Point{X: 0.1, Y: 0.05},
		r2.Point{X: -0.1, Y: -0.05},
		r2.Point{X: 0, Y: 0},
		r2.Point{X: 0.1, Y: -0.05},
		r2.Point{X: -0.1, Y: 0.05},
		r2.Point{X: 0.1, Y: 0.05},
		r2.Point{X: 0.1, Y: 0},
	)
	expected := []r2.Point{{X: -0.1, Y: -0.05}, {X: 0.1, Y: -0.05}, {X: 0.1, Y: 0.05}, {X: -0.1, Y: 0.05}}
	test.That(t, cmp.Diff(expected, polygon.Vertices(), approxPoints), test.ShouldBeEmpty)
	test.That(t, polygon.NumVertices(), test.ShouldEqual, 4)
	test.That(t, polygon.Area(), test.ShouldAlmostEqual, 0.02)
	test.That(t, polygon.Centroid().X, test.ShouldAlmostEqual, 0)
	test.That(t, polygon.Centroid().Y, test.ShouldAlmostEqual, 0)
	test.That(t, polygon.Vertex(4), test.ShouldResemble, polygon.Vertex(0))
	test.That(t, polygon.Vertex(-1), test.ShouldResemble, polygon.Vertex(3))

	fromXY := NewConvexPolygonFromXY([][2]float64{{0.1, 0.05}, {0.1, -0.05}, {-0.1, -0.05}, {-0.1, 0.05}})
	test.That(t, cmp.Diff(polygon.Vertices(), fromXY.Vertices(), approxPoints), test.ShouldBeEmpty)
}

func TestConvexPolygonDegenerate(t *testing.T) {
	empty := NewConvexPolygon()
	test.That(t, empty.IsEmpty(), test.ShouldBeTrue)
	test.That(t, empty.Area(), test.ShouldEqual, 0)
	test.That(t, empty.IsPointInside(r2.Point{}), test.ShouldBeFalse)
	_, ok := empty.OrthogonalProjection(r2.Point{})
	test.That(t, ok, test.ShouldBeFalse)

	point := NewConvexPolygon(r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: 1})
	test.That(t, point.NumVertices(), test.ShouldEqual, 1)
	test.That(t, point.Centroid(), test.ShouldResemble, r2.Point{X: 1, Y: 1})
	test.That(t, point.IsPointInside(r2.Point{X: 1, Y: 1}), test.ShouldBeTrue)
	projected, ok := point.OrthogonalProjection(r2.Point{X: 3, Y: 4})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, projected, test.ShouldResemble, r2.Point{X: 1, Y: 1})

	collinear := NewConvexPolygon(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0.5, Y: 0})
	test.That(t, collinear.NumVertices(), test.ShouldEqual, 2)
	test.That(t, collinear.Area(), test.ShouldEqual, 0)
	test.That(t, collinear.Centroid().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, collinear.IsPointInside(r2.Point{X: 0.25, Y: 0}), test.ShouldBeTrue)
	test.That(t, collinear.IsPointInside(r2.Point{X: 0.25, Y: 0.1}), test.ShouldBeFalse)
}

func TestConvexPolygonReuse(t *testing.T) {
	polygon := NewRectangle(r2.Point{}, 1, 1)
	polygon.Clear()
	test.That(t, polygon.IsEmpty(), test.ShouldBeTrue)
	polygon.AddVertex(r2.Point{X: 0, Y: 0})
	polygon.AddVertex(r2.Point{X: 2, Y: 0})
	polygon.AddVertex(r2.Point{X: 0, Y: 2})
	test.That(t, polygon.Area(), test.ShouldAlmostEqual, 2)

	other := NewRectangle(r2.Point{X: 5, Y: 5}, 2, 2)
	polygon.Set(other)
	test.That(t, polygon.Area(), test.ShouldAlmostEqual, 4)
	test.That(t, polygon.Centroid().X, test.ShouldAlmostEqual, 5)

	clone := polygon.Clone()
	polygon.Translate(r2.Point{X: 1, Y: 0})
	test.That(t, clone.Centroid().X, test.ShouldAlmostEqual, 5)
	test.That(t, polygon.Centroid().X, test.ShouldAlmostEqual, 6)
}

func TestConvexPolygonContainment(t *testing.T) {
	rect := NewRectangle(r2.Point{}, 0.2, 0.1)
	for _, tc := range []struct {
		name   string
		point  r2.Point
		inside bool
	}{
		{"center", r2.Point{X: 0, Y: 0}, true},
		{"on edge", r2.Point{X: 0.1, Y: 0}, true},
		{"on vertex", r2.Point{X: 0.1, Y: 0.05}, true},
		{"outside x", r2.Point{X: 0.11, Y: 0}, false},
		{"outside y", r2.Point{X: 0, Y: -0.06}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, rect.IsPointInside(tc.point), test.ShouldEqual, tc.inside)
		})
	}
	test.That(t, rect.IsPointInsideEps(r2.Point{X: 0.11, Y: 0}, 0.02), test.ShouldBeTrue)
}

func TestConvexPolygonOrthogonalProjection(t *testing.T) {
	rect := NewRectangle(r2.Point{}, 0.2, 0.1)

	projected, ok := rect.OrthogonalProjection(r2.Point{X: 0.3, Y: 0})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, projected.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, projected.Y, test.ShouldAlmostEqual, 0)

	projected, _ = rect.OrthogonalProjection(r2.Point{X: 0.3, Y: 0.2})
	test.That(t, projected.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, projected.Y, test.ShouldAlmostEqual, 0.05)

	inside := r2.Point{X: 0.01, Y: 0.02}
	projected, _ = rect.OrthogonalProjection(inside)
	test.That(t, projected, test.ShouldResemble, inside)
}

func TestConvexPolygonTransforms(t *testing.T) {
	rect := NewRectangle(r2.Point{X: 1, Y: 1}, 0.2, 0.1)
	rect.Scale(rect.Centroid(), 0.5)
	test.That(t, rect.Area(), test.ShouldAlmostEqual, 0.005)
	test.That(t, rect.Centroid().X, test.ShouldAlmostEqual, 1)
	test.That(t, rect.Centroid().Y, test.ShouldAlmostEqual, 1)

	foot := NewRectangle(r2.Point{}, 0.2, 0.1)
	foot.ApplyPose(NewPoseFromXYYaw(1, 0, math.Pi/2))
	test.That(t, foot.Area(), test.ShouldAlmostEqual, 0.02)
	test.That(t, foot.Centroid().X, test.ShouldAlmostEqual, 1)
	test.That(t, foot.Centroid().Y, test.ShouldAlmostEqual, 0)
	test.That(t, foot.IsPointInside(r2.Point{X: 1.04, Y: 0.09}), test.ShouldBeTrue)
	test.That(t, foot.IsPointInside(r2.Point{X: 1.09, Y: 0.04}), test.ShouldBeFalse)

	// the winding stays counter-clockwise
	for i := 0; i < foot.NumVertices(); i++ {
		edge := foot.Vertex(i + 1).Sub(foot.Vertex(i))
		next := foot.Vertex(i + 2).Sub(foot.Vertex(i + 1))
		test.That(t, edge.Cross(next), test.ShouldBeGreaterThan, 0)
	}
}

func TestLineOfSightIndices(t *testing.T) {
	rect := NewRectangle(r2.Point{}, 0.2, 0.1)

	start, end, ok := rect.LineOfSightIndices(r2.Point{X: 1, Y: 0})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, rect.Vertex(start), test.ShouldResemble, r2.Point{X: 0.1, Y: -0.05})
	test.That(t, rect.Vertex(end), test.ShouldResemble, r2.Point{X: 0.1, Y: 0.05})

	start, end, ok = rect.LineOfSightIndices(r2.Point{X: 1, Y: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, rect.Vertex(start), test.ShouldResemble, r2.Point{X: 0.1, Y: -0.05})
	test.That(t, rect.Vertex(end), test.ShouldResemble, r2.Point{X: -0.1, Y: 0.05})

	_, _, ok = rect.LineOfSightIndices(r2.Point{X: 0, Y: 0})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestConvexPolygonIntersection(t *testing.T) {
	tools := NewConvexPolygonTools()
	a := NewRectangle(r2.Point{}, 0.2, 0.1)

	t.Run("overlapping", func(t *testing.T) {
		b := NewRectangle(r2.Point{X: 0.1, Y: 0}, 0.2, 0.1)
		out := &ConvexPolygon{}
		test.That(t, tools.Intersection(a, b, out), test.ShouldBeTrue)
		test.That(t, out.Area(), test.ShouldAlmostEqual, 0.01)
		test.That(t, out.Centroid().X, test.ShouldAlmostEqual, 0.05)
		test.That(t, tools.IntersectionArea(a, b), test.ShouldAlmostEqual, 0.01)
		test.That(t, tools.IntersectionArea(b, a), test.ShouldAlmostEqual, 0.01)
	})

	t.Run("contained", func(t *testing.T) {
		b := NewRectangle(r2.Point{}, 0.1, 0.05)
		out := &ConvexPolygon{}
		test.That(t, tools.Intersection(a, b, out), test.ShouldBeTrue)
		test.That(t, cmp.Diff(b.Vertices(), out.Vertices(), approxPoints), test.ShouldBeEmpty)
	})

	t.Run("disjoint", func(t *testing.T) {
		b := NewRectangle(r2.Point{X: 1, Y: 0}, 0.2, 0.1)
		out := NewRectangle(r2.Point{}, 1, 1)
		test.That(t, tools.Intersection(a, b, out), test.ShouldBeFalse)
		test.That(t, out.IsEmpty(), test.ShouldBeTrue)
		test.That(t, tools.IntersectionArea(a, b), test.ShouldEqual, 0)
	})

	t.Run("degenerate input", func(t *testing.T) {
		segment := NewConvexPolygon(r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0})
		out := &ConvexPolygon{}
		test.That(t, tools.Intersection(a, segment, out), test.ShouldBeFalse)
	})
}

func TestMinimumDistancePoints(t *testing.T) {
	tools := NewConvexPolygonTools()
	a := NewRectangle(r2.Point{}, 0.2, 0.1)

	b := NewRectangle(r2.Point{X: 1, Y: 0}, 0.2, 0.1)
	pointA, pointB, dist, ok := tools.MinimumDistancePoints(a, b)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dist, test.ShouldAlmostEqual, 0.8)
	test.That(t, pointA.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, pointB.X, test.ShouldAlmostEqual, 0.9)
	test.That(t, pointA.Y, test.ShouldAlmostEqual, pointB.Y)

	// a vertex facing an edge
	diamond := NewConvexPolygon(r2.Point{X: 0.5, Y: 0}, r2.Point{X: 0.6, Y: 0.1}, r2.Point{X: 0.7, Y: 0}, r2.Point{X: 0.6, Y: -0.1})
	pointA, pointB, dist, ok = tools.MinimumDistancePoints(a, diamond)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dist, test.ShouldAlmostEqual, 0.4)
	test.That(t, pointA.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, pointA.Y, test.ShouldAlmostEqual, 0)
	test.That(t, pointB, test.ShouldResemble, r2.Point{X: 0.5, Y: 0})

	overlapping := NewRectangle(r2.Point{X: 0.1, Y: 0}, 0.2, 0.1)
	pointA, pointB, dist, ok = tools.MinimumDistancePoints(a, overlapping)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dist, test.ShouldEqual, 0)
	test.That(t, pointA, test.ShouldResemble, pointB)
	test.That(t, pointA.X, test.ShouldAlmostEqual, 0.05)

	_, _, _, ok = tools.MinimumDistancePoints(a, NewConvexPolygon())
	test.That(t, ok, test.ShouldBeFalse)
}
