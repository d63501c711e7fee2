package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// floatEpsilon is the tolerance used by the planar geometry routines for orientation and
// containment tests.
const floatEpsilon = 1e-9

// ClosestPointSegmentPoint2D takes a line segment defined by two points and a third point, and
// returns the point on the segment closest to the third point.
func ClosestPointSegmentPoint2D(segStart, segEnd, query r2.Point) r2.Point {
	direction := segEnd.Sub(segStart)
	lengthSq := direction.Dot(direction)
	if lengthSq < floatEpsilon*floatEpsilon {
		return segStart
	}
	t := query.Sub(segStart).Dot(direction) / lengthSq
	switch {
	case t <= 0:
		return segStart
	case t >= 1:
		return segEnd
	default:
		return segStart.Add(direction.Mul(t))
	}
}

// IntersectionBetweenTwoLines returns the intersection of the infinite line through p1 and p2 with
// the infinite line through q1 and q2. Returns false for parallel or degenerate lines.
func IntersectionBetweenTwoLines(p1, p2, q1, q2 r2.Point) (r2.Point, bool) {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)
	denom := d1.Cross(d2)
	if math.Abs(denom) < floatEpsilon {
		return r2.Point{}, false
	}
	t := q1.Sub(p1).Cross(d2) / denom
	return p1.Add(d1.Mul(t)), true
}

// IntersectionBetweenLineAndSegment returns the intersection of the infinite line through
// linePoint along lineDirection with the segment [segStart, segEnd]. Returns false when they do
// not cross or are parallel.
func IntersectionBetweenLineAndSegment(linePoint, lineDirection, segStart, segEnd r2.Point) (r2.Point, bool) {
	segDirection := segEnd.Sub(segStart)
	denom := lineDirection.Cross(segDirection)
	if math.Abs(denom) < floatEpsilon {
		return r2.Point{}, false
	}
	s := segStart.Sub(linePoint).Cross(lineDirection) / denom
	if s < -floatEpsilon || s > 1+floatEpsilon {
		return r2.Point{}, false
	}
	return segStart.Add(segDirection.Mul(s)), true
}

// IntersectionBetweenSegmentAndConvexPolygon returns the points where the segment [segStart,
// segEnd] crosses the boundary of the convex polygon, ordered from segStart. The count is 0, 1 or
// 2; a segment lying fully inside the polygon has no boundary crossing. Polygons with fewer than
// three vertices never intersect.
func IntersectionBetweenSegmentAndConvexPolygon(segStart, segEnd r2.Point, polygon *ConvexPolygon) (first, second r2.Point, count int) {
	if polygon.NumVertices() < 3 {
		return r2.Point{}, r2.Point{}, 0
	}
	direction := segEnd.Sub(segStart)
	tEnter, tExit := 0.0, 1.0

	// Cyrus-Beck clipping against every edge. Inside a ccw polygon is the left side of each edge.
	n := polygon.NumVertices()
	for i := 0; i < n; i++ {
		edgeStart := polygon.Vertex(i)
		edge := polygon.Vertex(i + 1).Sub(edgeStart)
		offset := edge.Cross(segStart.Sub(edgeStart))
		rate := edge.Cross(direction)
		if math.Abs(rate) < floatEpsilon {
			if offset < -floatEpsilon {
				return r2.Point{}, r2.Point{}, 0
			}
			continue
		}
		t := -offset / rate
		if rate > 0 {
			tEnter = math.Max(tEnter, t)
		} else {
			tExit = math.Min(tExit, t)
		}
		if tEnter > tExit {
			return r2.Point{}, r2.Point{}, 0
		}
	}

	// tEnter of 0 means segStart is inside, tExit of 1 means segEnd is inside; neither is a crossing.
	var crossings [2]r2.Point
	if tEnter > floatEpsilon {
		crossings[count] = segStart.Add(direction.Mul(tEnter))
		count++
	}
	if tExit < 1-floatEpsilon && (count == 0 || tExit-tEnter > floatEpsilon) {
		crossings[count] = segStart.Add(direction.Mul(tExit))
		count++
	}
	return crossings[0], crossings[1], count
}
