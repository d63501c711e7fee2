package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// ConvexPolygonTools holds scratch buffers for the binary polygon operations so repeated calls do
// not allocate. It is not safe for concurrent use.
type ConvexPolygonTools struct {
	input   []r2.Point
	output  []r2.Point
	scratch ConvexPolygon
}

// NewConvexPolygonTools returns a ConvexPolygonTools with empty buffers.
func NewConvexPolygonTools() *ConvexPolygonTools {
	return &ConvexPolygonTools{}
}

// Intersection computes the intersection of a and b into out and reports whether it is
// non-empty. out may not alias a or b. Polygons with fewer than three vertices have no
// intersection.
func (t *ConvexPolygonTools) Intersection(a, b, out *ConvexPolygon) bool {
	out.Clear()
	if a.NumVertices() < 3 || b.NumVertices() < 3 {
		return false
	}

	t.input = append(t.input[:0], b.Vertices()...)
	n := a.NumVertices()
	for i := 0; i < n && len(t.input) > 0; i++ {
		edgeStart := a.Vertex(i)
		edgeEnd := a.Vertex(i + 1)
		edge := edgeEnd.Sub(edgeStart)
		// positive when pt is on the inner (left) side of the edge
		side := func(pt r2.Point) float64 {
			return edge.Cross(pt.Sub(edgeStart))
		}

		t.output = t.output[:0]
		for j := range t.input {
			current := t.input[j]
			previous := t.input[(j+len(t.input)-1)%len(t.input)]
			currentSide, previousSide := side(current), side(previous)
			if currentSide >= 0 {
				if previousSide < 0 {
					t.output = append(t.output, crossing(previous, current, previousSide, currentSide))
				}
				t.output = append(t.output, current)
			} else if previousSide >= 0 {
				t.output = append(t.output, crossing(previous, current, previousSide, currentSide))
			}
		}
		t.input, t.output = t.output, t.input
	}

	out.AddVertices(t.input...)
	out.Update()
	return !out.IsEmpty()
}

// IntersectionArea returns the area of the intersection of a and b.
func (t *ConvexPolygonTools) IntersectionArea(a, b *ConvexPolygon) float64 {
	if !t.Intersection(a, b, &t.scratch) {
		return 0
	}
	return t.scratch.Area()
}

// MinimumDistancePoints returns the closest pair of points between a and b and their distance.
// When the polygons overlap both points are the centroid of the overlap and the distance is zero.
// Returns false when either polygon is empty.
func (t *ConvexPolygonTools) MinimumDistancePoints(a, b *ConvexPolygon) (pointA, pointB r2.Point, dist float64, ok bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return r2.Point{}, r2.Point{}, math.NaN(), false
	}
	if t.Intersection(a, b, &t.scratch) {
		centroid := t.scratch.Centroid()
		return centroid, centroid, 0, true
	}

	dist = math.Inf(1)
	for _, v := range a.Vertices() {
		candidate, _ := b.OrthogonalProjection(v)
		if d := candidate.Sub(v).Norm(); d < dist {
			pointA, pointB, dist = v, candidate, d
		}
	}
	for _, v := range b.Vertices() {
		candidate, _ := a.OrthogonalProjection(v)
		if d := candidate.Sub(v).Norm(); d < dist {
			pointA, pointB, dist = candidate, v, d
		}
	}
	return pointA, pointB, dist, true
}

// crossing returns the point between from and to where the signed side value changes sign.
func crossing(from, to r2.Point, fromSide, toSide float64) r2.Point {
	ratio := fromSide / (fromSide - toSide)
	return from.Add(to.Sub(from).Mul(ratio))
}
