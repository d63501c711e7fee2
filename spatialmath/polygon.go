package spatialmath

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/golang/geo/r2"
)

// collinearTolerance is the cross product (m^2) below which three hull points are collinear.
const collinearTolerance = 1e-14

// ConvexPolygon is a planar convex polygon stored as counter-clockwise vertices. Any set of
// points added to it is replaced by its convex hull, so the vertex order and convexity invariants
// always hold. Polygons with zero, one or two vertices are valid and represent the empty set, a
// point, and a segment.
//
// A ConvexPolygon reuses its backing storage across Clear/Set calls and is not safe for
// concurrent use.
type ConvexPolygon struct {
	vertices []r2.Point
	hull     []r2.Point
	area     float64
	centroid r2.Point
	outdated bool
}

// NewConvexPolygon returns the convex hull of the given points.
func NewConvexPolygon(points ...r2.Point) *ConvexPolygon {
	polygon := &ConvexPolygon{}
	polygon.AddVertices(points...)
	polygon.Update()
	return polygon
}

// NewConvexPolygonFromXY returns the convex hull of the given [x, y] pairs.
func NewConvexPolygonFromXY(points [][2]float64) *ConvexPolygon {
	polygon := &ConvexPolygon{}
	for _, pt := range points {
		polygon.AddVertex(r2.Point{X: pt[0], Y: pt[1]})
	}
	polygon.Update()
	return polygon
}

// NewRectangle returns an axis aligned rectangle of the given size centered at center.
func NewRectangle(center r2.Point, lengthX, widthY float64) *ConvexPolygon {
	hx, hy := lengthX/2, widthY/2
	return NewConvexPolygon(
		r2.Point{X: center.X - hx, Y: center.Y - hy},
		r2.Point{X: center.X + hx, Y: center.Y - hy},
		r2.Point{X: center.X + hx, Y: center.Y + hy},
		r2.Point{X: center.X - hx, Y: center.Y + hy},
	)
}

// Clear removes every vertex.
func (p *ConvexPolygon) Clear() {
	p.vertices = p.vertices[:0]
	p.area = 0
	p.centroid = r2.Point{}
	p.outdated = false
}

// AddVertex stages a point. The hull is rebuilt lazily on the next read or explicitly by Update.
func (p *ConvexPolygon) AddVertex(pt r2.Point) {
	p.vertices = append(p.vertices, pt)
	p.outdated = true
}

// AddVertices stages several points.
func (p *ConvexPolygon) AddVertices(pts ...r2.Point) {
	p.vertices = append(p.vertices, pts...)
	p.outdated = true
}

// Set copies other into p.
func (p *ConvexPolygon) Set(other *ConvexPolygon) {
	if p == other {
		return
	}
	other.Update()
	p.vertices = append(p.vertices[:0], other.vertices...)
	p.area = other.area
	p.centroid = other.centroid
	p.outdated = false
}

// Clone returns a deep copy of the polygon.
func (p *ConvexPolygon) Clone() *ConvexPolygon {
	clone := &ConvexPolygon{}
	clone.Set(p)
	return clone
}

// Update rebuilds the hull, area and centroid if vertices were added since the last update.
func (p *ConvexPolygon) Update() {
	if !p.outdated {
		return
	}
	p.outdated = false
	p.computeHull()
	p.computeAreaAndCentroid()
}

// NumVertices returns the number of hull vertices.
func (p *ConvexPolygon) NumVertices() int {
	p.Update()
	return len(p.vertices)
}

// IsEmpty returns true when the polygon has no vertex.
func (p *ConvexPolygon) IsEmpty() bool {
	return p.NumVertices() == 0
}

// Vertex returns vertex i, wrapping around so that Vertex(n) is Vertex(0).
func (p *ConvexPolygon) Vertex(i int) r2.Point {
	p.Update()
	n := len(p.vertices)
	return p.vertices[((i%n)+n)%n]
}

// Vertices returns a read-only view of the counter-clockwise hull vertices. It is invalidated by
// any later mutation of the polygon.
func (p *ConvexPolygon) Vertices() []r2.Point {
	p.Update()
	return p.vertices
}

// Area returns the enclosed area. Degenerate polygons have zero area.
func (p *ConvexPolygon) Area() float64 {
	p.Update()
	return p.area
}

// Centroid returns the area centroid, or the vertex average for degenerate polygons.
func (p *ConvexPolygon) Centroid() r2.Point {
	p.Update()
	return p.centroid
}

// IsPointInside reports whether pt lies inside or on the boundary of the polygon.
func (p *ConvexPolygon) IsPointInside(pt r2.Point) bool {
	return p.IsPointInsideEps(pt, floatEpsilon)
}

// IsPointInsideEps is IsPointInside with an explicit tolerance in meters.
func (p *ConvexPolygon) IsPointInsideEps(pt r2.Point, epsilon float64) bool {
	p.Update()
	switch len(p.vertices) {
	case 0:
		return false
	case 1:
		return pt.Sub(p.vertices[0]).Norm() <= epsilon
	case 2:
		return pt.Sub(ClosestPointSegmentPoint2D(p.vertices[0], p.vertices[1], pt)).Norm() <= epsilon
	}
	for i := range p.vertices {
		edgeStart := p.vertices[i]
		edge := p.Vertex(i + 1).Sub(edgeStart)
		// signed distance of pt to the left of the edge
		if edge.Cross(pt.Sub(edgeStart)) < -epsilon*edge.Norm() {
			return false
		}
	}
	return true
}

// OrthogonalProjection returns the point of the polygon closest to pt, which is pt itself when it
// is inside. Returns false for an empty polygon.
func (p *ConvexPolygon) OrthogonalProjection(pt r2.Point) (r2.Point, bool) {
	if p.IsEmpty() {
		return r2.Point{}, false
	}
	if p.IsPointInside(pt) {
		return pt, true
	}
	return p.closestBoundaryPoint(pt), true
}

func (p *ConvexPolygon) closestBoundaryPoint(pt r2.Point) r2.Point {
	if len(p.vertices) == 1 {
		return p.vertices[0]
	}
	best := p.vertices[0]
	bestDist := math.Inf(1)
	for i := range p.vertices {
		candidate := ClosestPointSegmentPoint2D(p.vertices[i], p.Vertex(i+1), pt)
		if dist := candidate.Sub(pt).Norm(); dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

// Scale scales every vertex about the given point.
func (p *ConvexPolygon) Scale(about r2.Point, factor float64) {
	p.Update()
	for i, v := range p.vertices {
		p.vertices[i] = about.Add(v.Sub(about).Mul(factor))
	}
	if factor == 0 {
		p.outdated = true
		return
	}
	p.computeAreaAndCentroid()
}

// Translate moves every vertex by offset.
func (p *ConvexPolygon) Translate(offset r2.Point) {
	p.Update()
	for i, v := range p.vertices {
		p.vertices[i] = v.Add(offset)
	}
	p.centroid = p.centroid.Add(offset)
}

// ApplyPose treats the current vertices as expressed in the frame of pose, moves them to the
// world frame and projects them onto the world XY plane.
func (p *ConvexPolygon) ApplyPose(pose Pose) {
	p.Update()
	for i, v := range p.vertices {
		p.vertices[i] = TransformPoint2D(pose, v)
	}
	// roll and pitch may flip the winding once projected
	p.outdated = true
	p.Update()
}

// LineOfSightIndices returns the indices of the two vertices where the lines of sight from an
// observer outside the polygon are tangent to it. start is the first and end the last vertex of
// the boundary chain visible from the observer, in counter-clockwise order. Returns false when the
// observer is inside or the polygon has fewer than three vertices.
func (p *ConvexPolygon) LineOfSightIndices(observer r2.Point) (start, end int, ok bool) {
	n := p.NumVertices()
	if n < 3 || p.IsPointInside(observer) {
		return -1, -1, false
	}
	visible := func(i int) bool {
		edgeStart := p.Vertex(i)
		return p.Vertex(i+1).Sub(edgeStart).Cross(observer.Sub(edgeStart)) < 0
	}
	start, end = -1, -1
	for i := 0; i < n; i++ {
		previous, current := visible(i-1+n), visible(i)
		if current && !previous {
			start = i
		}
		if previous && !current {
			end = i
		}
	}
	if start < 0 || end < 0 {
		return -1, -1, false
	}
	return start, end, true
}

func (p *ConvexPolygon) String() string {
	p.Update()
	parts := make([]string, 0, len(p.vertices))
	for _, v := range p.vertices {
		parts = append(parts, fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// computeHull replaces the staged vertices by their convex hull using Andrew's monotone chain,
// removing duplicate and collinear points.
func (p *ConvexPolygon) computeHull() {
	points := p.vertices
	slices.SortFunc(points, func(a, b r2.Point) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})

	unique := points[:0]
	for _, pt := range points {
		if len(unique) > 0 && pt.Sub(unique[len(unique)-1]).Norm() < floatEpsilon {
			continue
		}
		unique = append(unique, pt)
	}
	if len(unique) < 3 {
		p.vertices = unique
		return
	}

	hull := p.hull[:0]
	turn := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}
	for _, pt := range unique {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], pt) <= collinearTolerance {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lowerSize := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		pt := unique[i]
		for len(hull) >= lowerSize && turn(hull[len(hull)-2], hull[len(hull)-1], pt) <= collinearTolerance {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	// the last point is the first one again
	hull = hull[:len(hull)-1]
	p.hull = hull

	p.vertices = append(p.vertices[:0], hull...)
}

func (p *ConvexPolygon) computeAreaAndCentroid() {
	n := len(p.vertices)
	p.area = 0
	p.centroid = r2.Point{}
	if n == 0 {
		return
	}

	var twiceArea float64
	var weighted r2.Point
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		cross := a.Cross(b)
		twiceArea += cross
		weighted = weighted.Add(a.Add(b).Mul(cross))
	}
	if n >= 3 && math.Abs(twiceArea) > floatEpsilon*floatEpsilon {
		p.area = math.Abs(twiceArea) / 2
		p.centroid = weighted.Mul(1 / (3 * twiceArea))
		return
	}

	var sum r2.Point
	for _, v := range p.vertices {
		sum = sum.Add(v)
	}
	p.centroid = sum.Mul(1 / float64(n))
}
