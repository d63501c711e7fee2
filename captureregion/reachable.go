package captureregion

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/utils"
)

// arcSegments is the number of segments used for each half ellipse of the reachable region.
const arcSegments = 12

// ReachableFootholdsCalculator computes where the swing foot can land relative to the stance foot.
//
// In the stance frame the region is a forward half ellipse (max step length by max step width)
// joined to a backward half ellipse (max backward step length by max step width), cut to the
// swing side so that steps never come closer to the stance foot than the min step width.
type ReachableFootholdsCalculator struct {
	maxStepLength         DoubleProvider
	maxBackwardStepLength DoubleProvider
	minStepWidth          DoubleProvider
	maxStepWidth          DoubleProvider

	ellipse []r2.Point
	clipped []r2.Point
}

// NewReachableFootholdsCalculator returns a calculator polling the given providers.
func NewReachableFootholdsCalculator(
	maxStepLength, maxBackwardStepLength, minStepWidth, maxStepWidth DoubleProvider,
) *ReachableFootholdsCalculator {
	return &ReachableFootholdsCalculator{
		maxStepLength:         maxStepLength,
		maxBackwardStepLength: maxBackwardStepLength,
		minStepWidth:          minStepWidth,
		maxStepWidth:          maxStepWidth,
		ellipse:               make([]r2.Point, 0, 2*(arcSegments+1)),
		clipped:               make([]r2.Point, 0, 2*(arcSegments+2)),
	}
}

// CalculateReachableRegion writes into out the world frame region reachable by swingSide when
// stepping from stancePose. Out of range provider values are clamped so that the result is always
// a valid, possibly degenerate, polygon.
func (c *ReachableFootholdsCalculator) CalculateReachableRegion(swingSide footstep.Side, stancePose spatialmath.Pose, out *spatialmath.ConvexPolygon) {
	forward := utils.NonNegativeOrZero(c.maxStepLength.Value())
	backward := utils.NonNegativeOrZero(c.maxBackwardStepLength.Value())
	maxWidth := utils.NonNegativeOrZero(c.maxStepWidth.Value())
	minWidth := c.minStepWidth.Value()
	if math.IsNaN(minWidth) || minWidth > maxWidth {
		minWidth = maxWidth
	}

	// built for a left swing, mirrored afterwards
	c.ellipse = c.ellipse[:0]
	for i := 0; i <= arcSegments; i++ {
		angle := -math.Pi/2 + math.Pi*float64(i)/arcSegments
		lateral := maxWidth * math.Sin(angle)
		c.ellipse = append(c.ellipse,
			r2.Point{X: forward * math.Cos(angle), Y: lateral},
			r2.Point{X: -backward * math.Cos(angle), Y: lateral},
		)
	}
	out.Clear()
	out.AddVertices(c.ellipse...)
	out.Update()

	c.clipped = clipBelow(out, minWidth, c.clipped[:0])

	out.Clear()
	for _, pt := range c.clipped {
		pt.Y = swingSide.NegateIfRight(pt.Y)
		out.AddVertex(spatialmath.TransformPoint2D(stancePose, pt))
	}
	out.Update()
}

// clipBelow appends to dst the vertices of polygon with y >= minY.
func clipBelow(polygon *spatialmath.ConvexPolygon, minY float64, dst []r2.Point) []r2.Point {
	n := polygon.NumVertices()
	for i := 0; i < n; i++ {
		previous := polygon.Vertex(i - 1)
		current := polygon.Vertex(i)
		previousInside, currentInside := previous.Y >= minY, current.Y >= minY
		if currentInside != previousInside && n > 1 {
			ratio := (minY - previous.Y) / (current.Y - previous.Y)
			dst = append(dst, previous.Add(current.Sub(previous).Mul(ratio)))
		}
		if currentInside {
			dst = append(dst, current)
		}
	}
	return dst
}
