package captureregion

import (
	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/stepconstraint"
)

// ConstrainedReachableRegion is the part of a reachable region that lies on one step constraint
// region.
type ConstrainedReachableRegion struct {
	Polygon *spatialmath.ConvexPolygon
	// Source is the constraint region the polygon was cut from.
	Source *stepconstraint.Region
}

func newConstrainedReachableRegion() *ConstrainedReachableRegion {
	return &ConstrainedReachableRegion{Polygon: spatialmath.NewConvexPolygon()}
}

func (r *ConstrainedReachableRegion) reset() {
	r.Polygon.Clear()
	r.Source = nil
}

type depthConstraints struct {
	hasConstraints bool
	regions        *recyclingList[ConstrainedReachableRegion]
	selected       *stepconstraint.Region
}

func newDepthConstraints() *depthConstraints {
	return &depthConstraints{
		regions: newRecyclingList(newConstrainedReachableRegion, (*ConstrainedReachableRegion).reset),
	}
}

func (d *depthConstraints) reset() {
	d.hasConstraints = false
	d.regions.Clear()
	d.selected = nil
}

// ConstrainedRegionComposer combines the reachable and capture regions of each planning depth
// with the step constraint regions available at that depth. The provider is queried once per
// depth. Depths must be computed in increasing order after a call to Reset.
type ConstrainedRegionComposer struct {
	provider stepconstraint.Provider
	tools    *spatialmath.ConvexPolygonTools
	depths   *recyclingList[depthConstraints]

	hullInWorld  *spatialmath.ConvexPolygon
	intersection *spatialmath.ConvexPolygon
}

// NewConstrainedRegionComposer returns a composer using provider, which may be nil.
func NewConstrainedRegionComposer(provider stepconstraint.Provider) *ConstrainedRegionComposer {
	return &ConstrainedRegionComposer{
		provider:     provider,
		tools:        spatialmath.NewConvexPolygonTools(),
		depths:       newRecyclingList(newDepthConstraints, (*depthConstraints).reset),
		hullInWorld:  spatialmath.NewConvexPolygon(),
		intersection: spatialmath.NewConvexPolygon(),
	}
}

// SetProvider replaces the constraint region provider.
func (c *ConstrainedRegionComposer) SetProvider(provider stepconstraint.Provider) {
	c.provider = provider
}

// Reset forgets every depth.
func (c *ConstrainedRegionComposer) Reset() {
	c.depths.Clear()
}

// ComputeConstrainedReachableRegions intersects every constraint region provided for depth with
// reachable and keeps the intersections of positive area. The result is empty when the step is
// unconstrained or when no constraint region overlaps the reachable region; HasConstraints tells
// the two apart.
func (c *ConstrainedRegionComposer) ComputeConstrainedReachableRegions(
	depth int,
	reachable *spatialmath.ConvexPolygon,
) []*ConstrainedReachableRegion {
	for c.depths.Len() <= depth {
		c.depths.Add()
	}
	state := c.depths.Get(depth)
	state.reset()

	var regions []*stepconstraint.Region
	if c.provider != nil {
		regions = c.provider(depth)
	}
	state.hasConstraints = len(regions) > 0

	for _, region := range regions {
		if region == nil {
			continue
		}
		region.HullInWorld(c.hullInWorld)
		c.tools.Intersection(reachable, c.hullInWorld, c.intersection)
		if c.intersection.Area() > 0 {
			constrained := state.regions.Add()
			constrained.Polygon.Set(c.intersection)
			constrained.Source = region
		}
	}
	return state.regions.View()
}

// ComputeConstrainedCaptureRegion writes into out the part of reachableCapture the step at depth
// may land in, and returns the constraint region it lies on. An unconstrained step copies
// reachableCapture unchanged and returns nil. With several constrained reachable regions, the one
// whose intersection with reachableCapture has the largest area is used, the first one winning
// ties; out is empty and nil is returned when none overlaps.
func (c *ConstrainedRegionComposer) ComputeConstrainedCaptureRegion(
	depth int,
	reachableCapture *spatialmath.ConvexPolygon,
	out *spatialmath.ConvexPolygon,
) *stepconstraint.Region {
	state := c.depths.Get(depth)
	if state == nil || !state.hasConstraints {
		out.Set(reachableCapture)
		return nil
	}

	var selected *ConstrainedReachableRegion
	if state.regions.Len() == 1 {
		selected = state.regions.Get(0)
	} else {
		largestArea := 0.0
		for _, region := range state.regions.View() {
			if area := c.tools.IntersectionArea(reachableCapture, region.Polygon); area > largestArea {
				largestArea = area
				selected = region
			}
		}
	}

	if selected == nil {
		out.Clear()
		state.selected = nil
		return nil
	}
	c.tools.Intersection(reachableCapture, selected.Polygon, out)
	state.selected = selected.Source
	return selected.Source
}

// HasConstraints reports whether the provider returned constraint regions for depth.
func (c *ConstrainedRegionComposer) HasConstraints(depth int) bool {
	state := c.depths.Get(depth)
	return state != nil && state.hasConstraints
}

// ConstrainedReachableRegions returns the regions computed for depth.
func (c *ConstrainedRegionComposer) ConstrainedReachableRegions(depth int) []*ConstrainedReachableRegion {
	state := c.depths.Get(depth)
	if state == nil {
		return nil
	}
	return state.regions.View()
}

// SelectedRegion returns the constraint region chosen for depth, or nil.
func (c *ConstrainedRegionComposer) SelectedRegion(depth int) *stepconstraint.Region {
	state := c.depths.Get(depth)
	if state == nil {
		return nil
	}
	return state.selected
}

// NumberOfDepths returns how many depths were computed since the last Reset.
func (c *ConstrainedRegionComposer) NumberOfDepths() int {
	return c.depths.Len()
}
