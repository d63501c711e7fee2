// Package stepconstraint describes the environmental regions a recovery step is allowed to land
// in, and the providers that supply them per planning depth.
package stepconstraint

import (
	"fmt"

	"go.viam.com/pushrecovery/spatialmath"
)

// Region is a convex patch of terrain a foot may land on, such as a stepping stone or a planar
// region extracted from a depth map. Regions are treated as immutable once handed to a planner.
type Region struct {
	ID string
	// ConvexHull is expressed in the frame of TransformToWorld.
	ConvexHull *spatialmath.ConvexPolygon
	// TransformToWorld places the hull in world frame. Nil means the hull is already in world frame.
	TransformToWorld spatialmath.Pose
}

// NewRegion returns a region whose hull is the convex hull of the given local points.
func NewRegion(id string, transformToWorld spatialmath.Pose, hull *spatialmath.ConvexPolygon) *Region {
	return &Region{ID: id, ConvexHull: hull, TransformToWorld: transformToWorld}
}

// HullInWorld writes the region's hull in world frame into out, projected on the ground plane.
func (r *Region) HullInWorld(out *spatialmath.ConvexPolygon) {
	if r.ConvexHull == nil {
		out.Clear()
		return
	}
	out.Set(r.ConvexHull)
	if r.TransformToWorld != nil {
		out.ApplyPose(r.TransformToWorld)
	}
}

func (r *Region) String() string {
	return fmt.Sprintf("region %q %v", r.ID, r.ConvexHull)
}

// Provider returns the regions available for the step planned at depth. A nil or empty result
// means the step is unconstrained. Providers are called from the planning thread and must not
// block.
type Provider func(depth int) []*Region

// StaticProvider returns a Provider serving fixed regions per depth. Depths missing from byDepth
// get fallback, which may be nil.
func StaticProvider(byDepth map[int][]*Region, fallback []*Region) Provider {
	regions := make(map[int][]*Region, len(byDepth))
	for depth, list := range byDepth {
		regions[depth] = append([]*Region(nil), list...)
	}
	fallback = append([]*Region(nil), fallback...)
	return func(depth int) []*Region {
		if list, ok := regions[depth]; ok {
			return list
		}
		return fallback
	}
}
