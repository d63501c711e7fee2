// Package regionplot renders recovery plans to image files for offline inspection.
package regionplot

import (
	"image/color"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/pushrecovery/captureregion"
	"go.viam.com/pushrecovery/footstep"
	"go.viam.com/pushrecovery/spatialmath"
)

var (
	stanceColor      = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	reachableColor   = color.RGBA{R: 60, G: 120, B: 220, A: 255}
	captureColor     = color.RGBA{R: 220, G: 140, B: 30, A: 255}
	intersectColor   = color.RGBA{R: 40, G: 170, B: 70, A: 110}
	constraintColor  = color.RGBA{R: 150, G: 60, B: 170, A: 255}
	leftStepColor    = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	rightStepColor   = color.RGBA{R: 30, G: 30, B: 200, A: 255}
	capturePtColor   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	regionLineWidth  = vg.Points(1)
	stepGlyphRadius  = vg.Points(4)
	captureGlyphSize = vg.Points(3)
)

// RenderPlan draws the regions and steps of plan and saves the figure to path. The image format
// follows the file extension, as supported by gonum plot.
func RenderPlan(plan *captureregion.Plan, path string, width, height vg.Length) error {
	if plan == nil {
		return errors.New("cannot render a nil plan")
	}
	p := plot.New()
	p.Title.Text = "recovery plan"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if err := addOutline(p, "stance", plan.StancePolygon, stanceColor); err != nil {
		return err
	}
	for i, depth := range plan.Depths {
		first := i == 0
		if err := addOutline(p, legendName(first, "reachable"), depth.ReachableRegion, reachableColor); err != nil {
			return err
		}
		if err := addOutline(p, legendName(first, "capture"), depth.CaptureRegion, captureColor); err != nil {
			return err
		}
		for _, constrained := range depth.ConstrainedReachableRegions {
			if err := addOutline(p, legendName(first, "constrained"), constrained, constraintColor); err != nil {
				return err
			}
		}
		if err := addFilled(p, legendName(first, "target"), depth.ConstrainedCaptureRegion, intersectColor); err != nil {
			return err
		}
	}

	capturePoints := make(plotter.XYs, 0, len(plan.Depths)+1)
	capturePoints = append(capturePoints, xy(plan.InitialICP))
	for _, depth := range plan.Depths {
		capturePoints = append(capturePoints, xy(depth.CapturePoint))
	}
	scatter, err := plotter.NewScatter(capturePoints)
	if err != nil {
		return errors.Wrap(err, "cannot plot capture points")
	}
	scatter.GlyphStyle = draw.GlyphStyle{Color: capturePtColor, Radius: captureGlyphSize, Shape: draw.CrossGlyph{}}
	p.Add(scatter)
	p.Legend.Add("capture point", scatter)

	for _, side := range footstep.Sides {
		steps := make(plotter.XYs, 0, len(plan.Steps))
		for _, step := range plan.Steps {
			if step.Footstep.Side == side {
				steps = append(steps, xy(step.Footstep.Position()))
			}
		}
		if len(steps) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(steps)
		if err != nil {
			return errors.Wrapf(err, "cannot plot %s steps", side)
		}
		stepColor := leftStepColor
		if side == footstep.Right {
			stepColor = rightStepColor
		}
		scatter.GlyphStyle = draw.GlyphStyle{Color: stepColor, Radius: stepGlyphRadius, Shape: draw.CircleGlyph{}}
		p.Add(scatter)
		p.Legend.Add(side.String()+" step", scatter)
	}

	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "cannot save plan figure to %q", path)
	}
	return nil
}

func addOutline(p *plot.Plot, name string, polygon *spatialmath.ConvexPolygon, c color.Color) error {
	poly, err := newPolygon(polygon)
	if poly == nil || err != nil {
		return err
	}
	poly.Color = nil
	poly.LineStyle.Color = c
	poly.LineStyle.Width = regionLineWidth
	p.Add(poly)
	if name != "" {
		p.Legend.Add(name, poly)
	}
	return nil
}

func addFilled(p *plot.Plot, name string, polygon *spatialmath.ConvexPolygon, c color.Color) error {
	poly, err := newPolygon(polygon)
	if poly == nil || err != nil {
		return err
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	p.Add(poly)
	if name != "" {
		p.Legend.Add(name, poly)
	}
	return nil
}

// newPolygon returns nil for polygons that have no area to draw.
func newPolygon(polygon *spatialmath.ConvexPolygon) (*plotter.Polygon, error) {
	if polygon == nil || polygon.NumVertices() < 3 {
		return nil, nil
	}
	ring := make(plotter.XYs, 0, polygon.NumVertices())
	for _, v := range polygon.Vertices() {
		ring = append(ring, xy(v))
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, errors.Wrap(err, "cannot plot polygon")
	}
	return poly, nil
}

// legendName only names the regions of the first depth, so the legend lists each kind once.
func legendName(first bool, name string) string {
	if !first {
		return ""
	}
	return name
}

func xy(pt r2.Point) plotter.XY {
	return plotter.XY{X: pt.X, Y: pt.Y}
}
