package render

import (
	"math"

	"gonum.org/v1/plot/vg"

	"github.com/san-kum/kinefig/internal/scene"
)

// viewport maps world coordinates of a layout onto a canvas of size w×h.
type viewport struct {
	layout scene.Layout
	w, h   vg.Length
}

func newViewport(l scene.Layout) viewport {
	return viewport{
		layout: l,
		w:      vg.Length(l.Width) * vg.Inch,
		h:      vg.Length(l.Height) * vg.Inch,
	}
}

func (v viewport) point(p scene.Point) vg.Point {
	l := v.layout
	return vg.Point{
		X: vg.Length((p.X-l.XMin)/(l.XMax-l.XMin)) * v.w,
		Y: vg.Length((p.Y-l.YMin)/(l.YMax-l.YMin)) * v.h,
	}
}

// drawFrame paints the background and then every shape in order, so later
// shapes cover earlier ones.
func drawFrame(c vg.Canvas, v viewport, f scene.Frame) {
	var bg vg.Path
	bg.Move(vg.Point{})
	bg.Line(vg.Point{X: v.w})
	bg.Line(vg.Point{X: v.w, Y: v.h})
	bg.Line(vg.Point{Y: v.h})
	bg.Close()
	c.SetColor(v.layout.Background)
	c.Fill(bg)

	for _, s := range f.Shapes {
		switch s := s.(type) {
		case scene.Line:
			if len(s.Points) < 2 {
				continue
			}
			var p vg.Path
			p.Move(v.point(s.Points[0]))
			for _, pt := range s.Points[1:] {
				p.Line(v.point(pt))
			}
			c.SetLineWidth(vg.Points(s.Width))
			c.SetColor(s.Color)
			c.Stroke(p)

		case scene.Rect:
			lo, hi := v.point(s.Min), v.point(s.Max)
			var p vg.Path
			p.Move(lo)
			p.Line(vg.Point{X: hi.X, Y: lo.Y})
			p.Line(hi)
			p.Line(vg.Point{X: lo.X, Y: hi.Y})
			p.Close()
			c.SetColor(s.Fill)
			c.Fill(p)

		case scene.Marker:
			ctr := v.point(s.Center)
			r := vg.Points(s.Size / 2)
			var p vg.Path
			p.Move(vg.Point{X: ctr.X + r, Y: ctr.Y})
			p.Arc(ctr, r, 0, 2*math.Pi)
			p.Close()
			c.SetColor(s.Fill)
			c.Fill(p)
		}
	}
}
