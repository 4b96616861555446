package render

import (
	"io"

	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/kinefig/internal/scene"
)

// SVG writes a single frame as a vector still, for print figures.
type SVG struct{}

func (SVG) Export(w io.Writer, layout scene.Layout, f scene.Frame) error {
	v := newViewport(layout)
	c := vgsvg.New(v.w, v.h)
	drawFrame(c, v, f)
	_, err := c.WriteTo(w)
	return err
}
