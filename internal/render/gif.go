package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"iter"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/scene"
)

const (
	DefaultFPS = 30.0
	DefaultDPI = 150

	// frames buffered before they are rasterized together
	batchSize = 32
)

// GIF encodes frames as an animated GIF, one GIF frame per scene frame.
type GIF struct {
	FPS float64
	DPI int

	// Progress, when set, is called after each frame is rasterized with the
	// number of frames done and the expected total (0 if unknown).
	Progress func(done, total int)

	log logrus.FieldLogger
}

func NewGIF(fps float64, dpi int) *GIF {
	return &GIF{FPS: fps, DPI: dpi, log: logrus.StandardLogger()}
}

func (g *GIF) SetLogger(l logrus.FieldLogger) { g.log = l }

func (g *GIF) validate() error {
	if !(g.FPS > 0) || math.IsInf(g.FPS, 0) {
		return &dynamo.ParameterError{System: "gif", Param: "fps", Value: g.FPS, Constraint: "positive"}
	}
	if g.DPI <= 0 {
		return &dynamo.ParameterError{System: "gif", Param: "dpi", Value: float64(g.DPI), Constraint: "positive"}
	}
	return nil
}

// Delays returns the per-frame delays in centiseconds for n frames. GIF
// delays are whole centiseconds, so they are spread such that the first k
// frames always last round(100·k/fps) in total.
func Delays(n int, fps float64) []int {
	d := make([]int, n)
	for i := range d {
		d[i] = int(math.Round(float64(i+1)*100/fps) - math.Round(float64(i)*100/fps))
	}
	return d
}

// Export writes frames to w.
func (g *GIF) Export(w io.Writer, layout scene.Layout, frames []scene.Frame) error {
	seq := func(yield func(scene.Frame, error) bool) {
		for _, f := range frames {
			if !yield(f, nil) {
				return
			}
		}
	}
	return g.ExportStream(w, layout, seq, len(frames))
}

// ExportStream rasterizes frames as they are produced. total is only used
// for progress reporting. Nothing is written to w unless every frame was
// rasterized.
func (g *GIF) ExportStream(w io.Writer, layout scene.Layout, frames iter.Seq2[scene.Frame, error], total int) error {
	if err := g.validate(); err != nil {
		return err
	}
	if !(layout.Width > 0 && layout.Height > 0) || !(layout.XMax > layout.XMin) || !(layout.YMax > layout.YMin) {
		return fmt.Errorf("%w: degenerate layout %+v", dynamo.ErrInvalidParameter, layout)
	}

	v := newViewport(layout)
	pal := defaultPalette(layout.Background)
	anim := &gif.GIF{}

	var prev *image.Paletted
	n := 0
	batch := make([]scene.Frame, 0, batchSize)
	flush := func() {
		imgs := g.rasterize(v, layout, pal, batch)
		for _, full := range imgs {
			anim.Image = append(anim.Image, delta(prev, full))
			anim.Disposal = append(anim.Disposal, gif.DisposalNone)
			prev = full
			n++
			if g.Progress != nil {
				g.Progress(n, total)
			}
		}
		batch = batch[:0]
	}

	for f, err := range frames {
		if err != nil {
			return err
		}
		if f.Index != n+len(batch) {
			return fmt.Errorf("frame %d arrived at position %d", f.Index, n+len(batch))
		}
		batch = append(batch, f)
		if len(batch) == batchSize {
			flush()
		}
	}
	if len(batch) > 0 {
		flush()
	}
	if n == 0 {
		return fmt.Errorf("%w: no frames to encode", dynamo.ErrInvalidParameter)
	}

	anim.Delay = Delays(n, g.FPS)
	anim.Config = image.Config{
		ColorModel: prev.Palette,
		Width:      prev.Rect.Dx(),
		Height:     prev.Rect.Dy(),
	}

	g.log.WithFields(logrus.Fields{
		"stage":  "encode",
		"frames": n,
		"width":  anim.Config.Width,
		"height": anim.Config.Height,
	}).Debug("encoding gif")

	return gif.EncodeAll(w, anim)
}

// rasterize draws and quantizes a batch of frames concurrently. Each worker
// owns its quantizer since the color cache is not safe to share.
func (g *GIF) rasterize(v viewport, layout scene.Layout, pal color.Palette, frames []scene.Frame) []*image.Paletted {
	out := make([]*image.Paletted, len(frames))
	parallelFor(len(frames), 4, func(start, end int) {
		q := newQuantizer(pal)
		for i := start; i < end; i++ {
			c := vgimg.NewWith(
				vgimg.UseWH(v.w, v.h),
				vgimg.UseDPI(g.DPI),
				vgimg.UseBackgroundColor(layout.Background),
			)
			drawFrame(c, v, frames[i])
			out[i] = q.quantize(c.Image())
		}
	})
	return out
}
