package render

import (
	"image"
	"image/color"

	"github.com/san-kum/kinefig/internal/scene"
)

// blendLevels is the number of anti-aliasing shades kept per ink.
const blendLevels = 63

// figurePalette holds the background and, for every ink a figure uses,
// the shades between background and ink that anti-aliased edges produce.
func figurePalette(bg color.RGBA, inks ...color.RGBA) color.Palette {
	p := color.Palette{bg}
	for _, ink := range inks {
		for k := 1; k <= blendLevels; k++ {
			a := float64(k) / blendLevels
			p = append(p, color.RGBA{
				R: mix(bg.R, ink.R, a),
				G: mix(bg.G, ink.G, a),
				B: mix(bg.B, ink.B, a),
				A: 0xff,
			})
		}
	}
	return p
}

func defaultPalette(bg color.RGBA) color.Palette {
	return figurePalette(bg, scene.Ink, scene.Body, scene.Link)
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t + 0.5)
}

// quantizer maps rasterized pixels onto a fixed palette. Figures contain
// few distinct colors, so the nearest-color lookup is cached.
type quantizer struct {
	palette color.Palette
	cache   map[color.RGBA]uint8
}

func newQuantizer(p color.Palette) *quantizer {
	return &quantizer{palette: p, cache: make(map[color.RGBA]uint8)}
}

func (q *quantizer) index(c color.RGBA) uint8 {
	if i, ok := q.cache[c]; ok {
		return i
	}
	i := uint8(q.palette.Index(c))
	q.cache[c] = i
	return i
}

func (q *quantizer) quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), q.palette)

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*b.Dx()]
			out := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
			for x := range out {
				out[x] = q.index(color.RGBA{R: row[4*x], G: row[4*x+1], B: row[4*x+2], A: row[4*x+3]})
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			dst.Pix[y*dst.Stride+x] = q.index(c)
		}
	}
	return dst
}

// delta returns the part of next that differs from prev, as a standalone
// image positioned at its offset in the full frame. A frame identical to
// its predecessor still yields a one-pixel image so the frame count and
// timing are kept.
func delta(prev, next *image.Paletted) *image.Paletted {
	if prev == nil {
		return next
	}

	b := next.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		po := prev.PixOffset(b.Min.X, y)
		no := next.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if prev.Pix[po+x] == next.Pix[no+x] {
				continue
			}
			px := b.Min.X + x
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX {
		minX, minY, maxX, maxY = b.Min.X, b.Min.Y, b.Min.X, b.Min.Y
	}
	r := image.Rect(minX, minY, maxX+1, maxY+1)

	out := image.NewPaletted(r, next.Palette)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(out.Pix[out.PixOffset(r.Min.X, y):out.PixOffset(r.Max.X, y)],
			next.Pix[next.PixOffset(r.Min.X, y):next.PixOffset(r.Max.X, y)])
	}
	return out
}
