package viz

import (
	"math"
	"strings"

	"github.com/san-kum/kinefig/internal/scene"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in sub-pixel coordinates, origin top left.
// The canvas is (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillRect lights every dot in the inclusive box.
func (c *Canvas) FillRect(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y)
		}
	}
}

// FillDisc lights every dot within r of (cx, cy).
func (c *Canvas) FillDisc(cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Preview draws f on a canvas cols characters wide. The row count follows
// the layout's aspect ratio, counting a character cell as twice as tall as
// it is wide.
func Preview(l scene.Layout, f scene.Frame, cols int) *Canvas {
	rows := int(math.Round(float64(cols) * l.Height / l.Width / 2))
	if rows < 1 {
		rows = 1
	}
	c := NewCanvas(cols, rows)

	dotsX, dotsY := float64(2*cols), float64(4*rows)
	project := func(p scene.Point) (int, int) {
		x := (p.X - l.XMin) / (l.XMax - l.XMin) * (dotsX - 1)
		y := (l.YMax - p.Y) / (l.YMax - l.YMin) * (dotsY - 1)
		return int(math.Round(x)), int(math.Round(y))
	}
	// dots per point of marker size
	scale := dotsX / (l.Width * 72)

	for _, s := range f.Shapes {
		switch s := s.(type) {
		case scene.Line:
			for i := 1; i < len(s.Points); i++ {
				x0, y0 := project(s.Points[i-1])
				x1, y1 := project(s.Points[i])
				c.DrawLine(x0, y0, x1, y1)
			}
		case scene.Rect:
			x0, y0 := project(s.Min)
			x1, y1 := project(s.Max)
			c.FillRect(x0, y0, x1, y1)
		case scene.Marker:
			cx, cy := project(s.Center)
			r := int(math.Round(s.Size / 2 * scale))
			c.FillDisc(cx, cy, max(r, 1))
		}
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
