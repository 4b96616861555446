package scene

import (
	"image/color"

	"github.com/san-kum/kinefig/internal/dynamo"
)

var (
	Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Ink        = color.RGBA{A: 0xff}
	Body       = color.RGBA{R: 0x05, G: 0x87, B: 0x43, A: 0xff}
	Link       = color.RGBA{R: 0x71, G: 0x70, B: 0x6e, A: 0xff}
)

type Point struct {
	X, Y float64
}

// Shape is one of Line, Rect or Marker.
type Shape interface {
	shape()
}

// Line is an open polyline. Width is in points.
type Line struct {
	Points []Point
	Color  color.RGBA
	Width  float64
}

// Rect is a filled axis-aligned rectangle.
type Rect struct {
	Min, Max Point
	Fill     color.RGBA
}

// Marker is a filled disc whose diameter is given in points, so it keeps
// its printed size whatever the axis scaling.
type Marker struct {
	Center Point
	Size   float64
	Fill   color.RGBA
}

func (Line) shape()   {}
func (Rect) shape()   {}
func (Marker) shape() {}

type Frame struct {
	Index  int
	Time   float64
	Shapes []Shape
}

// Layout is the viewport of a figure: physical size in inches and the
// world-coordinate window mapped onto it.
type Layout struct {
	Width, Height float64
	XMin, XMax    float64
	YMin, YMax    float64
	Background    color.RGBA
}

type Mapper interface {
	Name() string
	Layout() Layout
	Map(index int, t float64, x dynamo.State) (Frame, error)
}

// MapTrajectory maps every accepted state in order. It fails on the first
// state the mapper rejects and returns no frames in that case.
func MapTrajectory(m Mapper, traj *dynamo.Trajectory) ([]Frame, error) {
	frames := make([]Frame, 0, traj.Len())
	for i, x := range traj.States {
		f, err := m.Map(i, traj.Times[i], x)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func checkArity(mapper string, index int, x dynamo.State, want int) error {
	if len(x) != want {
		return &dynamo.MappingError{Mapper: mapper, Index: index, Got: len(x), Want: want}
	}
	return nil
}
