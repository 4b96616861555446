package scene

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// SpringMassMapper draws a block on a floor tied to a wall by a coil. The
// coil is a sinusoid with a fixed number of turns stretched between the wall
// anchor and the block's left face.
type SpringMassMapper struct {
	WallX          float64
	Floor          float64
	MassWidth      float64
	MassHeight     float64
	Coils          int
	SamplesPerCoil int
	Amplitude      float64
}

func NewSpringMassMapper() *SpringMassMapper {
	return &SpringMassMapper{
		WallX:          -1.5,
		Floor:          0,
		MassWidth:      0.5,
		MassHeight:     0.5,
		Coils:          20,
		SamplesPerCoil: 20,
		Amplitude:      0.05,
	}
}

func (m *SpringMassMapper) Name() string { return "spring_mass" }

func (m *SpringMassMapper) Layout() Layout {
	return Layout{
		Width: 9, Height: 1.5,
		XMin: m.WallX - 0.01, XMax: -m.WallX + 0.01,
		YMin: m.Floor - 0.01, YMax: m.Floor + m.MassHeight + 0.01,
		Background: Background,
	}
}

// SpringPath samples the coil from the wall to face. A zero-length coil
// (face == WallX) collapses to a vertical run of points at the wall.
func (m *SpringMassMapper) SpringPath(face float64) []Point {
	n := m.Coils * m.SamplesPerCoil
	if n < 2 {
		n = 2
	}
	xs := floats.Span(make([]float64, n), m.WallX, face)
	phase := floats.Span(make([]float64, n), 0, float64(m.Coils)*math.Pi)

	mid := m.Floor + m.MassHeight/2
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: xs[i], Y: m.Amplitude*math.Sin(phase[i]) + mid}
	}
	return pts
}

func (m *SpringMassMapper) Map(index int, t float64, x dynamo.State) (Frame, error) {
	if err := checkArity(m.Name(), index, x, 2); err != nil {
		return Frame{}, err
	}
	pos := x[0]
	half := m.MassWidth / 2

	return Frame{
		Index: index,
		Time:  t,
		Shapes: []Shape{
			Line{Points: []Point{{m.WallX, m.Floor}, {m.WallX, m.Floor + 1}}, Color: Ink, Width: 4},
			Line{Points: []Point{{m.WallX, m.Floor}, {-m.WallX, m.Floor}}, Color: Ink, Width: 4},
			Rect{Min: Point{pos - half, m.Floor}, Max: Point{pos + half, m.Floor + m.MassHeight}, Fill: Body},
			Line{Points: m.SpringPath(pos - half), Color: Link, Width: 3},
		},
	}, nil
}
