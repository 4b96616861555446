package scene

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// referenceLength is the rod length the default viewport was drawn for.
const referenceLength = 1.9

type PendulumMapper struct {
	Length float64
}

func NewPendulumMapper(length float64) *PendulumMapper {
	return &PendulumMapper{Length: length}
}

func (m *PendulumMapper) Name() string { return "pendulum" }

func (m *PendulumMapper) Layout() Layout {
	half := 1.1 * m.Length / referenceLength
	return Layout{
		Width: 5, Height: 5,
		XMin: -half, XMax: half,
		YMin: -(m.Length + 0.15), YMax: 0.05,
		Background: Background,
	}
}

// Bob returns the bob position for angle theta measured from the downward
// vertical, with the pivot at the origin.
func (m *PendulumMapper) Bob(theta float64) Point {
	return Point{X: m.Length * math.Sin(theta), Y: -m.Length * math.Cos(theta)}
}

func (m *PendulumMapper) Map(index int, t float64, x dynamo.State) (Frame, error) {
	if err := checkArity(m.Name(), index, x, 2); err != nil {
		return Frame{}, err
	}
	bob := m.Bob(x[0])

	return Frame{
		Index: index,
		Time:  t,
		Shapes: []Shape{
			Line{Points: []Point{{-0.5, 0}, {0.5, 0}}, Color: Ink, Width: 4},
			Line{Points: []Point{{0, 0}, bob}, Color: Link, Width: 4},
			Marker{Center: bob, Size: 38, Fill: Body},
		},
	}, nil
}
