package scene

import "github.com/san-kum/kinefig/internal/dynamo"

// BouncingBallMapper composes the integrated height with uniform horizontal
// motion x = v_x·t; the horizontal coordinate is never part of the state.
type BouncingBallMapper struct {
	HorizontalVelocity float64
	Horizon            float64
	InitialHeight      float64
	Floor              float64
}

func NewBouncingBallMapper(vx, horizon, y0 float64) *BouncingBallMapper {
	return &BouncingBallMapper{
		HorizontalVelocity: vx,
		Horizon:            horizon,
		InitialHeight:      y0,
		Floor:              -0.6,
	}
}

func (m *BouncingBallMapper) Name() string { return "bouncing_ball" }

func (m *BouncingBallMapper) Layout() Layout {
	return Layout{
		Width: 9, Height: 3,
		XMin: -0.4, XMax: m.HorizontalVelocity*m.Horizon + 0.6,
		YMin: m.Floor, YMax: m.InitialHeight + 0.6,
		Background: Background,
	}
}

func (m *BouncingBallMapper) Map(index int, t float64, x dynamo.State) (Frame, error) {
	if err := checkArity(m.Name(), index, x, 2); err != nil {
		return Frame{}, err
	}
	l := m.Layout()

	return Frame{
		Index: index,
		Time:  t,
		Shapes: []Shape{
			Line{Points: []Point{{l.XMin, m.Floor}, {l.XMax, m.Floor}}, Color: Ink, Width: 9},
			Marker{Center: Point{X: m.HorizontalVelocity * t, Y: x[0]}, Size: 32, Fill: Body},
		},
	}, nil
}
