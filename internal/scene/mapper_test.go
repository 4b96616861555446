package scene

import (
	"math"
	"testing"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappers() []Mapper {
	return []Mapper{
		NewSpringMassMapper(),
		NewPendulumMapper(1.9),
		NewBouncingBallMapper(1, 20, 5),
	}
}

func TestMap_Deterministic(t *testing.T) {
	for _, m := range mappers() {
		t.Run(m.Name(), func(t *testing.T) {
			x := dynamo.State{0.37, -1.2}
			a, err := m.Map(7, 0.35, x)
			require.NoError(t, err)
			b, err := m.Map(7, 0.35, x.Clone())
			require.NoError(t, err)

			assert.Equal(t, a, b)
			assert.Equal(t, 7, a.Index)
			assert.Equal(t, 0.35, a.Time)
		})
	}
}

func TestMap_DoesNotShareGeometry(t *testing.T) {
	m := NewSpringMassMapper()
	a, _ := m.Map(0, 0, dynamo.State{0.5, 0})
	b, _ := m.Map(0, 0, dynamo.State{0.5, 0})

	a.Shapes[3].(Line).Points[0].X = 99
	assert.NotEqual(t, 99.0, b.Shapes[3].(Line).Points[0].X)
}

func TestMap_RejectsArity(t *testing.T) {
	for _, m := range mappers() {
		for _, x := range []dynamo.State{{}, {1}, {1, 2, 3}} {
			_, err := m.Map(3, 0, x)
			assert.ErrorIs(t, err, dynamo.ErrGeometryMapping, "%s with %v", m.Name(), x)

			var me *dynamo.MappingError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, len(x), me.Got)
			assert.Equal(t, 2, me.Want)
			assert.Equal(t, 3, me.Index)
		}
	}
}

func TestSpringPath_Endpoints(t *testing.T) {
	m := NewSpringMassMapper()
	path := m.SpringPath(0.75)

	require.Len(t, path, m.Coils*m.SamplesPerCoil)
	assert.Equal(t, m.WallX, path[0].X)
	assert.InDelta(t, 0.75, path[len(path)-1].X, 1e-12)
	for _, p := range path {
		assert.LessOrEqual(t, math.Abs(p.Y-0.25), m.Amplitude+1e-12)
	}
}

func TestSpringPath_Degenerate(t *testing.T) {
	m := NewSpringMassMapper()

	// block face exactly at the wall anchor
	f, err := m.Map(0, 0, dynamo.State{m.WallX + m.MassWidth/2, 0})
	require.NoError(t, err)

	spring := f.Shapes[3].(Line)
	require.NotEmpty(t, spring.Points)
	for _, p := range spring.Points {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), "NaN in degenerate spring")
		assert.Equal(t, m.WallX, p.X)
	}
}

func TestSpringMassMapper_BlockPlacement(t *testing.T) {
	m := NewSpringMassMapper()
	f, err := m.Map(0, 0, dynamo.State{1.0, 0})
	require.NoError(t, err)

	block := f.Shapes[2].(Rect)
	assert.Equal(t, Point{0.75, 0}, block.Min)
	assert.Equal(t, Point{1.25, 0.5}, block.Max)
}

func TestPendulumMapper_Bob(t *testing.T) {
	m := NewPendulumMapper(1.9)

	f, err := m.Map(0, 0, dynamo.State{-math.Pi / 6, 0})
	require.NoError(t, err)

	bob := f.Shapes[2].(Marker).Center
	assert.InDelta(t, -0.95, bob.X, 1e-12)
	assert.InDelta(t, -1.9*math.Cos(math.Pi/6), bob.Y, 1e-12)

	rod := f.Shapes[1].(Line)
	assert.Equal(t, Point{0, 0}, rod.Points[0])
	assert.Equal(t, bob, rod.Points[1])
}

func TestPendulumMapper_LayoutContainsSwing(t *testing.T) {
	m := NewPendulumMapper(1.9)
	l := m.Layout()

	assert.InDelta(t, -1.1, l.XMin, 1e-12)
	assert.InDelta(t, -2.05, l.YMin, 1e-12)
	assert.Equal(t, l.Width, l.Height)
}

func TestBouncingBallMapper_HorizontalFromTime(t *testing.T) {
	m := NewBouncingBallMapper(1.5, 20, 5)

	f, err := m.Map(10, 2.0, dynamo.State{3.2, -1})
	require.NoError(t, err)

	ball := f.Shapes[1].(Marker).Center
	assert.InDelta(t, 3.0, ball.X, 1e-12)
	assert.Equal(t, 3.2, ball.Y)

	l := m.Layout()
	assert.InDelta(t, 1.5*20+0.6, l.XMax, 1e-12)
	assert.InDelta(t, 5.6, l.YMax, 1e-12)
}

func TestMapTrajectory(t *testing.T) {
	traj := &dynamo.Trajectory{
		Times:  []float64{0, 0.1, 0.2},
		States: []dynamo.State{{0, 0}, {0.1, 0}, {0.2, 0}},
	}

	frames, err := MapTrajectory(NewPendulumMapper(1), traj)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, traj.Times[i], f.Time)
	}

	traj.States[1] = dynamo.State{0.1}
	frames, err = MapTrajectory(NewPendulumMapper(1), traj)
	assert.ErrorIs(t, err, dynamo.ErrGeometryMapping)
	assert.Nil(t, frames)
}
