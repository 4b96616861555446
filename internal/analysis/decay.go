package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// Peaks returns the indices of strict local maxima of data.
func Peaks(data []float64) []int {
	var idx []int
	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] >= data[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}

// LogDecrement is the mean logarithmic decrement ln(A_k / A_k+1) between
// successive positive maxima of coordinate idx. Zero means no measurable
// decay. Fewer than two positive maxima is an error.
func LogDecrement(traj *dynamo.Trajectory, idx int) (float64, error) {
	if traj.Len() == 0 || idx < 0 || idx >= len(traj.States[0]) {
		return 0, fmt.Errorf("%w: coordinate %d out of range", dynamo.ErrDimensionMismatch, idx)
	}

	col := traj.Column(idx)
	var amps []float64
	for _, i := range Peaks(col) {
		if col[i] > 0 {
			amps = append(amps, col[i])
		}
	}
	if len(amps) < 2 {
		return 0, fmt.Errorf("%w: need two positive maxima, found %d", dynamo.ErrInvalidParameter, len(amps))
	}

	sum := 0.0
	for k := 1; k < len(amps); k++ {
		sum += math.Log(amps[k-1] / amps[k])
	}
	return sum / float64(len(amps)-1), nil
}

// DampingRatio converts a logarithmic decrement to the damping ratio of a
// linear oscillator.
func DampingRatio(delta float64) float64 {
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta)
}
