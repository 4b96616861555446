package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// Spectrum is a one-sided power spectrum. Freqs[i] is in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of data, applies a Hann window and returns
// the power of every non-negative frequency bin for sample spacing dt.
func PowerSpectrum(data []float64, dt float64) (*Spectrum, error) {
	n := len(data)
	if n < 4 {
		return nil, fmt.Errorf("%w: spectrum needs at least 4 samples, got %d", dynamo.ErrInvalidParameter, n)
	}
	if !(dt > 0) {
		return nil, &dynamo.ParameterError{System: "spectrum", Param: "dt", Value: dt, Constraint: "positive"}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	s := &Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[i])
		s.Power[i] = a * a
	}
	return s, nil
}

// Peak returns the frequency of the strongest non-DC bin, refined by a
// parabola through it and its neighbours.
func (s *Spectrum) Peak() float64 {
	best := 1
	for i := 2; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[best] {
			best = i
		}
	}
	if best == 0 || best >= len(s.Power)-1 {
		return s.Freqs[best]
	}

	a, b, c := s.Power[best-1], s.Power[best], s.Power[best+1]
	den := a - 2*b + c
	if den == 0 {
		return s.Freqs[best]
	}
	shift := 0.5 * (a - c) / den
	step := s.Freqs[1] - s.Freqs[0]
	return s.Freqs[best] + shift*step
}

// DominantFrequency is the spectral peak of coordinate idx of traj, in Hz.
func DominantFrequency(traj *dynamo.Trajectory, idx int) (float64, error) {
	if traj.Len() < 2 {
		return 0, fmt.Errorf("%w: trajectory has %d samples", dynamo.ErrInvalidParameter, traj.Len())
	}
	if idx < 0 || idx >= len(traj.States[0]) {
		return 0, fmt.Errorf("%w: coordinate %d out of range", dynamo.ErrDimensionMismatch, idx)
	}

	s, err := PowerSpectrum(traj.Column(idx), traj.Times[1]-traj.Times[0])
	if err != nil {
		return 0, err
	}
	if isFlat(s.Power) {
		return 0, nil
	}
	return s.Peak(), nil
}

func isFlat(p []float64) bool {
	for _, v := range p {
		if v > 1e-24 && !math.IsNaN(v) {
			return false
		}
	}
	return true
}
