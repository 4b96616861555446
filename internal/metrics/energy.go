package metrics

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// Energy reports the mean mechanical energy over the observed states.
type Energy struct {
	name        string
	sys         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(sys dynamo.Hamiltonian) *Energy {
	return &Energy{
		name: "energy",
		sys:  sys,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	e.totalEnergy += e.sys.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the initial energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	sys           dynamo.Hamiltonian
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyGain is the largest increase in energy between consecutive samples,
// relative to the initial energy. A damped system should keep it at
// integration noise.
type EnergyGain struct {
	name    string
	sys     dynamo.Hamiltonian
	initial float64
	last    float64
	maxGain float64
	samples int
}

func NewEnergyGain(sys dynamo.Hamiltonian) *EnergyGain {
	return &EnergyGain{
		name: "energy_gain",
		sys:  sys,
	}
}

func (e *EnergyGain) Name() string { return e.name }

func (e *EnergyGain) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	} else if e.initial != 0 {
		e.maxGain = math.Max(e.maxGain, (energy-e.last)/math.Abs(e.initial))
	}
	e.last = energy
	e.samples++
}

func (e *EnergyGain) Value() float64 {
	return e.maxGain
}

func (e *EnergyGain) Reset() {
	e.initial = 0
	e.last = 0
	e.maxGain = 0
	e.samples = 0
}
