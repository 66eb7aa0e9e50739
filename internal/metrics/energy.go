package metrics

import (
	"math"

	"github.com/san-kum/odestream/internal/dynamo"
)

// Energy is the mean energy over all observed samples.
type Energy struct {
	h     dynamo.Hamiltonian
	n     int
	total float64
}

func NewEnergy(h dynamo.Hamiltonian) *Energy { return &Energy{h: h} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) OnSample(_ float64, y dynamo.State) {
	e.total += e.h.Energy(y)
	e.n++
}

func (e *Energy) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return e.total / float64(e.n)
}

func (e *Energy) Reset() { *e = Energy{h: e.h} }

// EnergyDrift is the largest deviation of the energy from its value at the
// first observed sample, relative to that value. When the reference energy
// is zero the deviation is absolute. Systems without an energy function
// report zero.
type EnergyDrift struct {
	h      dynamo.Hamiltonian
	ref    float64
	seeded bool
	worst  float64
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	h, _ := dyn.(dynamo.Hamiltonian)
	return &EnergyDrift{h: h}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) OnSample(_ float64, y dynamo.State) {
	if e.h == nil {
		return
	}
	energy := e.h.Energy(y)
	if !e.seeded {
		e.ref, e.seeded = energy, true
		return
	}
	d := math.Abs(energy - e.ref)
	if e.ref != 0 {
		d /= math.Abs(e.ref)
	}
	e.worst = math.Max(e.worst, d)
}

func (e *EnergyDrift) Value() float64 { return e.worst }

func (e *EnergyDrift) Reset() { *e = EnergyDrift{h: e.h} }
