// Package observe derives the reportable thermodynamic quantities from
// the particle state and the interaction totals of the latest force
// evaluation, and accumulates their block and run averages. Computation
// is pure; reporting is left to whoever consumes a Sink.
package observe

import "github.com/san-kum/shearmd/internal/system"

// LRC is an analytic long-range correction, a pure function of density
// and cutoff radius.
type LRC func(density, cutoff float64) float64

// Set is one step's worth of observables.
type Set struct {
	EnergyShifted   float64 // E/N, cut-and-shifted potential
	EnergyFull      float64 // E/N including the long-range correction
	PressureShifted float64
	PressureFull    float64
	TempKinetic     float64
	TempConfig      float64
}

// Names lists the observables in Values order, used for CSV headers and
// report tables.
var Names = []string{"e_s", "e_f", "p_s", "p_f", "t_k", "t_c"}

func (s Set) Values() [6]float64 {
	return [6]float64{
		s.EnergyShifted, s.EnergyFull,
		s.PressureShifted, s.PressureFull,
		s.TempKinetic, s.TempConfig,
	}
}

func fromValues(v [6]float64) Set {
	return Set{
		EnergyShifted: v[0], EnergyFull: v[1],
		PressureShifted: v[2], PressureFull: v[3],
		TempKinetic: v[4], TempConfig: v[5],
	}
}

// Compute derives the observable set for the current state. The kinetic
// temperature uses 3N-3 degrees of freedom, accounting for the conserved
// total momentum removed at setup. The configurational temperature is
// the ratio of the total squared force to the total force Laplacian. The
// long-range corrections are supplied by the caller so the calculator
// stays agnostic of the potential model.
func Compute(s *system.State, inter system.Interaction, cutoff float64, potLRC, prsLRC LRC) Set {
	n := float64(s.N())
	vol := s.Box * s.Box * s.Box
	density := s.Density()
	kin := s.KineticEnergy()

	tKin := 2.0 * kin / (3.0*n - 3.0)
	pS := density*tKin + inter.Vir/vol

	return Set{
		EnergyShifted:   (kin + inter.Pot) / n,
		EnergyFull:      (kin+inter.Cut)/n + potLRC(density, cutoff),
		PressureShifted: pS,
		PressureFull:    pS + prsLRC(density, cutoff),
		TempKinetic:     tKin,
		TempConfig:      s.SumFSq() / inter.Lap,
	}
}

// Sink receives observables as the run produces them. OnStep fires once
// per integration step, OnBlock once per block with the block means.
type Sink interface {
	OnStep(t float64, s Set)
	OnBlock(block int, mean Set)
}
