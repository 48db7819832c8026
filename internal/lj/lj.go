// Package lj is the standard force field for the engine: the
// Lennard-Jones potential in reduced units (sigma = 1, epsilon = 1),
// cut and shifted at a fixed radius, with the minimum-image convention
// adapted to Lees-Edwards sheared boundaries.
package lj

import (
	"math"

	"github.com/san-kum/shearmd/internal/system"
)

// A pair closer than 1/sqrt(sr2Overlap) in reduced units is flagged as
// core overlap: the configuration is outside what the potential model
// can represent.
const sr2Overlap = 1.77

// Field is a cut-and-shifted Lennard-Jones evaluator. Cutoff is the
// cutoff radius in reduced units, fixed for the run.
type Field struct {
	Cutoff float64
}

func New(cutoff float64) *Field { return &Field{Cutoff: cutoff} }

// Evaluate recomputes all pair forces for the current positions and
// strain, writing the force array of s and returning the interaction
// totals. Pure in the sense of the force-field contract: the same
// positions, box and strain always give the same result.
func (f *Field) Evaluate(s *system.State) system.Interaction {
	n := s.N()
	box := s.Box
	boxSq := box * box
	rCutBoxSq := (f.Cutoff / box) * (f.Cutoff / box)

	// Pair potential at the cutoff, subtracted from every included pair.
	sr2Cut := 1.0 / (f.Cutoff * f.Cutoff)
	sr6Cut := sr2Cut * sr2Cut * sr2Cut
	potCut := sr6Cut*sr6Cut - sr6Cut

	for i := range s.F {
		s.F[i] = system.Vec3{}
	}

	var total system.Interaction

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			rij := s.R[i].Sub(s.R[j])

			// Lees-Edwards minimum image: rows offset in y are shifted
			// laterally by the accumulated strain, then the ordinary
			// component-wise wrap.
			rij[0] -= math.Round(rij[1]) * s.Strain
			rij[0] -= math.Round(rij[0])
			rij[1] -= math.Round(rij[1])
			rij[2] -= math.Round(rij[2])

			rijSq := rij.NormSq()
			if rijSq >= rCutBoxSq {
				continue
			}

			rijSq *= boxSq
			rij = rij.Scale(box)

			sr2 := 1.0 / rijSq
			if sr2 > sr2Overlap {
				total.Overlap = true
			}
			sr6 := sr2 * sr2 * sr2
			sr12 := sr6 * sr6

			cut := sr12 - sr6
			vir := cut + sr12
			lap := (22.0*sr12 - 5.0*sr6) * sr2
			fij := rij.Scale(vir * sr2)

			total.Cut += cut
			total.Pot += cut - potCut
			total.Vir += vir
			total.Lap += lap
			s.F[i] = s.F[i].Add(fij)
			s.F[j] = s.F[j].Sub(fij)
		}
	}

	// Units: energies in epsilon, virial per dimension, forces in
	// epsilon/sigma.
	total.Cut *= 4.0
	total.Pot *= 4.0
	total.Vir *= 24.0 / 3.0
	total.Lap *= 24.0 * 2.0
	for i := range s.F {
		s.F[i] = s.F[i].Scale(24.0)
	}

	return total
}

// PotentialLRC is the long-range correction to the potential energy per
// particle, assuming uniform density beyond the cutoff.
func PotentialLRC(density, cutoff float64) float64 {
	sr3 := 1.0 / (cutoff * cutoff * cutoff)
	return math.Pi * ((8.0/9.0)*sr3*sr3*sr3 - (8.0/3.0)*sr3) * density
}

// PressureLRC is the long-range correction to the pressure.
func PressureLRC(density, cutoff float64) float64 {
	sr3 := 1.0 / (cutoff * cutoff * cutoff)
	return math.Pi * ((32.0/9.0)*sr3*sr3*sr3 - (16.0/3.0)*sr3) * density * density
}
