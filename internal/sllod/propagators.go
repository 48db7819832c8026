// Package sllod implements the SLLOD equations of motion with a Gaussian
// isokinetic thermostat under Lees-Edwards boundaries, split into three
// exactly-solvable propagators composed in a palindromic order. Each
// propagator is the closed-form solution of its segment of the dynamics,
// so the whole step is time-reversible and holds the total squared
// velocity constant to rounding error.
package sllod

import (
	"errors"
	"math"

	"github.com/san-kum/shearmd/internal/system"
)

var (
	// ErrZeroKinetic is returned when every velocity is zero; the
	// isokinetic constraint is undefined there.
	ErrZeroKinetic = errors.New("sllod: zero total kinetic energy")

	// ErrDegenerate is returned when the force array is exactly aligned
	// with the velocities (alpha == beta), where the closed-form force
	// update has no solution.
	ErrDegenerate = errors.New("sllod: force/velocity alignment degeneracy")

	// ErrOverlap is returned when the force field reports core overlap.
	ErrOverlap = errors.New("sllod: core overlap")
)

// Drift is the A propagator: advance positions by t under the shear flow
// and the free streaming, advance the strain accumulator, and restore the
// periodic-image invariant. The shear coupling acts on x through the
// current y coordinate before the drift, matching the operator ordering
// of the splitting.
func Drift(s *system.State, t float64) {
	x := t * s.StrainRate
	invBox := 1.0 / s.Box
	for i := range s.R {
		s.R[i][0] += x * s.R[i][1]
		s.R[i][0] += t * s.V[i][0] * invBox
		s.R[i][1] += t * s.V[i][1] * invBox
		s.R[i][2] += t * s.V[i][2] * invBox
	}
	s.Strain += x
	s.Wrap()
}

// ShearKick is the B1 propagator: the shear-coupling velocity kick
// followed by the exact global rescale that restores the pre-kick value
// of the total squared velocity. The rescale factor is algebraically
// exact for the quadratic form, not an approximation.
func ShearKick(s *system.State, t float64) error {
	sum := s.SumVSq()
	if sum <= 0 {
		return ErrZeroKinetic
	}

	x := t * s.StrainRate
	cross, ySq := 0.0, 0.0
	for i := range s.V {
		cross += s.V[i][0] * s.V[i][1]
		ySq += s.V[i][1] * s.V[i][1]
	}
	c1 := x * cross / sum
	c2 := x * x * ySq / sum
	g := 1.0 / math.Sqrt(1.0-2.0*c1+c2)

	for i := range s.V {
		s.V[i][0] -= x * s.V[i][1]
		s.V[i] = s.V[i].Scale(g)
	}
	return nil
}

// ForceKick is the B2 propagator: the exact solution over time t of
// dv/dt = f - zeta(t) v with zeta the Lagrange multiplier of the
// isokinetic constraint, for the force array currently stored in the
// state. The integration is in closed form, not stepped, so it conserves
// the total squared velocity for any t and is reversible in t.
//
// A zero force array is the free limit (zeta = 0) and leaves the
// velocities untouched.
func ForceKick(s *system.State, t float64) error {
	sum := s.SumVSq()
	if sum <= 0 {
		return ErrZeroKinetic
	}

	fv, fSq := 0.0, 0.0
	for i := range s.V {
		fv += s.F[i].Dot(s.V[i])
		fSq += s.F[i].NormSq()
	}
	if fSq == 0 {
		return nil
	}

	alpha := fv / sum
	beta := math.Sqrt(fSq / sum)
	if alpha == beta {
		return ErrDegenerate
	}

	h := (alpha + beta) / (alpha - beta)
	e := math.Exp(-beta * t)
	dtFactor := (1 + h - e - h/e) / ((1 - h) * beta)
	prefactor := (1 - h) / (e - h/e)

	for i := range s.V {
		s.V[i] = s.V[i].Add(s.F[i].Scale(dtFactor)).Scale(prefactor)
	}
	return nil
}
