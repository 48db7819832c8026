package sllod

import (
	"fmt"

	"github.com/san-kum/shearmd/internal/system"
)

// ForceField evaluates forces for the current positions and strain. It
// must be a pure function of the stored positions, the box, its own
// cutoff, and the strain: it writes the force array of the state and
// returns the interaction totals, touching nothing else.
type ForceField interface {
	Evaluate(s *system.State) system.Interaction
}

// Stepper advances a state by one reversible SLLOD step. The propagator
// sequence is fixed and symmetric:
//
//	A(dt/2)  B1(dt/2)  [force]  B2(dt)  B1(dt/2)  A(dt/2)
//
// with exactly one force evaluation per step, taken at the mid-step
// positions and strain.
type Stepper struct {
	dt    float64
	field ForceField
}

func NewStepper(dt float64, field ForceField) *Stepper {
	return &Stepper{dt: dt, field: field}
}

func (st *Stepper) Dt() float64 { return st.dt }

// Step performs one full integration step in place. The returned
// interaction totals refer to the mid-step force evaluation and are what
// the observable calculator consumes for this step. An overlap report
// from the force field aborts the step with ErrOverlap; the numerical
// degeneracies of the propagators are passed through as fatal errors.
func (st *Stepper) Step(s *system.State) (system.Interaction, error) {
	half := 0.5 * st.dt

	Drift(s, half)
	if err := ShearKick(s, half); err != nil {
		return system.Interaction{}, err
	}

	inter := st.field.Evaluate(s)
	if inter.Overlap {
		return inter, ErrOverlap
	}

	if err := ForceKick(s, st.dt); err != nil {
		return inter, fmt.Errorf("force propagator: %w", err)
	}
	if err := ShearKick(s, half); err != nil {
		return inter, err
	}
	Drift(s, half)

	return inter, nil
}
