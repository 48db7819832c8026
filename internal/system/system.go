// Package system holds the mutable particle state evolved by the
// integration engine: positions, velocities, forces, and the accumulated
// Lees-Edwards strain. Positions are stored in box units (each component
// nominally in [-0.5, 0.5)); velocities and forces are in physical units
// with unit mass.
package system

import "math"

type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3    { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) Sub(w Vec3) Vec3    { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v[0] * f, v[1] * f, v[2] * f} }
func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }
func (v Vec3) NormSq() float64    { return v.Dot(v) }

// Interaction aggregates what one full force evaluation reports about the
// current configuration. Pot is the cut-and-shifted potential, Cut the
// cut-but-not-shifted one. Overlap marks an unphysically close pair.
type Interaction struct {
	Pot     float64
	Cut     float64
	Vir     float64
	Lap     float64
	Overlap bool
}

// State is the particle state store plus shear state. Box, StrainRate and
// the slice lengths are fixed for a run; R, V, F and Strain are mutated in
// place by the propagators. Single-writer: nothing outside the run loop
// touches a State while a run owns it.
type State struct {
	R []Vec3 // positions, box units
	V []Vec3 // velocities, physical units
	F []Vec3 // forces, physical units, rewritten every force evaluation

	Box        float64
	Strain     float64
	StrainRate float64
}

func New(n int, box, strainRate float64) *State {
	return &State{
		R:          make([]Vec3, n),
		V:          make([]Vec3, n),
		F:          make([]Vec3, n),
		Box:        box,
		StrainRate: strainRate,
	}
}

func (s *State) N() int { return len(s.R) }

// Clone copies the full mutable state, for resets and replays.
func (s *State) Clone() *State {
	c := New(s.N(), s.Box, s.StrainRate)
	copy(c.R, s.R)
	copy(c.V, s.V)
	copy(c.F, s.F)
	c.Strain = s.Strain
	return c
}

func (s *State) Density() float64 { return float64(s.N()) / (s.Box * s.Box * s.Box) }

// SumVSq returns the total squared velocity over all particles and
// components, the quantity the isokinetic thermostat holds constant.
func (s *State) SumVSq() float64 {
	sum := 0.0
	for i := range s.V {
		sum += s.V[i].NormSq()
	}
	return sum
}

func (s *State) KineticEnergy() float64 { return 0.5 * s.SumVSq() }

func (s *State) SumFSq() float64 {
	sum := 0.0
	for i := range s.F {
		sum += s.F[i].NormSq()
	}
	return sum
}

// Wrap restores the periodic-image invariant under the current strain.
// The x component is first corrected for the lateral offset of the
// periodic rows above and below in y, then every component is folded back
// into [-0.5, 0.5).
func (s *State) Wrap() {
	for i := range s.R {
		s.R[i][0] -= math.Round(s.R[i][1]) * s.Strain
		s.R[i][0] -= math.Round(s.R[i][0])
		s.R[i][1] -= math.Round(s.R[i][1])
		s.R[i][2] -= math.Round(s.R[i][2])
	}
}

// ZeroMomentum removes the center-of-mass velocity. Called once at setup;
// the shear and thermostat dynamics do not conserve total momentum and it
// is deliberately never re-enforced mid-run.
func (s *State) ZeroMomentum() {
	var com Vec3
	for i := range s.V {
		com = com.Add(s.V[i])
	}
	com = com.Scale(1.0 / float64(s.N()))
	for i := range s.V {
		s.V[i] = s.V[i].Sub(com)
	}
}

func (s *State) IsValid() bool {
	for i := range s.R {
		for k := 0; k < 3; k++ {
			if math.IsNaN(s.R[i][k]) || math.IsInf(s.R[i][k], 0) {
				return false
			}
			if math.IsNaN(s.V[i][k]) || math.IsInf(s.V[i][k], 0) {
				return false
			}
		}
	}
	return true
}

// FromConfiguration builds a run-ready State from physical-unit positions
// and velocities as read from a configuration file: positions are scaled
// to box units, the shear image correction and periodic wrap are applied
// (strain is zero at load), and the center-of-mass velocity is removed.
func FromConfiguration(box float64, r, v []Vec3, strainRate float64) *State {
	s := New(len(r), box, strainRate)
	for i := range r {
		s.R[i] = r[i].Scale(1.0 / box)
		s.V[i] = v[i]
	}
	s.Wrap()
	s.ZeroMomentum()
	return s
}
