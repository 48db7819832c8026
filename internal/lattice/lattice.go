// Package lattice generates starting configurations: particles on a
// face-centered cubic lattice with Maxwell-distributed velocities scaled
// to an exact kinetic temperature.
package lattice

import (
	"math"
	"math/rand"

	"github.com/san-kum/shearmd/internal/storage"
	"github.com/san-kum/shearmd/internal/system"
)

// unit cell sites of the fcc lattice, in cell units
var fccSites = [4]system.Vec3{
	{0.25, 0.25, 0.25},
	{0.75, 0.75, 0.25},
	{0.75, 0.25, 0.75},
	{0.25, 0.75, 0.75},
}

// FCC builds a configuration of 4*cells^3 particles at the given number
// density and kinetic temperature. Velocities are drawn from a Gaussian,
// the center-of-mass velocity is removed, and the result is rescaled so
// the kinetic temperature over 3N-3 degrees of freedom is exactly temp.
// Positions are in physical units, centered on the box origin.
func FCC(cells int, density, temp float64, seed int64) *storage.Snapshot {
	n := 4 * cells * cells * cells
	box := math.Cbrt(float64(n) / density)
	cell := box / float64(cells)

	snap := &storage.Snapshot{
		Box: box,
		R:   make([]system.Vec3, n),
		V:   make([]system.Vec3, n),
	}

	i := 0
	for ix := 0; ix < cells; ix++ {
		for iy := 0; iy < cells; iy++ {
			for iz := 0; iz < cells; iz++ {
				for _, site := range fccSites {
					snap.R[i] = system.Vec3{
						(float64(ix) + site[0]) * cell,
						(float64(iy) + site[1]) * cell,
						(float64(iz) + site[2]) * cell,
					}.Sub(system.Vec3{box / 2, box / 2, box / 2})
					i++
				}
			}
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var com system.Vec3
	for i := range snap.V {
		snap.V[i] = system.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		com = com.Add(snap.V[i])
	}
	com = com.Scale(1.0 / float64(n))

	sumSq := 0.0
	for i := range snap.V {
		snap.V[i] = snap.V[i].Sub(com)
		sumSq += snap.V[i].NormSq()
	}

	// exact isokinetic start: sum v^2 = (3N-3) T
	scale := math.Sqrt((3.0*float64(n) - 3.0) * temp / sumSq)
	for i := range snap.V {
		snap.V[i] = snap.V[i].Scale(scale)
	}

	return snap
}
