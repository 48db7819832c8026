package sllod_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/shearmd/internal/sllod"
	"github.com/san-kum/shearmd/internal/system"
)

const tol = 1e-10

// makeState builds a small sheared state with non-trivial velocity
// cross-correlations so the B1 coefficients are exercised.
func makeState(strainRate float64) *system.State {
	s := system.New(4, 5.0, strainRate)
	s.R = []system.Vec3{
		{0.1, 0.2, -0.3},
		{-0.4, 0.05, 0.25},
		{0.33, -0.21, 0.11},
		{-0.05, 0.45, -0.4},
	}
	s.V = []system.Vec3{
		{0.7, -0.3, 0.2},
		{-0.5, 0.6, -0.1},
		{0.2, 0.15, -0.45},
		{-0.4, -0.45, 0.35},
	}
	return s
}

func cloneVecs(v []system.Vec3) []system.Vec3 {
	c := make([]system.Vec3, len(v))
	copy(c, v)
	return c
}

// zeroField writes a zero force array and reports no overlap.
type zeroField struct{}

func (zeroField) Evaluate(s *system.State) system.Interaction {
	for i := range s.F {
		s.F[i] = system.Vec3{}
	}
	return system.Interaction{}
}

// constField returns a fixed force per particle.
type constField struct {
	forces []system.Vec3
}

func (f *constField) Evaluate(s *system.State) system.Interaction {
	copy(s.F, f.forces)
	return system.Interaction{Lap: 1}
}

// overlapField always reports core overlap.
type overlapField struct{}

func (overlapField) Evaluate(s *system.State) system.Interaction {
	for i := range s.F {
		s.F[i] = system.Vec3{}
	}
	return system.Interaction{Overlap: true}
}

var _ = Describe("ShearKick (B1)", func() {
	It("preserves the total squared velocity", func() {
		s := makeState(1.3)
		before := s.SumVSq()
		Expect(sllod.ShearKick(s, 0.02)).To(Succeed())
		Expect(s.SumVSq()).To(BeNumerically("~", before, tol*before))
	})

	It("is reversible with coefficients recomputed fresh", func() {
		s := makeState(0.8)
		orig := cloneVecs(s.V)
		Expect(sllod.ShearKick(s, 0.017)).To(Succeed())
		Expect(sllod.ShearKick(s, -0.017)).To(Succeed())
		for i := range orig {
			for k := 0; k < 3; k++ {
				Expect(s.V[i][k]).To(BeNumerically("~", orig[i][k], tol))
			}
		}
	})

	It("fails fast on zero kinetic energy", func() {
		s := system.New(2, 5.0, 0.5)
		Expect(sllod.ShearKick(s, 0.01)).To(MatchError(sllod.ErrZeroKinetic))
	})
})

var _ = Describe("ForceKick (B2)", func() {
	forces := []system.Vec3{
		{0.3, -0.9, 0.4},
		{-0.2, 0.5, 0.7},
		{0.8, 0.1, -0.3},
		{-0.6, -0.2, 0.25},
	}

	It("preserves the total squared velocity for a fixed force array", func() {
		s := makeState(0)
		copy(s.F, forces)
		before := s.SumVSq()
		Expect(sllod.ForceKick(s, 0.05)).To(Succeed())
		Expect(s.SumVSq()).To(BeNumerically("~", before, tol*before))
	})

	It("is reversible with alpha and beta recomputed fresh", func() {
		s := makeState(0)
		copy(s.F, forces)
		orig := cloneVecs(s.V)
		Expect(sllod.ForceKick(s, 0.03)).To(Succeed())
		copy(s.F, forces)
		Expect(sllod.ForceKick(s, -0.03)).To(Succeed())
		for i := range orig {
			for k := 0; k < 3; k++ {
				Expect(s.V[i][k]).To(BeNumerically("~", orig[i][k], tol))
			}
		}
	})

	It("reduces to the identity for a zero force array", func() {
		s := makeState(0)
		orig := cloneVecs(s.V)
		Expect(sllod.ForceKick(s, 0.1)).To(Succeed())
		Expect(s.V).To(Equal(orig))
	})

	It("fails fast on zero kinetic energy", func() {
		s := system.New(2, 5.0, 0)
		s.F[0] = system.Vec3{1, 0, 0}
		Expect(sllod.ForceKick(s, 0.01)).To(MatchError(sllod.ErrZeroKinetic))
	})

	It("fails fast when the force is exactly aligned with the velocities", func() {
		s := system.New(2, 5.0, 0)
		s.V[0] = system.Vec3{1, 0, 0}
		s.V[1] = system.Vec3{-1, 0, 0}
		s.F[0] = system.Vec3{2, 0, 0}
		s.F[1] = system.Vec3{-2, 0, 0}
		Expect(sllod.ForceKick(s, 0.01)).To(MatchError(sllod.ErrDegenerate))
	})
})

var _ = Describe("Drift (A)", func() {
	It("is reversible without shear, modulo the periodic wrap", func() {
		s := makeState(0)
		orig := cloneVecs(s.R)
		sllod.Drift(s, 0.02)
		sllod.Drift(s, -0.02)
		for i := range orig {
			for k := 0; k < 3; k++ {
				Expect(s.R[i][k]).To(BeNumerically("~", orig[i][k], tol))
			}
		}
	})

	It("keeps every position component in [-0.5, 0.5)", func() {
		s := makeState(2.0)
		for n := 0; n < 50; n++ {
			sllod.Drift(s, 0.05)
			for i := range s.R {
				for k := 0; k < 3; k++ {
					Expect(s.R[i][k]).To(BeNumerically(">=", -0.5))
					Expect(s.R[i][k]).To(BeNumerically("<=", 0.5))
				}
			}
		}
	})

	It("accumulates strain as the exact sum of its increments", func() {
		s := makeState(0.7)
		sllod.Drift(s, 0.01)
		sllod.Drift(s, 0.01)
		Expect(s.Strain).To(BeNumerically("~", 2*0.01*0.7, 1e-14))
	})
})

var _ = Describe("Stepper", func() {
	It("leaves kinetic energy unchanged for free particles without shear", func() {
		s := system.New(2, 10.0, 0)
		s.R[0] = system.Vec3{0, 0, 0}
		s.R[1] = system.Vec3{0.1, 0, 0}
		s.V[0] = system.Vec3{1, 0, 0}
		s.V[1] = system.Vec3{-1, 0, 0}

		st := sllod.NewStepper(0.01, zeroField{})
		before := s.SumVSq()
		_, err := st.Step(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SumVSq()).To(Equal(before))

		// positions drifted by dt*v/box
		Expect(s.R[0][0]).To(BeNumerically("~", 0.01*1.0/10.0, 1e-15))
		Expect(s.R[1][0]).To(BeNumerically("~", 0.1-0.01*1.0/10.0, 1e-15))
	})

	It("keeps strain at exactly zero without shear", func() {
		s := makeState(0)
		st := sllod.NewStepper(0.005, zeroField{})
		for n := 0; n < 20; n++ {
			_, err := st.Step(s)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(s.Strain).To(Equal(0.0))
	})

	It("advances strain by dt times the strain rate per step", func() {
		s := system.New(2, 10.0, 0.01)
		s.R[1] = system.Vec3{0.1, 0, 0}
		s.V[0] = system.Vec3{1, 0, 0}
		s.V[1] = system.Vec3{-1, 0, 0}

		st := sllod.NewStepper(0.01, zeroField{})
		_, err := st.Step(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Strain).To(BeNumerically("~", 0.01*0.01, 1e-16))
	})

	It("wraps every position after a full step", func() {
		s := makeState(1.5)
		st := sllod.NewStepper(0.05, &constField{forces: []system.Vec3{
			{0.3, -0.9, 0.4},
			{-0.2, 0.5, 0.7},
			{0.8, 0.1, -0.3},
			{-0.6, -0.2, 0.25},
		}})
		for n := 0; n < 30; n++ {
			_, err := st.Step(s)
			Expect(err).NotTo(HaveOccurred())
			for i := range s.R {
				for k := 0; k < 3; k++ {
					Expect(s.R[i][k]).To(BeNumerically(">=", -0.5))
					Expect(s.R[i][k]).To(BeNumerically("<=", 0.5))
				}
			}
		}
	})

	It("conserves the isokinetic constraint across forced, sheared steps", func() {
		s := makeState(0.9)
		st := sllod.NewStepper(0.002, &constField{forces: []system.Vec3{
			{0.3, -0.9, 0.4},
			{-0.2, 0.5, 0.7},
			{0.8, 0.1, -0.3},
			{-0.6, -0.2, 0.25},
		}})
		before := s.SumVSq()
		for n := 0; n < 100; n++ {
			_, err := st.Step(s)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(s.SumVSq()).To(BeNumerically("~", before, 1e-8*before))
	})

	It("aborts on an overlap report", func() {
		s := makeState(0.5)
		st := sllod.NewStepper(0.01, overlapField{})
		_, err := st.Step(s)
		Expect(err).To(MatchError(sllod.ErrOverlap))
	})
})

var _ = Describe("round trip of a whole step", func() {
	It("returns to the starting state when stepped with negated dt", func() {
		s := makeState(0)
		origR := cloneVecs(s.R)
		origV := cloneVecs(s.V)
		field := &constField{forces: []system.Vec3{
			{0.3, -0.9, 0.4},
			{-0.2, 0.5, 0.7},
			{0.8, 0.1, -0.3},
			{-0.6, -0.2, 0.25},
		}}

		forward := sllod.NewStepper(0.004, field)
		backward := sllod.NewStepper(-0.004, field)
		_, err := forward.Step(s)
		Expect(err).NotTo(HaveOccurred())
		_, err = backward.Step(s)
		Expect(err).NotTo(HaveOccurred())

		for i := range origR {
			for k := 0; k < 3; k++ {
				Expect(s.R[i][k]).To(BeNumerically("~", origR[i][k], tol))
				Expect(s.V[i][k]).To(BeNumerically("~", origV[i][k], tol))
			}
		}
		Expect(math.Abs(s.Strain)).To(BeNumerically("<", 1e-15))
	})
})
