package storage

import (
	"bufio"
	"fmt"
	"os"

	"github.com/san-kum/shearmd/internal/system"
)

// Snapshot is a configuration record in physical units: particle count,
// box length, then one position/velocity triple pair per particle.
type Snapshot struct {
	Box float64
	R   []system.Vec3
	V   []system.Vec3
}

func ReadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)

	var n int
	if _, err := fmt.Fscan(r, &n); err != nil {
		return nil, fmt.Errorf("reading particle count: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid particle count %d", n)
	}

	snap := &Snapshot{
		R: make([]system.Vec3, n),
		V: make([]system.Vec3, n),
	}
	if _, err := fmt.Fscan(r, &snap.Box); err != nil {
		return nil, fmt.Errorf("reading box length: %w", err)
	}
	if snap.Box <= 0 {
		return nil, fmt.Errorf("invalid box length %f", snap.Box)
	}

	for i := 0; i < n; i++ {
		_, err := fmt.Fscan(r,
			&snap.R[i][0], &snap.R[i][1], &snap.R[i][2],
			&snap.V[i][0], &snap.V[i][1], &snap.V[i][2])
		if err != nil {
			return nil, fmt.Errorf("reading particle %d: %w", i, err)
		}
	}
	return snap, nil
}

func (snap *Snapshot) Write(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "%d\n", len(snap.R))
	fmt.Fprintf(w, "%15.8f\n", snap.Box)
	for i := range snap.R {
		fmt.Fprintf(w, "%15.10f %15.10f %15.10f %15.10f %15.10f %15.10f\n",
			snap.R[i][0], snap.R[i][1], snap.R[i][2],
			snap.V[i][0], snap.V[i][1], snap.V[i][2])
	}
	return w.Flush()
}

// WriteSnapshot persists the current state in physical units; positions
// are scaled back out of box units.
func WriteSnapshot(path string, s *system.State) error {
	snap := &Snapshot{
		Box: s.Box,
		R:   make([]system.Vec3, s.N()),
		V:   make([]system.Vec3, s.N()),
	}
	for i := range s.R {
		snap.R[i] = s.R[i].Scale(s.Box)
		snap.V[i] = s.V[i]
	}
	return snap.Write(path)
}
