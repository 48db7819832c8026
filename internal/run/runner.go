// Package run drives a complete simulation: the block/step loop around
// the SLLOD stepper, observable accumulation, snapshot persistence, and
// the fatal error policy. Every detected error aborts the run; there is
// no recovery from a corrupted trajectory.
package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/shearmd/internal/config"
	"github.com/san-kum/shearmd/internal/observe"
	"github.com/san-kum/shearmd/internal/sllod"
	"github.com/san-kum/shearmd/internal/storage"
	"github.com/san-kum/shearmd/internal/system"
)

// OverlapError reports where in the run the force field flagged core
// overlap.
type OverlapError struct {
	Phase string // "initial", "step", "final"
	Block int
	Step  int
}

func (e *OverlapError) Error() string {
	switch e.Phase {
	case "step":
		return fmt.Sprintf("core overlap at block %d step %d", e.Block, e.Step)
	default:
		return fmt.Sprintf("core overlap in %s configuration", e.Phase)
	}
}

type Result struct {
	BlockMeans  []observe.Set
	Means       observe.Set
	Steps       int
	FinalStrain float64
}

// Runner owns one run: the configuration constants, the force field, and
// the observable collaborators. The particle state is handed in at Run
// and exclusively owned until Run returns.
type Runner struct {
	cfg    *config.Run
	field  sllod.ForceField
	potLRC observe.LRC
	prsLRC observe.LRC

	sinks []observe.Sink

	store *storage.Store
	runID string
}

func New(cfg *config.Run, field sllod.ForceField, potLRC, prsLRC observe.LRC) *Runner {
	return &Runner{cfg: cfg, field: field, potLRC: potLRC, prsLRC: prsLRC}
}

func (r *Runner) AddSink(s observe.Sink) { r.sinks = append(r.sinks, s) }

// SetStore enables block-boundary snapshot persistence into an existing
// run directory.
func (r *Runner) SetStore(st *storage.Store, runID string) {
	r.store = st
	r.runID = runID
}

// Run integrates the configured number of blocks and steps. The state
// must already be wrapped and momentum-zeroed (system.FromConfiguration
// does both). Aborts on context cancellation, overlap, or numerical
// degeneracy; an aborted run writes no further snapshots.
func (r *Runner) Run(ctx context.Context, sys *system.State) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	if inter := r.field.Evaluate(sys); inter.Overlap {
		return nil, &OverlapError{Phase: "initial"}
	}

	stepper := sllod.NewStepper(r.cfg.Dt, r.field)
	avg := observe.NewAverager()
	result := &Result{BlockMeans: make([]observe.Set, 0, r.cfg.Blocks)}
	t := 0.0

	for block := 1; block <= r.cfg.Blocks; block++ {
		for step := 1; step <= r.cfg.Steps; step++ {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			inter, err := stepper.Step(sys)
			if err != nil {
				if errors.Is(err, sllod.ErrOverlap) {
					return result, &OverlapError{Phase: "step", Block: block, Step: step}
				}
				return result, err
			}
			t += r.cfg.Dt
			result.Steps++

			set := observe.Compute(sys, inter, r.cfg.Cutoff, r.potLRC, r.prsLRC)
			avg.Add(set)
			for _, s := range r.sinks {
				s.OnStep(t, set)
			}
		}

		mean := avg.EndBlock()
		result.BlockMeans = append(result.BlockMeans, mean)
		for _, s := range r.sinks {
			s.OnBlock(block, mean)
		}

		if r.store != nil {
			if err := r.store.SaveBlockSnapshot(r.runID, block, sys); err != nil {
				return result, fmt.Errorf("saving block %d snapshot: %w", block, err)
			}
		}
	}

	if inter := r.field.Evaluate(sys); inter.Overlap {
		return result, &OverlapError{Phase: "final"}
	}

	result.Means = avg.RunMeans()
	result.FinalStrain = sys.Strain
	return result, nil
}
