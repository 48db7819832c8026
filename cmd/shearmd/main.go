package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/shearmd/internal/config"
	"github.com/san-kum/shearmd/internal/lattice"
	"github.com/san-kum/shearmd/internal/live"
	"github.com/san-kum/shearmd/internal/lj"
	"github.com/san-kum/shearmd/internal/observe"
	"github.com/san-kum/shearmd/internal/run"
	"github.com/san-kum/shearmd/internal/storage"
	"github.com/san-kum/shearmd/internal/system"
)

var (
	dataDir    string
	blocks     int
	steps      int
	dt         float64
	cutoff     float64
	strainRate float64
	configFile string
	preset     string
	// init command
	cells       int
	density     float64
	temperature float64
	seed        int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shearmd",
		Short: "molecular dynamics under steady shear (SLLOD, Lees-Edwards)",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".shearmd", "data directory")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "generate an fcc starting configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfiguration,
	}
	initCmd.Flags().IntVar(&cells, "cells", 3, "fcc cells per side (N = 4*cells^3)")
	initCmd.Flags().Float64Var(&density, "density", 0.8442, "number density")
	initCmd.Flags().Float64Var(&temperature, "temperature", 0.722, "kinetic temperature")
	initCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "run a shear simulation from a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored observables",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [file]",
		Short: "run with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(initCmd, runCmd, listCmd, plotCmd, exportJSONCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&blocks, "blocks", config.DefaultBlocks, "number of blocks")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per block")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&cutoff, "r-cut", config.DefaultCutoff, "potential cutoff radius")
	cmd.Flags().Float64Var(&strainRate, "strain-rate", config.DefaultStrainRate, "shear strain rate")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig builds the run configuration: defaults, then preset,
// then config file, then explicit flags.
func resolveConfig(cmd *cobra.Command) (*config.Run, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("blocks") {
		cfg.Blocks = blocks
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("r-cut") {
		cfg.Cutoff = cutoff
	}
	if cmd.Flags().Changed("strain-rate") {
		cfg.StrainRate = strainRate
	}
	return cfg, cfg.Validate()
}

func snapshotPath(cfg *config.Run, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.Snapshot != "" {
		return cfg.Snapshot
	}
	return "cnf.inp"
}

func initConfiguration(cmd *cobra.Command, args []string) error {
	path := "cnf.inp"
	if len(args) > 0 {
		path = args[0]
	}
	snap := lattice.FCC(cells, density, temperature, seed)
	if err := snap.Write(path); err != nil {
		return err
	}
	fmt.Printf("wrote %d particles, box %.4f, to %s\n", len(snap.R), snap.Box, path)
	return nil
}

// blockPrinter reports block means as the run progresses.
type blockPrinter struct {
	headerDone bool
}

func (p *blockPrinter) OnStep(t float64, s observe.Set) {}

func (p *blockPrinter) OnBlock(block int, mean observe.Set) {
	if !p.headerDone {
		fmt.Printf("%5s", "block")
		for _, name := range observe.Names {
			fmt.Printf("  %10s", name)
		}
		fmt.Println()
		p.headerDone = true
	}
	fmt.Printf("%5d", block)
	for _, v := range mean.Values() {
		fmt.Printf("  %10.5f", v)
	}
	fmt.Println()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := storage.ReadSnapshot(snapshotPath(cfg, args))
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	sys := system.FromConfiguration(snap.Box, snap.R, snap.V, cfg.StrainRate)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Begin()
	if err != nil {
		return err
	}

	field := lj.New(cfg.Cutoff)
	runner := run.New(cfg, field, lj.PotentialLRC, lj.PressureLRC)
	runner.SetStore(st, runID)
	rec := observe.NewRecorder()
	runner.AddSink(rec)
	runner.AddSink(&blockPrinter{})

	fmt.Printf("running %d particles, density %.4f, strain rate %.4f\n",
		sys.N(), sys.Density(), cfg.StrainRate)
	start := time.Now()

	result, err := runner.Run(context.Background(), sys)
	if err != nil {
		return err
	}

	fmt.Printf("\ncompleted %d steps in %v\n", result.Steps, time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final strain: %.5f\n", result.FinalStrain)
	fmt.Println("\nrun averages:")
	means := result.Means.Values()
	for k, name := range observe.Names {
		fmt.Printf("  %s: %.6f\n", name, means[k])
	}

	meta := storage.RunMetadata{
		N:          sys.N(),
		Box:        sys.Box,
		Density:    sys.Density(),
		Cutoff:     cfg.Cutoff,
		Dt:         cfg.Dt,
		StrainRate: cfg.StrainRate,
		Strain:     result.FinalStrain,
		Blocks:     cfg.Blocks,
		Steps:      cfg.Steps,
		Averages:   averagesMap(result.Means),
	}
	return st.Finish(runID, meta, sys, rec)
}

func averagesMap(mean observe.Set) map[string]float64 {
	m := make(map[string]float64, len(observe.Names))
	v := mean.Values()
	for k, name := range observe.Names {
		m[name] = v[k]
	}
	return m
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tDENSITY\tRATE\tDT\tBLOCKS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.4f\t%.4f\t%d\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.N,
			r.Density,
			r.StrainRate,
			r.Dt,
			r.Blocks,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cols, times, err := st.LoadObservables(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("N=%d density=%.4f strain rate=%.4f\n\n", meta.N, meta.Density, meta.StrainRate)

	captions := map[string]string{
		"e_s": "E/N (cut & shifted)",
		"e_f": "E/N (full)",
		"p_s": "P (cut & shifted)",
		"p_f": "P (full)",
		"t_k": "T (kinetic)",
		"t_c": "T (configurational)",
	}
	for _, name := range observe.Names {
		data, ok := cols[name]
		if !ok || len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[name]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := storage.ReadSnapshot(snapshotPath(cfg, args))
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	sys := system.FromConfiguration(snap.Box, snap.R, snap.V, cfg.StrainRate)

	field := lj.New(cfg.Cutoff)
	if inter := field.Evaluate(sys); inter.Overlap {
		return &run.OverlapError{Phase: "initial"}
	}
	return live.Run(cfg, field, sys, lj.PotentialLRC, lj.PressureLRC)
}
