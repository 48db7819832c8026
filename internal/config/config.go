package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBlocks     = 10
	DefaultSteps      = 1000
	DefaultDt         = 0.005
	DefaultCutoff     = 2.0
	DefaultStrainRate = 0.04
)

// Run holds the scalar constants of a whole run. Supplied once before
// the first step and never mutated afterwards.
type Run struct {
	Blocks     int     `yaml:"blocks"`
	Steps      int     `yaml:"steps_per_block"`
	Dt         float64 `yaml:"dt"`
	Cutoff     float64 `yaml:"r_cut"`
	StrainRate float64 `yaml:"strain_rate"`
	Snapshot   string  `yaml:"snapshot"`
}

func Default() *Run {
	return &Run{
		Blocks:     DefaultBlocks,
		Steps:      DefaultSteps,
		Dt:         DefaultDt,
		Cutoff:     DefaultCutoff,
		StrainRate: DefaultStrainRate,
	}
}

func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Run) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects a malformed run configuration before any integration
// begins.
func (c *Run) Validate() error {
	if c.Blocks <= 0 {
		return fmt.Errorf("blocks must be positive, got %d", c.Blocks)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps per block must be positive, got %d", c.Steps)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Cutoff <= 0 {
		return fmt.Errorf("cutoff must be positive, got %f", c.Cutoff)
	}
	return nil
}
