package config

var Presets = map[string]*Run{
	"equilibrate": {
		Blocks: 5, Steps: 2000, Dt: 0.005, Cutoff: 2.0, StrainRate: 0.0,
	},
	"production": {
		Blocks: 10, Steps: 10000, Dt: 0.005, Cutoff: 2.0, StrainRate: 0.04,
	},
	"strong-shear": {
		Blocks: 10, Steps: 10000, Dt: 0.002, Cutoff: 2.0, StrainRate: 0.16,
	},
	"quick": {
		Blocks: 2, Steps: 200, Dt: 0.005, Cutoff: 2.0, StrainRate: 0.04,
	},
}

func GetPreset(name string) *Run {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
