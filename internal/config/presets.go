package config

import "sort"

// Presets are built-in scenarios, addressed by name.
var Presets = map[string]*Config{
	// Two suns and a lighter companion, in au, earth masses and seconds.
	"triple": {
		Name: "triple", Dt: 1e4, Steps: 100000,
		Units: Units{Length: "au", Mass: "earth_mass", Radius: "earth_radius", Time: "s"},
		Bodies: []BodyConfig{
			{Name: "a", Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Mass: 333000, Radius: 2e3, Color: "green"},
			{Name: "b", Position: []float64{5, 0, 0}, Velocity: []float64{0, 2e-7, 0}, Mass: 333000, Radius: 1e3, Color: "green"},
			{Name: "c", Position: []float64{1, 0, 0}, Velocity: []float64{0, 3e-7, 0}, Mass: 166500, Radius: 2e3, Color: "green"},
		},
	},
	"binary": {
		Name: "binary", G: 1, Dt: 0.001, Steps: 20000,
		Bodies: []BodyConfig{
			{Name: "a", Position: []float64{-0.5, 0}, Velocity: []float64{0, -0.7071067811865476}, Mass: 1, Radius: 0.05, Color: "yellow"},
			{Name: "b", Position: []float64{0.5, 0}, Velocity: []float64{0, 0.7071067811865476}, Mass: 1, Radius: 0.05, Color: "cyan"},
		},
	},
	"sun-earth": {
		Name: "sun-earth", Dt: 0.1, Steps: 3653, Orbital: true,
		Units: Units{Length: "au", Mass: "earth_mass", Radius: "earth_radius", Time: "day"},
		Bodies: []BodyConfig{
			{Name: "sun", Position: []float64{0, 0}, Mass: 332946, Radius: 109, Color: "yellow"},
			{Name: "earth", Position: []float64{1, 0}, Mass: 1, Radius: 1, Color: "blue"},
		},
	},
	// Chenciner-Montgomery figure-eight choreography.
	"figure8": {
		Name: "figure8", G: 1, Dt: 0.001, Steps: 6326,
		Bodies: []BodyConfig{
			{Name: "a", Position: []float64{-0.97000436, 0.24308753}, Velocity: []float64{0.466203685, 0.43236573}, Mass: 1, Radius: 0.03, Color: "red"},
			{Name: "b", Position: []float64{0.97000436, -0.24308753}, Velocity: []float64{0.466203685, 0.43236573}, Mass: 1, Radius: 0.03, Color: "green"},
			{Name: "c", Position: []float64{0, 0}, Velocity: []float64{-0.93240737, -0.86473146}, Mass: 1, Radius: 0.03, Color: "blue"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		b.Position = append([]float64(nil), b.Position...)
		if b.Velocity != nil {
			b.Velocity = append([]float64(nil), b.Velocity...)
		}
		out.Bodies[i] = b
	}
	return &out
}
