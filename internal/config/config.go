package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	DefaultPreset = "triple"
	DefaultRadius = 1.0
	DefaultColor  = "white"
)

// Config is a scenario file. Raw numbers are in Units; Build converts them
// to SI before any body is constructed.
type Config struct {
	Name           string       `yaml:"name"`
	G              float64      `yaml:"g,omitempty"`
	Dt             float64      `yaml:"dt"`
	Steps          int          `yaml:"steps"`
	CloseEncounter float64      `yaml:"close_encounter,omitempty"`
	Orbital        bool         `yaml:"orbital_velocities,omitempty"`
	Units          Units        `yaml:"units,omitempty"`
	Bodies         []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name     string    `yaml:"name,omitempty"`
	Position []float64 `yaml:"position,flow"`
	Velocity []float64 `yaml:"velocity,flow"`
	Mass     float64   `yaml:"mass"`
	Radius   float64   `yaml:"radius,omitempty"`
	Color    string    `yaml:"color,omitempty"`
}

func DefaultConfig() *Config {
	return GetPreset(DefaultPreset)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scenario-level fields. Body fields are checked by
// physics.NewBody during Build.
func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: scenario %q has no bodies", dynamo.ErrInvalidConfig, c.Name)
	}
	if c.G < 0 || math.IsNaN(c.G) || math.IsInf(c.G, 0) {
		return fmt.Errorf("%w: g must be positive and finite, got %g", dynamo.ErrInvalidConfig, c.G)
	}
	if c.G == 0 && c.Units.IsZero() {
		return fmt.Errorf("%w: g is required when no units are set", dynamo.ErrInvalidConfig)
	}
	if _, err := c.Units.scales(); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	return c.RunConfig().Validate()
}

// GravitationalConstant is the G the scenario runs with: the configured
// value, or SI G when units are set.
func (c *Config) GravitationalConstant() float64 {
	if c.G != 0 {
		return c.G
	}
	return GravitationalConstant
}

// RunConfig converts dt and the close-encounter distance to SI.
func (c *Config) RunConfig() sim.Config {
	sc, err := c.Units.scales()
	if err != nil {
		sc = scales{length: 1, time: 1}
	}
	return sim.Config{
		Dt:             c.Dt * sc.time,
		Steps:          c.Steps,
		CloseEncounter: c.CloseEncounter * sc.length,
	}
}

// Build converts the scenario to SI and constructs the system and force
// field. With Orbital set, bodies after the first that start at rest get a
// circular-orbit velocity about body 0.
func (c *Config) Build(opts ...physics.ForceOption) (*physics.System, *physics.ForceField, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	sc, err := c.Units.scales()
	if err != nil {
		return nil, nil, err
	}

	bodies := make([]*physics.Body, len(c.Bodies))
	for i, bc := range c.Bodies {
		radius := bc.Radius
		if radius == 0 {
			radius = DefaultRadius
		}
		color := bc.Color
		if color == "" {
			color = DefaultColor
		}
		velocity := bc.Velocity
		if velocity == nil {
			velocity = make([]float64, len(bc.Position))
		}

		b, err := physics.NewBody(
			scaled(bc.Position, sc.length),
			scaled(velocity, sc.velocity),
			bc.Mass*sc.mass,
			radius*sc.radius,
			color,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("bodies[%d] (%s): %w", i, bc.Name, err)
		}
		bodies[i] = b
	}

	sys, err := physics.NewSystem(bodies...)
	if err != nil {
		return nil, nil, err
	}

	g := c.GravitationalConstant()
	if c.Orbital {
		if err := SetOrbitalVelocities(sys.Bodies(), g); err != nil {
			return nil, nil, err
		}
	}
	ff, err := physics.NewForceField(g, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sys, ff, nil
}

func scaled(v []float64, factor float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * factor
	}
	return out
}

// SetOrbitalVelocities gives every body after the first that is at rest the
// circular speed sqrt(G M / r) about body 0, perpendicular to the radius in
// the xy plane.
func SetOrbitalVelocities(bodies []*physics.Body, g float64) error {
	if len(bodies) == 0 {
		return nil
	}
	central := bodies[0]
	for i := 1; i < len(bodies); i++ {
		b := bodies[i]
		if b.Dim() != central.Dim() {
			return &dynamo.FieldError{
				Field:  fmt.Sprintf("bodies[%d]", i),
				Reason: fmt.Sprintf("is %d dimensional, central body is %d dimensional", b.Dim(), central.Dim()),
				Err:    dynamo.ErrInvalidDimension,
			}
		}
		if b.Velocity().Norm() != 0 {
			continue
		}

		rel := b.Position().Sub(central.Position())
		r := math.Hypot(rel[0], rel[1])
		if r == 0 {
			continue
		}
		speed := math.Sqrt(g * central.Mass() / r)

		v := central.Velocity()
		v[0] += -rel[1] / r * speed
		v[1] += rel[0] / r * speed
		if err := b.SetVelocity(v); err != nil {
			return fmt.Errorf("bodies[%d]: %w", i, err)
		}
	}
	return nil
}
