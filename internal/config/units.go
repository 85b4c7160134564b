package config

import (
	"fmt"
	"sort"
)

// GravitationalConstant is CODATA 2018 G in m^3 kg^-1 s^-2.
const GravitationalConstant = 6.67430e-11

var lengthUnits = map[string]float64{
	"m":            1,
	"km":           1e3,
	"au":           1.495978707e11,
	"earth_radius": 6.3781e6,
	"sun_radius":   6.957e8,
}

var massUnits = map[string]float64{
	"kg":         1,
	"earth_mass": 5.97216787e24,
	"sun_mass":   1.98840987e30,
}

var timeUnits = map[string]float64{
	"s":    1,
	"day":  86400,
	"year": 3.15576e7,
}

// Units names the unit of each raw quantity in a scenario. Empty fields
// mean SI. Velocities are in length/time.
type Units struct {
	Length string `yaml:"length,omitempty"`
	Mass   string `yaml:"mass,omitempty"`
	Radius string `yaml:"radius,omitempty"`
	Time   string `yaml:"time,omitempty"`
}

func (u Units) IsZero() bool { return u == Units{} }

// scales are the SI multipliers for one scenario.
type scales struct {
	length, velocity, mass, radius, time float64
}

func (u Units) scales() (scales, error) {
	length, err := lookup(lengthUnits, "units.length", u.Length)
	if err != nil {
		return scales{}, err
	}
	radius, err := lookup(lengthUnits, "units.radius", u.Radius)
	if err != nil {
		return scales{}, err
	}
	mass, err := lookup(massUnits, "units.mass", u.Mass)
	if err != nil {
		return scales{}, err
	}
	tm, err := lookup(timeUnits, "units.time", u.Time)
	if err != nil {
		return scales{}, err
	}
	return scales{
		length:   length,
		velocity: length / tm,
		mass:     mass,
		radius:   radius,
		time:     tm,
	}, nil
}

func lookup(table map[string]float64, field, name string) (float64, error) {
	if name == "" {
		return 1, nil
	}
	f, ok := table[name]
	if !ok {
		return 0, fmt.Errorf("%s: unknown unit %q (known: %v)", field, name, unitNames(table))
	}
	return f, nil
}

func unitNames(table map[string]float64) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
