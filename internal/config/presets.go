package config

import "sort"

const (
	microCoulomb = 1e-6
	gram         = 1e-3
)

func preset(name string, dt, duration float64, particles ...ParticleConfig) *Config {
	cfg := DefaultConfig()
	cfg.Scene = name
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.Particles = particles
	return cfg
}

func charge(q float64, x, y, z float64) ParticleConfig {
	return ParticleConfig{Kind: "custom", Position: [3]float64{x, y, z}, Charge: q, Mass: gram, Radius: 0.1}
}

func fixed(p ParticleConfig) ParticleConfig {
	p.Fixed = true
	return p
}

func moving(p ParticleConfig, vx, vy, vz float64) ParticleConfig {
	p.Velocity = [3]float64{vx, vy, vz}
	return p
}

// Presets are ready-made scenes in a metre/microcoulomb/gram regime where
// motion is visible at frame-rate time steps.
var Presets = map[string]*Config{
	"dipole": preset("dipole", 0.01, 20,
		charge(microCoulomb, -1, 0, 0),
		charge(-microCoulomb, 1, 0, 0),
	),
	"like": preset("like", 0.01, 20,
		charge(microCoulomb, -0.5, 0, 0),
		charge(microCoulomb, 0.5, 0, 0),
	),
	"quadrupole": preset("quadrupole", 0.01, 20,
		fixed(charge(microCoulomb, -1, 0, -1)),
		fixed(charge(-microCoulomb, 1, 0, -1)),
		fixed(charge(microCoulomb, 1, 0, 1)),
		fixed(charge(-microCoulomb, -1, 0, 1)),
	),
	"triangle": preset("triangle", 0.01, 30,
		charge(microCoulomb, 0, 0, 1),
		charge(-microCoulomb, 0.866, 0, -0.5),
		charge(-microCoulomb, -0.866, 0, -0.5),
	),
	// Circular orbit: v = sqrt(k·|q₁q₂|/(m·r)) ≈ 2.998 m/s at r = 1 m.
	"orbit": preset("orbit", 0.005, 30,
		fixed(charge(microCoulomb, 0, 0, 0)),
		moving(charge(-microCoulomb, 1, 0, 0), 0, 0, 2.998),
	),
	"hydrogen": hydrogen(),
}

// hydrogen is a proton with an electron at the Bohr radius, run on atomic
// length and time scales.
func hydrogen() *Config {
	const bohr = 5.29177e-11
	cfg := preset("hydrogen", 1e-18, 1e-15,
		ParticleConfig{Kind: "proton", Fixed: true, Radius: 1e-11},
		ParticleConfig{Kind: "electron", Position: [3]float64{bohr, 0, 0}, Velocity: [3]float64{0, 0, 2.1877e6}, Radius: 5e-12},
	)
	cfg.Physics.CollisionPrevention = false
	cfg.FieldLines.StepSize = 2e-12
	cfg.FieldLines.MaxDistance = 1e-9
	cfg.FieldLines.MinFieldMagnitude = 1e3
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
