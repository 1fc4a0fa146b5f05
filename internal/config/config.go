package config

import (
	"fmt"
	"os"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultFrameRate = 60.0
	DefaultScene     = "dipole"
)

type Config struct {
	Scene      string           `yaml:"scene"`
	Integrator string           `yaml:"integrator"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	FrameRate  float64          `yaml:"frame_rate"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Drag       DragConfig       `yaml:"drag"`
	FieldLines FieldLineConfig  `yaml:"field_lines"`
	Logging    LoggingConfig    `yaml:"logging"`
	Particles  []ParticleConfig `yaml:"particles"`
}

type PhysicsConfig struct {
	CollisionPrevention bool    `yaml:"collision_prevention"`
	MinSeparation       float64 `yaml:"min_separation"`
	RecordHistory       bool    `yaml:"record_history"`
	Retarded            bool    `yaml:"retarded"`
}

type DragConfig struct {
	MaxReleaseSpeed float64 `yaml:"max_release_speed"`
}

type FieldLineConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MaxRegenerationRate float64 `yaml:"max_regeneration_rate"`

	fieldlines.Config `yaml:",inline"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ParticleConfig describes one particle. Kind "electron" and "proton" fix
// charge and mass; "custom" takes them from Charge and Mass.
type ParticleConfig struct {
	Kind     string     `yaml:"kind"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
	Charge   float64    `yaml:"charge,omitempty"`
	Mass     float64    `yaml:"mass,omitempty"`
	Radius   float64    `yaml:"radius,omitempty"`
	Fixed    bool       `yaml:"fixed,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:      DefaultScene,
		Integrator: integrators.Verlet.String(),
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		FrameRate:  DefaultFrameRate,
		Physics: PhysicsConfig{
			CollisionPrevention: true,
			MinSeparation:       1e-12,
		},
		Drag: DragConfig{
			MaxReleaseSpeed: physics.MaxReleaseSpeed,
		},
		FieldLines: FieldLineConfig{
			Enabled:             true,
			MaxRegenerationRate: fieldlines.DefaultMaxRegenerationRate,
			Config:              fieldlines.DefaultConfig(),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
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

func bounds(field string, value any) error {
	return &dynamo.ConfigError{Field: field, Value: value, Wrapped: dynamo.ErrParameterBounds}
}

// Validate checks every value the simulation would otherwise trust.
func (c *Config) Validate() error {
	if _, err := integrators.ParseMethod(c.Integrator); err != nil {
		return &dynamo.ConfigError{Field: "integrator", Value: c.Integrator, Wrapped: err}
	}
	switch {
	case c.Dt <= 0:
		return bounds("dt", c.Dt)
	case c.Duration <= 0:
		return bounds("duration", c.Duration)
	case c.FrameRate <= 0:
		return bounds("frame_rate", c.FrameRate)
	case c.Physics.MinSeparation < 0:
		return bounds("physics.min_separation", c.Physics.MinSeparation)
	case c.Drag.MaxReleaseSpeed <= 0:
		return bounds("drag.max_release_speed", c.Drag.MaxReleaseSpeed)
	case c.FieldLines.MaxRegenerationRate <= 0:
		return bounds("field_lines.max_regeneration_rate", c.FieldLines.MaxRegenerationRate)
	}
	if err := c.FieldLines.Config.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	for i, p := range c.Particles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("particles[%d]: %w", i, err)
		}
	}
	return nil
}

func (l LoggingConfig) Validate() error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &dynamo.ConfigError{Field: "logging.level", Value: l.Level, Wrapped: dynamo.ErrUnknownName}
	}
	switch l.Format {
	case "", "console", "json":
	default:
		return &dynamo.ConfigError{Field: "logging.format", Value: l.Format, Wrapped: dynamo.ErrUnknownName}
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return bounds("logging.rotation", []int{l.MaxSizeMB, l.MaxBackups, l.MaxAgeDays})
	}
	return nil
}

func (p ParticleConfig) Validate() error {
	switch p.Kind {
	case "electron", "proton":
	case "", "custom":
		if p.Mass <= 0 {
			return bounds("mass", p.Mass)
		}
	default:
		return &dynamo.ConfigError{Field: "kind", Value: p.Kind, Wrapped: dynamo.ErrUnknownName}
	}
	if p.Radius < 0 {
		return bounds("radius", p.Radius)
	}
	return nil
}

// Particle builds the described particle.
func (p ParticleConfig) Particle() (physics.Particle, error) {
	if err := p.Validate(); err != nil {
		return physics.Particle{}, err
	}
	pos := vec(p.Position)

	var out physics.Particle
	switch p.Kind {
	case "electron":
		out = physics.NewElectron(pos)
	case "proton":
		out = physics.NewProton(pos)
	default:
		out = physics.NewCustom(pos, p.Charge, p.Mass)
	}
	out.Velocity = vec(p.Velocity)
	out.Fixed = p.Fixed
	if p.Radius > 0 {
		out.VisualRadius = p.Radius
	}
	return out, nil
}

// BuildParticles turns the configured particle list into particles.
func (c *Config) BuildParticles() ([]physics.Particle, error) {
	out := make([]physics.Particle, 0, len(c.Particles))
	for i, pc := range c.Particles {
		p, err := pc.Particle()
		if err != nil {
			return nil, fmt.Errorf("particles[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Config) Method() integrators.Method {
	m, err := integrators.ParseMethod(c.Integrator)
	if err != nil {
		return integrators.Verlet
	}
	return m
}

// Tracer returns the field-line tracing parameters.
func (c *Config) Tracer() fieldlines.Config {
	return c.FieldLines.Config
}

// Steps is the number of fixed steps covering Duration.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Particles = append([]ParticleConfig(nil), c.Particles...)
	return &out
}

func vec(a [3]float64) dynamo.Vec3 {
	return dynamo.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
