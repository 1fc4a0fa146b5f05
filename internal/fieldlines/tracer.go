package fieldlines

import (
	"fmt"
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/physics"
)

// goldenAngle is π(3 − √5).
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

const (
	curvatureProbe = 0.01
	stageMinField  = 1e-10
)

// FieldLine is one traced polyline. Points and Magnitudes are parallel.
type FieldLine struct {
	Points       []dynamo.Vec3 `json:"points"`
	Magnitudes   []float64     `json:"magnitudes"`
	SourceCharge float64       `json:"source_charge"`
	Complete     bool          `json:"complete"`
	Forward      bool          `json:"forward"`
	// EndsOnCharge is set when the line stopped inside an opposite-sign
	// particle rather than on weak field, distance or the step limit.
	EndsOnCharge bool          `json:"ends_on_charge"`
}

func (l FieldLine) Len() int { return len(l.Points) }

// Config controls seeding and integration of field lines.
type Config struct {
	SeedsPerParticle   int     `yaml:"seeds_per_particle" json:"seeds_per_particle"`
	MaxStepsPerLine    int     `yaml:"max_steps_per_line" json:"max_steps_per_line"`
	StepSize           float64 `yaml:"step_size" json:"step_size"`
	MinFieldMagnitude  float64 `yaml:"min_field_magnitude" json:"min_field_magnitude"`
	MaxDistance        float64 `yaml:"max_distance" json:"max_distance"`
	AdaptiveStep       bool    `yaml:"adaptive_step" json:"adaptive_step"`
	AdaptiveStepFactor float64 `yaml:"adaptive_step_factor" json:"adaptive_step_factor"`
}

func DefaultConfig() Config {
	return Config{
		SeedsPerParticle:   24,
		MaxStepsPerLine:    1000,
		StepSize:           0.01,
		MinFieldMagnitude:  1e-6,
		MaxDistance:        100,
		AdaptiveStep:       true,
		AdaptiveStepFactor: 10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.SeedsPerParticle < 0:
		return &dynamo.ConfigError{Field: "seeds_per_particle", Value: c.SeedsPerParticle, Wrapped: dynamo.ErrParameterBounds}
	case c.MaxStepsPerLine <= 0:
		return &dynamo.ConfigError{Field: "max_steps_per_line", Value: c.MaxStepsPerLine, Wrapped: dynamo.ErrParameterBounds}
	case c.StepSize <= 0:
		return &dynamo.ConfigError{Field: "step_size", Value: c.StepSize, Wrapped: dynamo.ErrParameterBounds}
	case c.MinFieldMagnitude < 0:
		return &dynamo.ConfigError{Field: "min_field_magnitude", Value: c.MinFieldMagnitude, Wrapped: dynamo.ErrParameterBounds}
	case c.MaxDistance <= 0:
		return &dynamo.ConfigError{Field: "max_distance", Value: c.MaxDistance, Wrapped: dynamo.ErrParameterBounds}
	case c.AdaptiveStepFactor < 0:
		return &dynamo.ConfigError{Field: "adaptive_step_factor", Value: c.AdaptiveStepFactor, Wrapped: dynamo.ErrParameterBounds}
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("seeds=%d steps=%d h=%g adaptive=%t", c.SeedsPerParticle, c.MaxStepsPerLine, c.StepSize, c.AdaptiveStep)
}

// Generate traces a single line from seed. Tracing stops when the field
// becomes too weak, the line leaves MaxDistance, it enters a particle of
// opposite sign to its source, or MaxStepsPerLine is reached; every stop
// marks the line complete.
func Generate(seed dynamo.Vec3, particles []physics.Particle, cfg Config, forward bool) FieldLine {
	line := FieldLine{
		Forward:      forward,
		SourceCharge: nearestCharge(seed, particles),
	}
	sourceSign := chargeSign(line.SourceCharge)

	pos := seed
	for step := 0; step < cfg.MaxStepsPerLine; step++ {
		e := physics.TotalField(pos, particles)
		mag := e.Length()

		if mag < cfg.MinFieldMagnitude {
			line.Complete = true
			break
		}
		if pos.Length() > cfg.MaxDistance {
			line.Complete = true
			break
		}
		if i := insideParticle(pos, particles); i >= 0 && sourceSign*particles[i].ChargeSign() < 0 {
			// Keep the terminal point so the line visibly reaches the sink.
			line.Points = append(line.Points, pos)
			line.Magnitudes = append(line.Magnitudes, mag)
			line.Complete = true
			line.EndsOnCharge = true
			break
		}

		line.Points = append(line.Points, pos)
		line.Magnitudes = append(line.Magnitudes, mag)

		dir := e.Scale(1 / mag)
		if !forward {
			dir = dir.Neg()
		}

		h := cfg.StepSize
		if cfg.AdaptiveStep {
			h /= 1 + estimateCurvature(pos, dir, particles, forward)*cfg.AdaptiveStepFactor
		}

		pos = directionRK4(pos, dir, h, particles, forward)
	}

	if !line.Complete && len(line.Points) >= cfg.MaxStepsPerLine {
		line.Complete = true
	}
	return line
}

// directionRK4 advances pos by h along the field direction, using dir as the
// first stage.
func directionRK4(pos, dir dynamo.Vec3, h float64, particles []physics.Particle, forward bool) dynamo.Vec3 {
	prev, first := dir, true
	stage := func(p dynamo.Vec3, _ float64) dynamo.Vec3 {
		if first {
			first = false
			return dir
		}
		prev = stageDirection(p, prev, particles, forward)
		return prev
	}
	return integrators.RK4Step(pos, 0, h, stage)
}

// stageDirection samples the oriented field direction at p, falling back to
// prev where the field is too weak to normalize.
func stageDirection(p, prev dynamo.Vec3, particles []physics.Particle, forward bool) dynamo.Vec3 {
	e := physics.TotalField(p, particles)
	mag := e.Length()
	if mag < stageMinField {
		return prev
	}
	d := e.Scale(1 / mag)
	if !forward {
		d = d.Neg()
	}
	return d
}

// estimateCurvature measures how far the oriented field direction turns over
// a short probe ahead of pos, per unit distance.
func estimateCurvature(pos, dir dynamo.Vec3, particles []physics.Particle, forward bool) float64 {
	ahead := physics.TotalField(pos.AddScaled(dir, curvatureProbe), particles)
	mag := ahead.Length()
	if mag < physics.MinFieldForDirection {
		return 0
	}
	aheadDir := ahead.Scale(1 / mag)
	if !forward {
		aheadDir = aheadDir.Neg()
	}
	return aheadDir.Sub(dir).Length() / curvatureProbe
}

// insideParticle returns the index of the first particle whose footprint
// (half its visual radius) contains p, or -1.
func insideParticle(p dynamo.Vec3, particles []physics.Particle) int {
	for i := range particles {
		if p.Dist(particles[i].Position) < particles[i].VisualRadius*0.5 {
			return i
		}
	}
	return -1
}

func nearestCharge(p dynamo.Vec3, particles []physics.Particle) float64 {
	var (
		q    float64
		best = math.Inf(1)
	)
	for i := range particles {
		if d := p.Dist(particles[i].Position); d < best {
			best = d
			q = particles[i].Charge
		}
	}
	return q
}

func chargeSign(q float64) int {
	switch {
	case q > physics.NeutralTolerance:
		return 1
	case q < -physics.NeutralTolerance:
		return -1
	}
	return 0
}

// GenerateSeedPoints spreads n points over the sphere of p's visual radius
// using a golden-angle spiral. The result is deterministic.
func GenerateSeedPoints(p *physics.Particle, n int) []dynamo.Vec3 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []dynamo.Vec3{p.Position.AddScaled(dynamo.Up, p.VisualRadius)}
	}

	points := make([]dynamo.Vec3, 0, n)
	for i := 0; i < n; i++ {
		theta := goldenAngle * float64(i)
		y := 1 - 2*float64(i)/float64(n-1)
		radius := math.Sqrt(math.Max(0, 1-y*y))

		unit := dynamo.Vec3{X: math.Cos(theta) * radius, Y: y, Z: math.Sin(theta) * radius}
		points = append(points, p.Position.AddScaled(unit, p.VisualRadius))
	}
	return points
}

// GenerateAll traces one forward line from every seed of every particle,
// dropping lines that terminated before a second point.
func GenerateAll(particles []physics.Particle, cfg Config) []FieldLine {
	lines := make([]FieldLine, 0, len(particles)*max(cfg.SeedsPerParticle, 0))
	for i := range particles {
		for _, seed := range GenerateSeedPoints(&particles[i], cfg.SeedsPerParticle) {
			line := Generate(seed, particles, cfg, true)
			if line.Len() > 1 {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
