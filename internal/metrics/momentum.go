package metrics

import (
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

// TotalMomentum sums m·v over the free particles. Fixed particles are held
// by an external force and would only add noise.
func TotalMomentum(particles []physics.Particle) dynamo.Vec3 {
	var p dynamo.Vec3
	for i := range particles {
		if particles[i].Fixed {
			continue
		}
		p = p.AddScaled(particles[i].Velocity, particles[i].Mass)
	}
	return p
}

// Momentum reports the magnitude of total momentum at the last frame.
type Momentum struct {
	name string
	last float64
}

func NewMomentum() *Momentum { return &Momentum{name: "momentum"} }

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(particles []physics.Particle, t float64) {
	m.last = TotalMomentum(particles).Length()
}

func (m *Momentum) Value() float64 { return m.last }
func (m *Momentum) Reset()         { m.last = 0 }

// MaxSpeed reports the fastest particle speed seen.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{name: "max_speed"} }

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(particles []physics.Particle, t float64) {
	for i := range particles {
		m.max = math.Max(m.max, particles[i].Velocity.Length())
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
