package metrics

import (
	"github.com/san-kum/chargesim/internal/physics"
)

// Stability is the fraction of observed frames in which every particle had a
// finite position and velocity.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{name: "stability"}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(particles []physics.Particle, t float64) {
	s.samples++
	for i := range particles {
		if !particles[i].Position.IsValid() || !particles[i].Velocity.IsValid() {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
