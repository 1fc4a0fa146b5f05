package metrics

import "github.com/san-kum/chargesim/internal/physics"

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(particles []physics.Particle, t float64)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded by a headless run.
func Standard() []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewMaxSpeed(),
		NewStability(),
	}
}
