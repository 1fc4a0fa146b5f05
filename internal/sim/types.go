package sim

import (
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/physics"
)

// Observer is notified after every simulated frame.
type Observer interface {
	OnFrame(particles []physics.Particle, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(particles []physics.Particle, t float64)

func (f ObserverFunc) OnFrame(particles []physics.Particle, t float64) { f(particles, t) }

// RunConfig controls a headless run.
type RunConfig struct {
	Dt       float64
	Duration float64
	// RecordEvery keeps one frame in RecordEvery; values below 1 keep all.
	RecordEvery int
	// Probe, when set, records the retarded field magnitude there each frame.
	Probe *dynamo.Vec3
	// ValidateState stops the run at the first NaN or Inf.
	ValidateState bool
}

// Result holds the recorded trajectory of a headless run.
type Result struct {
	Scene      string
	Integrator string
	Times      []float64
	Positions  [][]dynamo.Vec3
	Energies   []float64
	Probe      []float64
	FieldLines []fieldlines.FieldLine
	Metrics    map[string]float64
	StepsTaken int
}

// Frames is the number of recorded frames.
func (r *Result) Frames() int { return len(r.Times) }

// Trajectory returns the recorded positions of one particle.
func (r *Result) Trajectory(index int) []dynamo.Vec3 {
	out := make([]dynamo.Vec3, 0, len(r.Positions))
	for _, frame := range r.Positions {
		if index < len(frame) {
			out = append(out, frame[index])
		}
	}
	return out
}
