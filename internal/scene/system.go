package scene

import (
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/physics"
	"go.uber.org/zap"
)

const (
	DefaultMinSeparation = 1e-12
	// repulsionStrength scales the soft contact force per meter of overlap.
	repulsionStrength = 1e-10
)

// Options configures a System.
type Options struct {
	Method              integrators.Method
	CollisionPrevention bool
	MinSeparation       float64
	RecordHistory       bool
	Logger              *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Method:              integrators.Verlet,
		CollisionPrevention: true,
		MinSeparation:       DefaultMinSeparation,
	}
}

// System owns the particle collection and advances it under mutual
// Coulomb forces.
type System struct {
	particles []physics.Particle
	initial   []physics.Particle
	opts      Options
	nextID    uint64
	time      float64
	log       *zap.Logger
}

func New(opts Options) *System {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		particles: make([]physics.Particle, 0),
		initial:   make([]physics.Particle, 0),
		opts:      opts,
		nextID:    1,
		log:       log.Named("scene"),
	}
}

// Add appends p to both the live and the initial set and returns its ID.
func (s *System) Add(p physics.Particle) uint64 {
	p.ID = s.nextID
	s.nextID++
	if p.History == nil {
		p.History = dynamo.NewRing[physics.HistoryPoint](physics.HistoryCapacity)
	}
	s.particles = append(s.particles, p)
	s.initial = append(s.initial, p.Clone())

	s.log.Debug("added particle",
		zap.Uint64("id", p.ID),
		zap.Float64("charge", p.Charge),
		zap.Float64("mass", p.Mass))
	return p.ID
}

// Remove deletes the particle at index. Out of range indices are ignored.
func (s *System) Remove(index int) {
	if index < 0 || index >= len(s.particles) {
		return
	}
	s.particles = append(s.particles[:index], s.particles[index+1:]...)
	if index < len(s.initial) {
		s.initial = append(s.initial[:index], s.initial[index+1:]...)
	}
	s.log.Debug("removed particle", zap.Int("index", index))
}

// Particles exposes the live collection. Callers on the frame goroutine may
// write through it; read-only consumers should use Snapshot.
func (s *System) Particles() []physics.Particle { return s.particles }

func (s *System) Len() int { return len(s.particles) }

// Time is the simulated time accumulated by Step.
func (s *System) Time() float64 { return s.time }

func (s *System) Method() integrators.Method { return s.opts.Method }

func (s *System) SetMethod(m integrators.Method)  { s.opts.Method = m }
func (s *System) SetCollisionPrevention(on bool)  { s.opts.CollisionPrevention = on }
func (s *System) SetMinSeparation(minSep float64) { s.opts.MinSeparation = minSep }
func (s *System) SetRecordHistory(on bool)        { s.opts.RecordHistory = on }

// Snapshot returns a deep copy of the live particles.
func (s *System) Snapshot() []physics.Particle {
	out := make([]physics.Particle, len(s.particles))
	for i := range s.particles {
		out[i] = s.particles[i].Clone()
	}
	return out
}

// Lookup returns the live particle with the given ID, or nil.
func (s *System) Lookup(id uint64) *physics.Particle {
	for i := range s.particles {
		if s.particles[i].ID == id {
			return &s.particles[i]
		}
	}
	return nil
}

// IndexOf returns the index of the particle with the given ID, or -1.
func (s *System) IndexOf(id uint64) int {
	for i := range s.particles {
		if s.particles[i].ID == id {
			return i
		}
	}
	return -1
}

// Step advances the simulation by dt seconds.
func (s *System) Step(dt float64) {
	if len(s.particles) == 0 {
		return
	}

	for i := range s.particles {
		p := &s.particles[i]
		if !p.Integrable() {
			continue
		}
		force := s.netForce(p)
		p.Acceleration = force.Scale(1 / p.Mass)
	}

	for i := range s.particles {
		p := &s.particles[i]
		if !p.Integrable() {
			continue
		}
		p.Position, p.Velocity = s.opts.Method.Step(p.Position, p.Velocity, p.Acceleration, dt)
	}

	// Softening lands in the accelerations after integration, so it shapes
	// the next tick rather than this one.
	if s.opts.CollisionPrevention {
		s.applyCollisionPrevention()
	}

	s.clampVelocities()
	s.time += dt

	if s.opts.RecordHistory {
		for i := range s.particles {
			s.particles[i].RecordHistory(s.time)
		}
	}
}

// Reset restores every particle to the state it was added in. The restored
// particles are not flagged as dragged, so a DragController still holding one
// of their IDs cancels on its next call.
func (s *System) Reset() {
	s.particles = make([]physics.Particle, len(s.initial))
	for i := range s.initial {
		p := s.initial[i].Clone()
		p.Velocity = dynamo.Vec3{}
		p.Acceleration = dynamo.Vec3{}
		p.Dragged = false
		p.ClearHistory()
		s.particles[i] = p
	}
	s.time = 0
	s.log.Info("particle system reset", zap.Int("particles", len(s.particles)))
}

// netForce is q·E at the particle's position.
func (s *System) netForce(target *physics.Particle) dynamo.Vec3 {
	e := physics.TotalField(target.Position, s.particles)
	return e.Scale(target.Charge)
}

func (s *System) applyCollisionPrevention() {
	for i := 0; i < len(s.particles); i++ {
		for j := i + 1; j < len(s.particles); j++ {
			p1, p2 := &s.particles[i], &s.particles[j]
			if !p1.Integrable() || !p2.Integrable() {
				continue
			}

			r := p2.Position.Sub(p1.Position)
			distance := r.Length()
			if distance >= s.opts.MinSeparation || distance <= physics.MinSafeDistance {
				continue
			}

			overlap := s.opts.MinSeparation - distance
			repulsion := r.Scale(repulsionStrength * overlap / distance)
			p1.Acceleration = p1.Acceleration.Sub(repulsion.Scale(1 / p1.Mass))
			p2.Acceleration = p2.Acceleration.Add(repulsion.Scale(1 / p2.Mass))
		}
	}
}

func (s *System) clampVelocities() {
	for i := range s.particles {
		p := &s.particles[i]
		if !p.Integrable() {
			continue
		}
		p.Velocity = p.Velocity.ClampLength(physics.MaxVelocity)
	}
}
