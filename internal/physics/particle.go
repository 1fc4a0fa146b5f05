package physics

import "github.com/san-kum/chargesim/internal/dynamo"

// Color is a linear RGB triple in [0, 1].
type Color struct {
	R, G, B float64
}

var (
	PositiveColor = Color{1.0, 0.3, 0.2}
	NegativeColor = Color{0.2, 0.5, 1.0}
	NeutralColor  = Color{0.5, 0.5, 0.5}
)

// HistoryPoint is one recorded kinematic sample.
type HistoryPoint struct {
	Position  dynamo.Vec3
	Velocity  dynamo.Vec3
	Timestamp float64
}

// Particle is a point charge. Fixed and Dragged particles are skipped by
// integration but still act on the others through their field.
type Particle struct {
	ID           uint64
	Position     dynamo.Vec3
	Velocity     dynamo.Vec3
	Acceleration dynamo.Vec3
	Charge       float64
	Mass         float64
	VisualRadius float64
	Color        Color
	Fixed        bool
	Dragged      bool
	History      *dynamo.Ring[HistoryPoint]
}

func NewElectron(pos dynamo.Vec3) Particle {
	return NewCustom(pos, -ElementaryCharge, ElectronMass)
}

func NewProton(pos dynamo.Vec3) Particle {
	return NewCustom(pos, ElementaryCharge, ProtonMass)
}

// NewCustom creates a particle with charge q in coulombs and mass m in kilograms.
func NewCustom(pos dynamo.Vec3, q, m float64) Particle {
	p := Particle{
		Position:     pos,
		Charge:       q,
		Mass:         m,
		VisualRadius: DefaultVisualRadius,
		History:      dynamo.NewRing[HistoryPoint](HistoryCapacity),
	}
	p.UpdateColor()
	return p
}

// ChargeSign returns +1, -1, or 0 for charges within NeutralTolerance of zero.
func (p *Particle) ChargeSign() int {
	switch {
	case p.Charge > NeutralTolerance:
		return 1
	case p.Charge < -NeutralTolerance:
		return -1
	}
	return 0
}

// UpdateColor derives Color from the charge sign.
func (p *Particle) UpdateColor() {
	switch p.ChargeSign() {
	case 1:
		p.Color = PositiveColor
	case -1:
		p.Color = NegativeColor
	default:
		p.Color = NeutralColor
	}
}

// Integrable reports whether the physics step may write this particle.
func (p *Particle) Integrable() bool {
	return !p.Fixed && !p.Dragged
}

// RecordHistory appends the current state stamped with timestamp.
func (p *Particle) RecordHistory(timestamp float64) {
	if p.History == nil {
		p.History = dynamo.NewRing[HistoryPoint](HistoryCapacity)
	}
	p.History.Push(HistoryPoint{Position: p.Position, Velocity: p.Velocity, Timestamp: timestamp})
}

func (p *Particle) ClearHistory() {
	if p.History != nil {
		p.History.Clear()
	}
}

// Clone returns a deep copy; the history buffer is not shared.
func (p Particle) Clone() Particle {
	p.History = p.History.Clone()
	return p
}
