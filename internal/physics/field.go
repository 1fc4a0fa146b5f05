package physics

import (
	"math"
	"sort"

	"github.com/san-kum/chargesim/internal/dynamo"
)

// FieldFromCharge returns the Coulomb field k·q/r²·r̂ at evalPoint from a
// point charge q at chargePos. Closer than MinSafeDistance it returns zero.
func FieldFromCharge(evalPoint, chargePos dynamo.Vec3, q float64) dynamo.Vec3 {
	r := evalPoint.Sub(chargePos)
	rMag := r.Length()
	if rMag < MinSafeDistance {
		return dynamo.Vec3{}
	}
	// k·q/r² · r/|r|
	return r.Scale(Coulomb * q / (rMag * rMag * rMag))
}

// TotalField superposes the fields of all particles at evalPoint, skipping
// any particle sitting on the evaluation point.
func TotalField(evalPoint dynamo.Vec3, particles []Particle) dynamo.Vec3 {
	var e dynamo.Vec3
	for i := range particles {
		p := &particles[i]
		if evalPoint.Dist(p.Position) < MinSafeDistance {
			continue
		}
		e = e.Add(FieldFromCharge(evalPoint, p.Position, p.Charge))
	}
	return e
}

func FieldMagnitude(evalPoint dynamo.Vec3, particles []Particle) float64 {
	return TotalField(evalPoint, particles).Length()
}

// FieldDirection returns the unit field vector, or zero where the field is
// weaker than MinFieldForDirection.
func FieldDirection(evalPoint dynamo.Vec3, particles []Particle) dynamo.Vec3 {
	e := TotalField(evalPoint, particles)
	mag := e.Length()
	if mag < MinFieldForDirection {
		return dynamo.Vec3{}
	}
	return e.Scale(1 / mag)
}

// RetardedField evaluates the field of source at evalPoint using its position
// at the retarded time t − |r|/c, reconstructed from the source's history.
func RetardedField(evalPoint dynamo.Vec3, currentTime float64, source *Particle) dynamo.Vec3 {
	distance := evalPoint.Dist(source.Position)
	retardedTime := currentTime - distance/SpeedOfLight
	pos := PositionAt(source, retardedTime)
	return FieldFromCharge(evalPoint, pos, source.Charge)
}

// RetardedTotalField superposes RetardedField over all particles.
func RetardedTotalField(evalPoint dynamo.Vec3, currentTime float64, particles []Particle) dynamo.Vec3 {
	var e dynamo.Vec3
	for i := range particles {
		p := &particles[i]
		if evalPoint.Dist(p.Position) < MinSafeDistance {
			continue
		}
		e = e.Add(RetardedField(evalPoint, currentTime, p))
	}
	return e
}

// PositionAt looks up where p was at time t. The nearest sample is used when
// it lies within exactTimeMatch of t; otherwise the two samples bracketing t
// are interpolated linearly. Times outside the recorded span clamp to the
// nearest end, and an empty history yields the current position.
func PositionAt(p *Particle, t float64) dynamo.Vec3 {
	h := p.History
	if h == nil || h.Len() == 0 {
		return p.Position
	}

	n := h.Len()
	// first sample at or after t
	idx := sort.Search(n, func(i int) bool { return h.At(i).Timestamp >= t })

	nearest := idx
	switch {
	case idx == n:
		nearest = n - 1
	case idx > 0 && t-h.At(idx-1).Timestamp < h.At(idx).Timestamp-t:
		nearest = idx - 1
	}

	best := h.At(nearest)
	if math.Abs(best.Timestamp-t) < exactTimeMatch || idx == 0 || idx == n {
		return best.Position
	}

	before, after := h.At(idx-1), h.At(idx)
	span := after.Timestamp - before.Timestamp
	if span < exactTimeMatch {
		return best.Position
	}
	alpha := (t - before.Timestamp) / span
	return before.Position.Lerp(after.Position, alpha)
}

// PotentialEnergy is the electrostatic energy Σ k·qi·qj/r over distinct pairs.
func PotentialEnergy(particles []Particle) float64 {
	pe := 0.0
	for i := 0; i < len(particles); i++ {
		for j := i + 1; j < len(particles); j++ {
			r := particles[i].Position.Dist(particles[j].Position)
			if r < MinSafeDistance {
				continue
			}
			pe += Coulomb * particles[i].Charge * particles[j].Charge / r
		}
	}
	return pe
}

// KineticEnergy is Σ ½mv² over all particles.
func KineticEnergy(particles []Particle) float64 {
	ke := 0.0
	for i := range particles {
		ke += 0.5 * particles[i].Mass * particles[i].Velocity.LengthSq()
	}
	return ke
}
