package scene

import (
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

// PickResult describes the nearest particle hit by a ray.
type PickResult struct {
	Hit      bool
	Index    int
	Point    dynamo.Vec3
	Distance float64
}

// Pick returns the particle whose visual sphere the ray enters first.
func Pick(ray dynamo.Ray, particles []physics.Particle) PickResult {
	result := PickResult{Index: -1, Distance: math.Inf(1)}

	for i := range particles {
		p := &particles[i]
		hit, ok := RaySphere(ray, p.Position, p.VisualRadius)
		if !ok {
			continue
		}
		d := ray.Origin.Dist(hit)
		if d < result.Distance {
			result = PickResult{Hit: true, Index: i, Point: hit, Distance: d}
		}
	}
	return result
}

// RaySphere intersects the ray with a sphere and returns the nearest point in
// front of the origin. A ray starting inside the sphere hits its far side.
func RaySphere(ray dynamo.Ray, center dynamo.Vec3, radius float64) (dynamo.Vec3, bool) {
	oc := ray.Origin.Sub(center)

	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return dynamo.Vec3{}, false
	}
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return dynamo.Vec3{}, false
	}

	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)

	t := t1
	if t1 <= 0 {
		t = t2
	}
	if t < 0 {
		return dynamo.Vec3{}, false
	}
	return ray.At(t), true
}
