package scene

import (
	"math"
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

func sphere(pos dynamo.Vec3, r float64) physics.Particle {
	p := physics.NewCustom(pos, 1, 1)
	p.VisualRadius = r
	return p
}

func TestPick_Nearest(t *testing.T) {
	particles := []physics.Particle{
		sphere(dynamo.Vec3{X: 0, Y: 0, Z: -10}, 1),
		sphere(dynamo.Vec3{X: 0, Y: 0, Z: -5}, 1),
		sphere(dynamo.Vec3{X: 5, Y: 0, Z: -2}, 1),
	}
	ray := dynamo.NewRay(dynamo.Vec3{}, dynamo.Vec3{X: 0, Y: 0, Z: -1})

	res := Pick(ray, particles)
	if !res.Hit || res.Index != 1 {
		t.Fatalf("expected hit on index 1, got %+v", res)
	}
	if math.Abs(res.Distance-4) > 1e-12 {
		t.Errorf("distance = %v, want 4", res.Distance)
	}
	if math.Abs(res.Point.Z+4) > 1e-12 {
		t.Errorf("hit point = %v", res.Point)
	}
}

func TestPick_Miss(t *testing.T) {
	particles := []physics.Particle{sphere(dynamo.Vec3{X: 0, Y: 0, Z: 5}, 1)}

	tests := []struct {
		name string
		ray  dynamo.Ray
	}{
		{"behind origin", dynamo.NewRay(dynamo.Vec3{}, dynamo.Vec3{X: 0, Y: 0, Z: -1})},
		{"passes beside", dynamo.NewRay(dynamo.Vec3{X: 3, Y: 0, Z: 0}, dynamo.Vec3{X: 0, Y: 0, Z: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Pick(tt.ray, particles)
			if res.Hit || res.Index != -1 {
				t.Errorf("expected miss, got %+v", res)
			}
		})
	}
}

func TestRaySphere_FromInside(t *testing.T) {
	hit, ok := RaySphere(dynamo.NewRay(dynamo.Vec3{}, dynamo.Vec3{X: 1, Y: 0, Z: 0}), dynamo.Vec3{}, 2)
	if !ok || math.Abs(hit.X-2) > 1e-12 {
		t.Errorf("expected far-side hit at x=2, got %v %v", hit, ok)
	}
}
