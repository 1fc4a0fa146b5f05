package physics

import (
	"math"
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
)

func TestFieldFromCharge_Magnitude(t *testing.T) {
	tests := []struct {
		name string
		q    float64
		sign float64
	}{
		{"positive points away", 1.0, 1},
		{"negative points toward", -1.0, -1},
		{"small positive", 1e-9, 1},
		{"small negative", -1e-9, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FieldFromCharge(dynamo.Vec3{X: 1, Y: 0, Z: 0}, dynamo.Vec3{}, tt.q)

			expected := Coulomb * math.Abs(tt.q)
			if math.Abs(e.Length()-expected) > expected*0.001 {
				t.Errorf("magnitude %e, expected %e", e.Length(), expected)
			}
			if math.Copysign(1, e.X) != tt.sign {
				t.Errorf("wrong direction: %v", e)
			}
			if math.Abs(e.Y) > 1e-6 || math.Abs(e.Z) > 1e-6 {
				t.Errorf("off-axis components: %v", e)
			}
		})
	}
}

func TestFieldFromCharge_AtChargeIsZero(t *testing.T) {
	pos := dynamo.Vec3{X: 0.3, Y: -2, Z: 5}
	e := FieldFromCharge(pos, pos, 1.0)

	if e != (dynamo.Vec3{}) {
		t.Errorf("expected exact zero vector, got %v", e)
	}
	if !e.IsValid() {
		t.Error("field contains NaN or Inf")
	}
}

func TestTotalField_OppositeCharges(t *testing.T) {
	particles := []Particle{
		NewCustom(dynamo.Vec3{X: 1, Y: 0, Z: 0}, 1.0, 1.0),
		NewCustom(dynamo.Vec3{X: -1, Y: 0, Z: 0}, -1.0, 1.0),
	}

	e := TotalField(dynamo.Vec3{}, particles)
	if e.Length() < 1e-10 {
		t.Fatal("expected non-zero field at the midpoint")
	}
	// from +x (positive) toward -x (negative)
	if e.X >= 0 {
		t.Errorf("field should point toward the negative charge, got %v", e)
	}

	expected := 2 * Coulomb
	if math.Abs(e.Length()-expected) > expected*0.001 {
		t.Errorf("magnitude %e, expected %e", e.Length(), expected)
	}
}

func TestTotalField_ElectronProton(t *testing.T) {
	particles := []Particle{
		NewElectron(dynamo.Vec3{X: -1, Y: 0, Z: 0}),
		NewProton(dynamo.Vec3{X: 1, Y: 0, Z: 0}),
	}
	e := TotalField(dynamo.Vec3{}, particles)
	if e.Length() < 1e-30 || e.X >= 0 {
		t.Errorf("expected field toward electron, got %v", e)
	}
}

func TestTotalField_SkipsSelf(t *testing.T) {
	particles := []Particle{
		NewCustom(dynamo.Vec3{}, 1.0, 1.0),
		NewCustom(dynamo.Vec3{X: 2, Y: 0, Z: 0}, 1.0, 1.0),
	}

	e := TotalField(particles[0].Position, particles)
	want := FieldFromCharge(particles[0].Position, particles[1].Position, 1.0)
	if e != want {
		t.Errorf("self contribution not skipped: got %v, want %v", e, want)
	}
}

func TestFieldDirection_WeakFieldIsZero(t *testing.T) {
	if d := FieldDirection(dynamo.Vec3{X: 1, Y: 2, Z: 3}, nil); d != (dynamo.Vec3{}) {
		t.Errorf("expected zero direction with no charges, got %v", d)
	}

	particles := []Particle{NewCustom(dynamo.Vec3{}, 1.0, 1.0)}
	d := FieldDirection(dynamo.Vec3{X: 0, Y: 2, Z: 0}, particles)
	if math.Abs(d.Length()-1) > 1e-12 || d.Y <= 0 {
		t.Errorf("expected unit +y direction, got %v", d)
	}
}

func TestRetardedField_EmptyHistoryUsesCurrentPosition(t *testing.T) {
	p := NewCustom(dynamo.Vec3{}, 1.0, 1.0)
	eval := dynamo.Vec3{X: 1, Y: 0, Z: 0}

	got := RetardedField(eval, 10, &p)
	want := FieldFromCharge(eval, p.Position, p.Charge)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPositionAt(t *testing.T) {
	p := NewCustom(dynamo.Vec3{}, 1.0, 1.0)
	for i := 0; i <= 4; i++ {
		p.Position = dynamo.Vec3{X: float64(i)}
		p.RecordHistory(float64(i))
	}

	tests := []struct {
		name string
		t    float64
		x    float64
	}{
		{"exact match", 2.0, 2.0},
		{"interpolated", 2.25, 2.25},
		{"interpolated near next", 2.9, 2.9},
		{"before history clamps", -1.0, 0.0},
		{"after history clamps", 9.0, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionAt(&p, tt.t)
			if math.Abs(got.X-tt.x) > 1e-12 {
				t.Errorf("PositionAt(%v) = %v, want x=%v", tt.t, got, tt.x)
			}
		})
	}
}

func TestRetardedField_UsesDelayedPosition(t *testing.T) {
	p := NewCustom(dynamo.Vec3{}, 1.0, 1.0)
	p.RecordHistory(0)
	p.Position = dynamo.Vec3{X: 0, Y: 0, Z: 10}
	p.RecordHistory(1)

	// Half a light-second away at t = 1, the source is seen where it was at
	// t = 0.5, halfway along its recorded path.
	eval := dynamo.Vec3{X: SpeedOfLight / 2, Y: 0, Z: 10}
	got := RetardedField(eval, 1.0, &p)
	want := FieldFromCharge(eval, dynamo.Vec3{X: 0, Y: 0, Z: 5}, 1.0)

	if want.Z == 0 {
		t.Fatal("test geometry should give a z component")
	}
	if math.Abs(got.Z-want.Z) > math.Abs(want.Z)*1e-6 {
		t.Errorf("got %v, want %v", got, want)
	}
	if current := FieldFromCharge(eval, p.Position, 1.0); current.Z != 0 {
		t.Errorf("current-position field should have no z component, got %v", current)
	}
}

func TestPotentialEnergy(t *testing.T) {
	particles := []Particle{
		NewCustom(dynamo.Vec3{}, 1e-6, 1),
		NewCustom(dynamo.Vec3{X: 2, Y: 0, Z: 0}, -1e-6, 1),
	}
	expected := -Coulomb * 1e-12 / 2
	if got := PotentialEnergy(particles); math.Abs(got-expected) > math.Abs(expected)*1e-12 {
		t.Errorf("PotentialEnergy = %e, want %e", got, expected)
	}
}
