package dynamo

import (
	"math"
	"testing"
)

func TestVec3_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		valid bool
	}{
		{"zero", Vec3{}, true},
		{"normal", Vec3{1, 2, 3}, true},
		{"with NaN", Vec3{1, math.NaN(), 0}, false},
		{"with +Inf", Vec3{math.Inf(1), 0, 0}, false},
		{"with -Inf", Vec3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_Length(t *testing.T) {
	tests := []struct {
		v        Vec3
		expected float64
	}{
		{Vec3{3, 4, 0}, 5.0},
		{Vec3{1, 0, 0}, 1.0},
		{Vec3{0, 0, 0}, 0.0},
		{Vec3{2, 3, 6}, 7.0},
	}

	for _, tt := range tests {
		if got := tt.v.Length(); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Length(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if diff := b.Sub(a); diff != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", diff)
	}
	if scaled := a.Scale(2); scaled != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if d := a.Dot(b); d != 32 {
		t.Errorf("Dot failed: got %v", d)
	}
	if c := (Vec3{1, 0, 0}).Cross(Vec3{0, 1, 0}); c != (Vec3{0, 0, 1}) {
		t.Errorf("Cross failed: got %v", c)
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if n := (Vec3{}).Normalize(); n != (Vec3{}) {
		t.Errorf("expected zero vector, got %v", n)
	}
}

func TestVec3_ClampLength(t *testing.T) {
	v := Vec3{30, 40, 0}.ClampLength(5)
	if math.Abs(v.Length()-5) > 1e-12 {
		t.Errorf("expected length 5, got %v", v.Length())
	}
	if math.Abs(v.X/v.Y-0.75) > 1e-12 {
		t.Errorf("direction not preserved: %v", v)
	}

	short := Vec3{1, 0, 0}
	if got := short.ClampLength(5); got != short {
		t.Errorf("short vector changed: %v", got)
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(Vec3{1, 1, 1}, Vec3{0, 0, -10})
	if math.Abs(r.Direction.Length()-1) > 1e-12 {
		t.Fatalf("direction not normalized: %v", r.Direction)
	}
	if p := r.At(2); p != (Vec3{1, 1, -1}) {
		t.Errorf("At(2) = %v", p)
	}
}
