package dynamo

import "math"

// Vec3 is a double precision 3D vector in SI units.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero = Vec3{}
	Up   = Vec3{0, 1, 0}
)

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LengthSq() float64    { return v.Dot(v) }
func (v Vec3) Length() float64      { return math.Sqrt(v.LengthSq()) }
func (v Vec3) Dist(o Vec3) float64  { return v.Sub(o).Length() }
func (v Vec3) IsZero() bool         { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vec3) AddScaled(o Vec3, s float64) Vec3 {
	return Vec3{v.X + o.X*s, v.Y + o.Y*s, v.Z + o.Z*s}
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Normalize returns the unit vector, or the zero vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

// ClampLength rescales v to max when it is longer, keeping its direction.
func (v Vec3) ClampLength(max float64) Vec3 {
	if l := v.Length(); l > max && l > 0 {
		return v.Scale(max / l)
	}
	return v
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates between v (alpha 0) and o (alpha 1).
func (v Vec3) Lerp(o Vec3, alpha float64) Vec3 {
	return v.Add(o.Sub(v).Scale(alpha))
}

func (v Vec3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

// Ray is a half line with a unit direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay normalizes dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.AddScaled(r.Direction, t)
}
