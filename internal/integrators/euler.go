package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// EulerStep advances one semi-implicit Euler step. The position update uses
// the new velocity, which keeps orbits bounded where explicit Euler spirals out.
func EulerStep(x, v, a dynamo.Vec3, dt float64) (dynamo.Vec3, dynamo.Vec3) {
	vNew := v.AddScaled(a, dt)
	xNew := x.AddScaled(vNew, dt)
	return xNew, vNew
}
