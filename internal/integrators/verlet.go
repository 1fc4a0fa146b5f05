package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// VerletStep advances one velocity Verlet step with a single acceleration
// sample: v' = v + a·dt, x' = x + v·dt + ½·a·dt².
func VerletStep(x, v, a dynamo.Vec3, dt float64) (dynamo.Vec3, dynamo.Vec3) {
	vNew := v.AddScaled(a, dt)
	xNew := x.AddScaled(v, dt).AddScaled(a, 0.5*dt*dt)
	return xNew, vNew
}
