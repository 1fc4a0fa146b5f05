package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// Derivative returns dy/dt at state y and time t.
type Derivative func(y dynamo.Vec3, t float64) dynamo.Vec3

// RK4Step advances y by one classical Runge-Kutta step of size dt.
func RK4Step(y dynamo.Vec3, t, dt float64, f Derivative) dynamo.Vec3 {
	halfDt := dt * 0.5

	k1 := f(y, t)
	k2 := f(y.AddScaled(k1, halfDt), t+halfDt)
	k3 := f(y.AddScaled(k2, halfDt), t+halfDt)
	k4 := f(y.AddScaled(k3, dt), t+dt)

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return y.AddScaled(sum, dt/6.0)
}
