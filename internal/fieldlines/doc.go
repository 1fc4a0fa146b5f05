// Package fieldlines traces electric field lines through a particle set and
// caches the result between frames.
//
// Lines are integrated along the unit field direction with a four stage
// Runge-Kutta scheme, optionally shrinking the step where the field bends.
// Manager regenerates the cached set only when the scene has changed and a
// rate limiter allows it.
package fieldlines
