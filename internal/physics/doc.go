// Package physics holds the point charge model and the electrostatic field.
//
//   - [Particle]: a charge with kinematics, display attributes and history
//   - [FieldFromCharge], [TotalField]: Coulomb superposition with a
//     singularity guard at [MinSafeDistance]
//   - [RetardedField]: field from the source position at t − |r|/c
//
// All functions are pure except that RetardedField reads a particle's
// history buffer.
//
// # Units
//
// Everything is SI: meters, seconds, kilograms, coulombs, N/C.
package physics
