// Package interaction implements grab, drag and release of charges.
//
// A DragController moves at most one particle at a time along a plane facing
// the camera. While dragged, the particle is flagged so the integrator leaves
// it alone. On release the controller infers a throw velocity from the
// oldest and newest of its recent pointer samples.
package interaction
