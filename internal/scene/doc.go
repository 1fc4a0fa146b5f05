// Package scene owns the particle collection and its time evolution.
//
// A [System] computes Coulomb accelerations, integrates non-fixed,
// non-dragged particles with the configured [integrators.Method], applies
// short range softening and clamps speeds. [Pick] answers ray queries
// against the collection so pointer events can start a drag.
package scene
