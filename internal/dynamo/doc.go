// Package dynamo provides the primitives shared by the charge simulation.
//
//   - [Vec3]: double precision vector with value semantics
//   - [Ray]: origin plus unit direction, used for picking and dragging
//   - [Ring]: bounded FIFO used for particle and drag histories
//   - [Clock]: monotonic seconds, injected wherever time is read
//
// Sentinel errors live in errors.go and are wrapped with %w by callers.
//
// # Thread Safety
//
// Nothing in this package is synchronized. The simulation runs one frame at
// a time on a single goroutine.
package dynamo
