// Package viz provides the terminal viewer for charge simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of a [sim.Engine] with grab, drag and throw
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Camera]: orbiting perspective camera that also casts pointer rays
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	R      - Reset to initial state
//	G      - Grab the particle under the pointer
//	Enter  - Release it with the recent drag velocity
//	L      - Toggle field lines
//	T      - Cycle color themes
//	V      - Toggle GIF recording
//	?      - Show help overlay
//
// The left mouse button grabs, drags and throws as well.
//
// # Recording
//
// Sessions can be recorded as GIF animations with the V key. The file is
// written when recording stops or the viewer exits.
package viz
