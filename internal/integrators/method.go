package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/chargesim/internal/dynamo"
)

// Method selects the particle integrator.
type Method int

const (
	Verlet Method = iota
	Euler
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	default:
		return "verlet"
	}
}

// Step dispatches to the selected integrator.
func (m Method) Step(x, v, a dynamo.Vec3, dt float64) (dynamo.Vec3, dynamo.Vec3) {
	if m == Euler {
		return EulerStep(x, v, a, dt)
	}
	return VerletStep(x, v, a, dt)
}

// ParseMethod accepts "verlet" or "euler", case-insensitively.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "verlet":
		return Verlet, nil
	case "euler":
		return Euler, nil
	}
	return Verlet, fmt.Errorf("integrator %q: %w", name, dynamo.ErrUnknownName)
}

// Names lists the accepted integrator names.
func Names() []string {
	return []string{Verlet.String(), Euler.String()}
}
