package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/physics"
)

func dipole() []physics.Particle {
	pos := physics.NewCustom(dynamo.Vec3{X: -1}, 1e-6, 1e-3)
	pos.VisualRadius = 0.1
	neg := physics.NewCustom(dynamo.Vec3{X: 1}, -1e-6, 1e-3)
	neg.VisualRadius = 0.1
	return []physics.Particle{pos, neg}
}

func TestWriteSVG(t *testing.T) {
	particles := dipole()
	cfg := fieldlines.DefaultConfig()
	cfg.SeedsPerParticle = 4
	cfg.MaxStepsPerLine = 200
	lines := fieldlines.GenerateAll(particles, cfg)

	var sb strings.Builder
	err := WriteSVG(&sb, Scene{
		Particles:    particles,
		Lines:        lines,
		Trajectories: [][]dynamo.Vec3{{{X: -1}, {X: -0.5, Y: 0.5}, {Y: 1}}},
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	svg := sb.String()

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 particles, got %d", got)
	}
	if got := strings.Count(svg, "<path"); got < 2 {
		t.Errorf("expected the trajectory and field lines, got %d paths", got)
	}
	if !strings.Contains(svg, colorHex(physics.PositiveColor)) || !strings.Contains(svg, colorHex(physics.NegativeColor)) {
		t.Error("particles should be drawn in their charge colours")
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("svg contains non-finite coordinates")
	}
}

func TestWriteSVGEmptyScene(t *testing.T) {
	var sb strings.Builder
	if err := WriteSVG(&sb, Scene{}, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `width="800"`) {
		t.Error("zero options should fall back to the defaults")
	}
}

func TestWriteSVGSingleParticleIsCentred(t *testing.T) {
	p := physics.NewCustom(dynamo.Vec3{X: 5, Y: 5}, 1e-6, 1e-3)
	var sb strings.Builder
	if err := WriteSVG(&sb, Scene{Particles: []physics.Particle{p}}, Options{Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `cx="50.0" cy="50.0"`) {
		t.Errorf("lone particle should sit in the middle: %s", sb.String())
	}
}

func TestParsePlane(t *testing.T) {
	for _, s := range []string{"xy", "XZ", "yz"} {
		if _, err := ParsePlane(s); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	if _, err := ParsePlane("xw"); !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}

	v := dynamo.Vec3{X: 1, Y: 2, Z: 3}
	if x, y := PlaneXZ.project(v); x != 1 || y != 3 {
		t.Errorf("xz projection gave (%v, %v)", x, y)
	}
	if x, y := PlaneYZ.project(v); x != 2 || y != 3 {
		t.Errorf("yz projection gave (%v, %v)", x, y)
	}
}
