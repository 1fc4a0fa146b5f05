package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/physics"
)

// Plane names the two world axes drawn horizontally and vertically.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneYZ Plane = "yz"
)

func ParsePlane(s string) (Plane, error) {
	switch p := Plane(strings.ToLower(s)); p {
	case PlaneXY, PlaneXZ, PlaneYZ:
		return p, nil
	}
	return "", fmt.Errorf("plane %q: %w", s, dynamo.ErrUnknownName)
}

func (p Plane) project(v dynamo.Vec3) (float64, float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Y
	}
}

// Scene is everything an SVG snapshot can show.
type Scene struct {
	Particles    []physics.Particle
	Lines        []fieldlines.FieldLine
	Trajectories [][]dynamo.Vec3
}

type Options struct {
	Width, Height int
	Plane         Plane
	Background    string
	LineColor     string
	PathColor     string
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, Plane: PlaneXY, Background: "#0a0a0a", LineColor: "#00aaaa", PathColor: "#ffcc00"}
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) add(x, y float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// pad grows the box by 10% per side, keeps it square so distances are not
// distorted, and gives an empty box a unit size.
func (b *bounds) pad() {
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if math.IsInf(rangeX, 0) || math.IsNaN(rangeX) {
		*b = bounds{-1, 1, -1, 1}
		return
	}
	side := math.Max(rangeX, rangeY)
	if side == 0 {
		side = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := side * 0.6
	*b = bounds{cx - half, cx + half, cy - half, cy + half}
}

func colorHex(c physics.Color) string {
	clamp := func(v float64) int { return int(math.Max(0, math.Min(255, v*255))) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.R), clamp(c.G), clamp(c.B))
}

// WriteSVG renders the scene projected onto opts.Plane: trajectories, then
// field lines, then particles as circles in their own colour.
func WriteSVG(w io.Writer, scene Scene, opts Options) error {
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.Plane == "" {
		opts.Plane = def.Plane
	}
	if opts.Background == "" {
		opts.Background = def.Background
	}
	if opts.LineColor == "" {
		opts.LineColor = def.LineColor
	}
	if opts.PathColor == "" {
		opts.PathColor = def.PathColor
	}

	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range scene.Particles {
		x, y := opts.Plane.project(p.Position)
		b.add(x, y)
	}
	for _, line := range scene.Lines {
		for _, pt := range line.Points {
			x, y := opts.Plane.project(pt)
			b.add(x, y)
		}
	}
	for _, path := range scene.Trajectories {
		for _, pt := range path {
			x, y := opts.Plane.project(pt)
			b.add(x, y)
		}
	}
	b.pad()

	scale := math.Min(float64(opts.Width)/(b.maxX-b.minX), float64(opts.Height)/(b.maxY-b.minY))
	toScreen := func(v dynamo.Vec3) (float64, float64) {
		x, y := opts.Plane.project(v)
		return (x - b.minX) * scale, float64(opts.Height) - (y-b.minY)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background))

	writePath := func(points []dynamo.Vec3, stroke string, width float64) {
		if len(points) < 2 {
			return
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" d="M`, stroke, width))
		for i, p := range points {
			x, y := toScreen(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, path := range scene.Trajectories {
		writePath(path, opts.PathColor, 1.5)
	}
	for _, line := range scene.Lines {
		writePath(line.Points, opts.LineColor, 1)
	}
	for _, p := range scene.Particles {
		x, y := toScreen(p.Position)
		r := math.Max(p.VisualRadius*scale, 3)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, r, colorHex(p.Color)))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
